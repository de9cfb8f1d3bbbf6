package azure

import (
	"context"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/reservations/armreservations/v3"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrdersAPI struct {
	pager *runtime.Pager[armreservations.ReservationOrderClientListResponse]
}

func (f *fakeOrdersAPI) NewListPager(*armreservations.ReservationOrderClientListOptions) *runtime.Pager[armreservations.ReservationOrderClientListResponse] {
	return f.pager
}

type fakeReservationsAPI struct {
	byOrder map[string][]*armreservations.ReservationResponse
	failOn  string
}

func (f *fakeReservationsAPI) NewListPager(orderID string, _ *armreservations.ReservationClientListOptions) *runtime.Pager[armreservations.ReservationClientListResponse] {
	var err error
	pgs := []armreservations.ReservationClientListResponse{{
		ReservationList: armreservations.ReservationList{Value: f.byOrder[orderID]},
	}}

	if orderID == f.failOn {
		pgs, err = nil, errors.New("forbidden")
	}

	return fakePager(pgs, err)
}

func testReservations(orders *fakeOrdersAPI, res *fakeReservationsAPI) *Reservations {
	return &Reservations{
		newOrders: func(azcore.TokenCredential, *arm.ClientOptions) (ReservationOrdersAPI, error) { return orders, nil },
		newRes:    func(azcore.TokenCredential, *arm.ClientOptions) (ReservationsAPI, error) { return res, nil },
	}
}

func TestListReservationOrders(t *testing.T) {
	orders := &fakeOrdersAPI{pager: fakePager([]armreservations.ReservationOrderClientListResponse{{
		ReservationOrderList: armreservations.ReservationOrderList{Value: []*armreservations.ReservationOrderResponse{
			{Name: ps("o1"), Properties: &armreservations.ReservationOrderProperties{DisplayName: ps("ptu order")}},
			nil,
			{Name: ps("o2")},
		}},
	}}, nil)}

	var ids, names []string
	for o, err := range testReservations(orders, nil).ListReservationOrders(context.Background(), fakeCred{}) {
		require.NoError(t, err)
		ids = append(ids, o.ID)
		names = append(names, o.DisplayName)
	}

	assert.Equal(t, []string{"o1", "o2"}, ids)
	assert.Equal(t, []string{"ptu order", ""}, names)
}

func TestListReservations(t *testing.T) {
	state := armreservations.ProvisioningStateSucceeded
	res := &fakeReservationsAPI{byOrder: map[string][]*armreservations.ReservationResponse{
		"o1": {
			{Name: ps("o1/r1"), Properties: &armreservations.ReservationsProperties{
				DisplayName:       ps("ptu-east"),
				SKUDescription:    ps("Azure OpenAI Provisioned Throughput"),
				Quantity:          p32(100),
				ProvisioningState: &state,
			}},
			{Name: ps("o1/r2")},
		},
	}}

	var got []string
	for r, err := range testReservations(nil, res).ListReservations(context.Background(), fakeCred{}, "o1") {
		require.NoError(t, err)
		got = append(got, r.Label())
		if r.Name == "o1/r1" {
			assert.Equal(t, int64(100), *r.Quantity)
			assert.Equal(t, "Succeeded", r.ProvisioningState)
			assert.Equal(t, "Azure OpenAI Provisioned Throughput", r.SKUDescription)
		} else {
			assert.Nil(t, r.Quantity)
		}
	}

	assert.Equal(t, []string{"ptu-east", "o1/r2"}, got)
}

func TestListReservationsError(t *testing.T) {
	res := &fakeReservationsAPI{failOn: "o1"}
	errs := 0
	for r, err := range testReservations(nil, res).ListReservations(context.Background(), fakeCred{}, "o1") {
		assert.Nil(t, r)
		assert.EqualError(t, errors.Cause(err), "forbidden")
		errs++
	}

	assert.Equal(t, 1, errs)
}
