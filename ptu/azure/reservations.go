package azure

import (
	"context"
	"iter"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/reservations/armreservations/v3"
	"github.com/pkg/errors"

	"github.com/aldelar/ptu-ri-alert/ptu/model"
)

//ReservationOrdersAPI is the part of the reservation order client we use
type ReservationOrdersAPI interface {
	NewListPager(options *armreservations.ReservationOrderClientListOptions) *runtime.Pager[armreservations.ReservationOrderClientListResponse]
}

//ReservationsAPI is the part of the reservation client we use
type ReservationsAPI interface {
	NewListPager(reservationOrderID string, options *armreservations.ReservationClientListOptions) *runtime.Pager[armreservations.ReservationClientListResponse]
}

//Reservations lists reservation orders and reservations through the management API
type Reservations struct {
	opts      *arm.ClientOptions
	newOrders func(cred azcore.TokenCredential, opts *arm.ClientOptions) (ReservationOrdersAPI, error)
	newRes    func(cred azcore.TokenCredential, opts *arm.ClientOptions) (ReservationsAPI, error)
}

//NewReservations sets up a reservation lister
func NewReservations(opts *arm.ClientOptions) *Reservations {
	return &Reservations{
		opts: opts,
		newOrders: func(cred azcore.TokenCredential, opts *arm.ClientOptions) (ReservationOrdersAPI, error) {
			c, err := armreservations.NewReservationOrderClient(cred, opts)
			if err != nil {
				return nil, err
			}

			return c, nil
		},
		newRes: func(cred azcore.TokenCredential, opts *arm.ClientOptions) (ReservationsAPI, error) {
			c, err := armreservations.NewReservationClient(cred, opts)
			if err != nil {
				return nil, err
			}

			return c, nil
		},
	}
}

//ListReservationOrders yields every reservation order the credential can read
func (r *Reservations) ListReservationOrders(ctx context.Context, cred azcore.TokenCredential) iter.Seq2[*model.ReservationOrder, error] {
	return func(yield func(*model.ReservationOrder, error) bool) {
		api, err := r.newOrders(cred, r.opts)
		if err != nil {
			yield(nil, errors.Wrap(err, "failed to create reservation order client"))
			return
		}

		for page, err := range pages(ctx, api.NewListPager(nil)) {
			if err != nil {
				yield(nil, errors.Wrap(err, "failed to fetch reservation orders page"))
				return
			}

			for _, o := range page.Value {
				if o == nil {
					continue
				}

				order := &model.ReservationOrder{ID: str(o.Name)}
				if o.Properties != nil {
					order.DisplayName = str(o.Properties.DisplayName)
				}

				if !yield(order, nil) {
					return
				}
			}
		}
	}
}

//ListReservations yields the reservations of one order
func (r *Reservations) ListReservations(ctx context.Context, cred azcore.TokenCredential, orderID string) iter.Seq2[*model.Reservation, error] {
	return func(yield func(*model.Reservation, error) bool) {
		api, err := r.newRes(cred, r.opts)
		if err != nil {
			yield(nil, errors.Wrap(err, "failed to create reservation client"))
			return
		}

		for page, err := range pages(ctx, api.NewListPager(orderID, nil)) {
			if err != nil {
				yield(nil, errors.Wrap(err, "failed to fetch reservations page"))
				return
			}

			for _, res := range page.Value {
				if res == nil {
					continue
				}

				if !yield(reservationFromARM(res), nil) {
					return
				}
			}
		}
	}
}

func reservationFromARM(res *armreservations.ReservationResponse) *model.Reservation {
	r := &model.Reservation{Name: str(res.Name)}
	if p := res.Properties; p != nil {
		r.DisplayName = str(p.DisplayName)
		r.SKUDescription = str(p.SKUDescription)
		r.Quantity = i64(p.Quantity)
		if p.ProvisioningState != nil {
			r.ProvisioningState = string(*p.ProvisioningState)
		}
	}

	return r
}
