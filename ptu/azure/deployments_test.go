package azure

import (
	"context"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/cognitiveservices/armcognitiveservices"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldelar/ptu-ri-alert/ptu/model"
)

type fakeDeploymentsAPI struct {
	rg, account string
	pager       *runtime.Pager[armcognitiveservices.DeploymentsClientListResponse]
}

func (f *fakeDeploymentsAPI) NewListPager(rg string, account string, _ *armcognitiveservices.DeploymentsClientListOptions) *runtime.Pager[armcognitiveservices.DeploymentsClientListResponse] {
	f.rg, f.account = rg, account
	return f.pager
}

func deploymentsPage(deps ...*armcognitiveservices.Deployment) armcognitiveservices.DeploymentsClientListResponse {
	return armcognitiveservices.DeploymentsClientListResponse{
		DeploymentListResult: armcognitiveservices.DeploymentListResult{Value: deps},
	}
}

func withDeploymentsAPI(api DeploymentsAPI, subs *[]string) *Deployments {
	return &Deployments{newAPI: func(sub string, _ azcore.TokenCredential, _ *arm.ClientOptions) (DeploymentsAPI, error) {
		*subs = append(*subs, sub)
		return api, nil
	}}
}

func TestListDeploymentsAcrossPages(t *testing.T) {
	api := &fakeDeploymentsAPI{pager: fakePager([]armcognitiveservices.DeploymentsClientListResponse{
		deploymentsPage(
			&armcognitiveservices.Deployment{Name: ps("a"), SKU: &armcognitiveservices.SKU{Name: ps("ProvisionedManaged"), Capacity: p32(10)}},
			nil,
			&armcognitiveservices.Deployment{Name: ps("b")},
		),
		deploymentsPage(
			&armcognitiveservices.Deployment{Name: ps("c"), SKU: &armcognitiveservices.SKU{Name: ps("Standard")}},
		),
	}, nil)}

	subs := []string{}
	var got []*model.Deployment
	for dep, err := range withDeploymentsAPI(api, &subs).ListDeployments(context.Background(), fakeCred{}, "sub-1", "rg", "acct") {
		require.NoError(t, err)
		got = append(got, dep)
	}

	assert.Equal(t, []string{"sub-1"}, subs)
	assert.Equal(t, "rg", api.rg)
	assert.Equal(t, "acct", api.account)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].Name)
	assert.Equal(t, "ProvisionedManaged", got[0].SKUName)
	assert.Equal(t, int64(10), *got[0].Capacity)
	assert.Equal(t, "b", got[1].Name)
	assert.Nil(t, got[1].Capacity)
	assert.Equal(t, "Standard", got[2].SKUName)
	assert.Nil(t, got[2].Capacity)
}

func TestListDeploymentsPageError(t *testing.T) {
	boom := errors.New("throttled")
	api := &fakeDeploymentsAPI{pager: fakePager([]armcognitiveservices.DeploymentsClientListResponse{
		deploymentsPage(&armcognitiveservices.Deployment{Name: ps("a")}),
	}, boom)}

	subs := []string{}
	n, errs := 0, 0
	for _, err := range withDeploymentsAPI(api, &subs).ListDeployments(context.Background(), fakeCred{}, "sub-1", "rg", "acct") {
		if err != nil {
			errs++
			assert.Equal(t, boom, errors.Cause(err))
			continue
		}
		n++
	}

	assert.Equal(t, 1, n)
	assert.Equal(t, 1, errs)
}

func TestListDeploymentsClientError(t *testing.T) {
	boom := errors.New("bad credential")
	d := &Deployments{newAPI: func(string, azcore.TokenCredential, *arm.ClientOptions) (DeploymentsAPI, error) {
		return nil, boom
	}}

	for dep, err := range d.ListDeployments(context.Background(), fakeCred{}, "sub-1", "rg", "acct") {
		assert.Nil(t, dep)
		assert.Equal(t, boom, errors.Cause(err))
	}
}

func TestListDeploymentsStopsEarly(t *testing.T) {
	fetched := 0
	pager := runtime.NewPager(runtime.PagingHandler[armcognitiveservices.DeploymentsClientListResponse]{
		More: func(armcognitiveservices.DeploymentsClientListResponse) bool { return true },
		Fetcher: func(context.Context, *armcognitiveservices.DeploymentsClientListResponse) (armcognitiveservices.DeploymentsClientListResponse, error) {
			fetched++
			return deploymentsPage(&armcognitiveservices.Deployment{Name: ps("x")}), nil
		},
	})

	subs := []string{}
	for range withDeploymentsAPI(&fakeDeploymentsAPI{pager: pager}, &subs).ListDeployments(context.Background(), fakeCred{}, "s", "g", "a") {
		break
	}

	assert.Equal(t, 1, fetched)
}
