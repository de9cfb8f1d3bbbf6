package azure

import (
	"context"
	"iter"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/cognitiveservices/armcognitiveservices"
	"github.com/pkg/errors"

	"github.com/aldelar/ptu-ri-alert/ptu/model"
)

//DeploymentsAPI is the part of the cognitive services deployments client we use
type DeploymentsAPI interface {
	NewListPager(resourceGroupName string, accountName string, options *armcognitiveservices.DeploymentsClientListOptions) *runtime.Pager[armcognitiveservices.DeploymentsClientListResponse]
}

//Deployments lists cognitive services deployments through the management API
type Deployments struct {
	opts   *arm.ClientOptions
	newAPI func(subscriptionID string, cred azcore.TokenCredential, opts *arm.ClientOptions) (DeploymentsAPI, error)
}

//NewDeployments sets up a deployment lister
func NewDeployments(opts *arm.ClientOptions) *Deployments {
	return &Deployments{opts: opts, newAPI: func(subscriptionID string, cred azcore.TokenCredential, opts *arm.ClientOptions) (DeploymentsAPI, error) {
		c, err := armcognitiveservices.NewDeploymentsClient(subscriptionID, cred, opts)
		if err != nil {
			return nil, err
		}

		return c, nil
	}}
}

//ListDeployments yields every deployment of the account
func (d *Deployments) ListDeployments(ctx context.Context, cred azcore.TokenCredential, subscriptionID, resourceGroup, account string) iter.Seq2[*model.Deployment, error] {
	return func(yield func(*model.Deployment, error) bool) {
		api, err := d.newAPI(subscriptionID, cred, d.opts)
		if err != nil {
			yield(nil, errors.Wrap(err, "failed to create deployments client"))
			return
		}

		for page, err := range pages(ctx, api.NewListPager(resourceGroup, account, nil)) {
			if err != nil {
				yield(nil, errors.Wrap(err, "failed to fetch deployments page"))
				return
			}

			for _, dep := range page.Value {
				if dep == nil {
					continue
				}

				if !yield(deploymentFromARM(dep), nil) {
					return
				}
			}
		}
	}
}

func deploymentFromARM(dep *armcognitiveservices.Deployment) *model.Deployment {
	d := &model.Deployment{Name: str(dep.Name)}
	if dep.SKU != nil {
		d.SKUName = str(dep.SKU.Name)
		d.Capacity = i64(dep.SKU.Capacity)
	}

	return d
}
