//Package azure adapts the azure management SDK to the listers the capacity check consumes
package azure

import (
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/pkg/errors"
)

//DefaultCredentials provides the default azure credential chain: environment, workload
//identity, managed identity and developer tools, in that order. The credential is
//created on first use and shared afterwards so tokens are cached across invocations.
type DefaultCredentials struct {
	opts *azidentity.DefaultAzureCredentialOptions

	mu   sync.Mutex
	cred azcore.TokenCredential
}

//NewDefaultCredentials sets up a credential provider for the cloud and tenant
func NewDefaultCredentials(cfg cloud.Configuration, tenantID string) *DefaultCredentials {
	return &DefaultCredentials{opts: &azidentity.DefaultAzureCredentialOptions{
		ClientOptions: policy.ClientOptions{Cloud: cfg},
		TenantID:      tenantID,
	}}
}

//Credential returns the shared credential
func (c *DefaultCredentials) Credential() (azcore.TokenCredential, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cred != nil {
		return c.cred, nil
	}

	cred, err := azidentity.NewDefaultAzureCredential(c.opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create default azure credential")
	}

	c.cred = cred
	return cred, nil
}

//ClientOptions returns the management client options for the cloud
func ClientOptions(cfg cloud.Configuration) *arm.ClientOptions {
	return &arm.ClientOptions{ClientOptions: policy.ClientOptions{Cloud: cfg}}
}
