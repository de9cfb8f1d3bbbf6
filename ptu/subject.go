package ptu

import (
	"strings"

	"github.com/pkg/errors"
)

//UnknownDeployment is used when the subject does not name a deployment
const UnknownDeployment = "unknown"

var (
	//ErrMalformedSubject is returned when a subject is too short to locate the account
	ErrMalformedSubject = errors.New("malformed resource subject")

	//ErrInvalidTarget is returned when a check target misses identifying fields
	ErrInvalidTarget = errors.New("invalid check target")
)

//Target identifies the deployment whose change triggered a capacity check
type Target struct {
	SubscriptionID string `json:"subscriptionId" yaml:"subscriptionId"`
	ResourceGroup  string `json:"resourceGroup" yaml:"resourceGroup"`
	AccountName    string `json:"accountName" yaml:"accountName"`
	DeploymentName string `json:"deploymentName" yaml:"deploymentName"`
}

//Validate checks that the target points at an account
func (t Target) Validate() error {
	switch {
	case t.SubscriptionID == "":
		return errors.Wrap(ErrInvalidTarget, "subscription id is empty")
	case t.ResourceGroup == "":
		return errors.Wrap(ErrInvalidTarget, "resource group is empty")
	case t.AccountName == "":
		return errors.Wrap(ErrInvalidTarget, "account name is empty")
	}

	return nil
}

//ParseSubject reads a resource path of the form
//
//	/subscriptions/{sub}/resourceGroups/{rg}/providers/Microsoft.CognitiveServices/accounts/{account}/deployments/{name}
//
//by position. The deployment segment is optional.
func ParseSubject(subject string) (t Target, err error) {
	parts := strings.Split(subject, "/")
	if len(parts) < 9 {
		return t, errors.Wrapf(ErrMalformedSubject, "'%s' has %d segments", subject, len(parts))
	}

	t = Target{
		SubscriptionID: parts[2],
		ResourceGroup:  parts[4],
		AccountName:    parts[8],
		DeploymentName: UnknownDeployment,
	}

	if len(parts) > 10 && parts[10] != "" {
		t.DeploymentName = parts[10]
	}

	if err = t.Validate(); err != nil {
		return Target{}, errors.Wrapf(ErrMalformedSubject, "'%s': %v", subject, err)
	}

	return t, nil
}
