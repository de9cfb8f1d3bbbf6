package ptu

import (
	"context"
	"iter"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"go.uber.org/zap"

	"github.com/aldelar/ptu-ri-alert/ptu/model"
)

//CredentialProvider hands out the ambient platform identity
type CredentialProvider interface {
	Credential() (azcore.TokenCredential, error)
}

//DeploymentLister enumerates the deployments of a cognitive services account. The
//returned sequence is lazy and can be ranged over once.
type DeploymentLister interface {
	ListDeployments(ctx context.Context, cred azcore.TokenCredential, subscriptionID, resourceGroup, account string) iter.Seq2[*model.Deployment, error]
}

//ReservationLister enumerates reservation orders visible to the credential and the reservations inside each order
type ReservationLister interface {
	ListReservationOrders(ctx context.Context, cred azcore.TokenCredential) iter.Seq2[*model.ReservationOrder, error]
	ListReservations(ctx context.Context, cred azcore.TokenCredential, orderID string) iter.Seq2[*model.Reservation, error]
}

//Services are the collaborators handlers use
type Services struct {
	Logs         *zap.Logger
	Creds        CredentialProvider
	Deployments  DeploymentLister
	Reservations ReservationLister
}
