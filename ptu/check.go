package ptu

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

//CheckCapacity sums the provisioned units deployed in the target's account and the
//units reserved in its subscription, then logs how they compare. Failing to list
//reservations is not fatal, the report then carries whatever was summed so far.
func CheckCapacity(ctx context.Context, conf *Conf, svc *Services, tgt Target) (rep *Report, err error) {
	logs := svc.Logs.With(
		zap.String("subscription", tgt.SubscriptionID),
		zap.String("resource_group", tgt.ResourceGroup),
		zap.String("account", tgt.AccountName),
	)

	logs.Info("starting capacity check", zap.String("deployment", tgt.DeploymentName))
	cred, err := svc.Creds.Credential()
	if err != nil {
		return nil, errors.Wrap(err, "failed to obtain credential")
	}

	rep = NewReport(tgt)

	//Step 1: sum provisioned capacity over every deployment in the account
	for dep, err := range svc.Deployments.ListDeployments(ctx, cred, tgt.SubscriptionID, tgt.ResourceGroup, tgt.AccountName) {
		if err != nil {
			return nil, errors.Wrap(err, "failed to list deployments")
		}

		if !rep.AddDeployment(dep, conf.SKUPrefix) {
			continue
		}

		if dep.Name == tgt.DeploymentName {
			logs.Warn("new deployment", zap.String("deployment", dep.Name), zap.Int64("capacity", dep.Units()))
		}
	}

	logs.Info("total deployed units in account", zap.Int64("deployed", rep.Totals.Deployed))
	for _, l := range rep.Deployments {
		logs.Info("deployment breakdown", zap.String("name", l.Name), zap.Int64("capacity", l.Capacity), zap.String("sku", l.SKU))
	}

	//Step 2: sum reserved capacity over every reservation order
	if err = sumReservations(ctx, conf, svc, cred, rep); err != nil {
		rep.Partial = true
		logs.Warn("could not query reservations", zap.Error(err))
		logs.Warn("reservation data may be delayed up to 24 hours after purchase")
	}

	logs.Info("total reserved units in subscription", zap.Int64("reserved", rep.Totals.Reserved))
	for _, l := range rep.Reservations {
		logs.Info("reservation breakdown", zap.String("name", l.Name), zap.Int64("quantity", l.Quantity), zap.String("provisioning_state", l.ProvisioningState))
	}

	//Step 3: compare and report
	rep.Finish()
	rep.Log(logs)
	return rep, nil
}

//sumReservations adds matching reservations to the report until the listing fails
func sumReservations(ctx context.Context, conf *Conf, svc *Services, cred azcore.TokenCredential, rep *Report) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic while listing reservations: %v", r)
		}
	}()

	for order, err := range svc.Reservations.ListReservationOrders(ctx, cred) {
		if err != nil {
			return errors.Wrap(err, "failed to list reservation orders")
		}

		for res, err := range svc.Reservations.ListReservations(ctx, cred, order.ID) {
			if err != nil {
				return errors.Wrapf(err, "failed to list reservations of order '%s'", order.ID)
			}

			rep.AddReservation(res, conf.ReservationMarker)
		}
	}

	return nil
}
