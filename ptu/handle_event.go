package ptu

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

//StatusSuccess is the only status the event handler reports
const StatusSuccess = "success"

//Status is returned to the platform for every handled event
type Status struct {
	Status    string `json:"status"`
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
}

//IsDeploymentWrite reports whether the event announces a deployment write on a cognitive services account
func IsDeploymentWrite(conf *Conf, ev *Event, data *ResourceData) bool {
	return strings.Contains(ev.Subject, conf.ResourceMarker) &&
		strings.EqualFold(data.OperationName, conf.OperationMarker)
}

//HandleEvent reacts to a single resource change notification. Deployment writes
//trigger a capacity check, everything else is skipped. Failures are logged and
//never reported back: the returned status is always success.
func HandleEvent(ctx context.Context, conf *Conf, svc *Services, ev *Event) *Status {
	logs := svc.Logs.With(zap.String("event_id", ev.ID))
	logs.Info("event received",
		zap.String("event_type", ev.Type),
		zap.String("subject", ev.Subject),
		zap.Time("event_time", ev.Time))

	data, err := ev.ResourceData()
	if err != nil {
		logs.Warn("event payload is not a resource notification", zap.Error(err))
		data = &ResourceData{}
	}

	logs.Info("event operation",
		zap.String("operation", orNA(data.OperationName)),
		zap.String("status", orNA(data.Status)))

	if IsDeploymentWrite(conf, ev, data) {
		logs.Warn("deployment detected", zap.String("resource", ev.Subject))
		if err = checkDeployment(ctx, conf, svc, ev); err != nil {
			logs.Error("failed to process deployment event", zap.Error(err), zap.String("detail", fmt.Sprintf("%+v", err)))
		}
	} else {
		logs.Info("non-deployment event, skipped capacity check")
	}

	logs.Info("event processing complete")
	return &Status{Status: StatusSuccess, EventID: ev.ID, EventType: ev.Type}
}

//checkDeployment is the failure boundary around the deployment branch, panics are turned into errors
func checkDeployment(ctx context.Context, conf *Conf, svc *Services, ev *Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic: %v", r)
		}
	}()

	tgt, err := ParseSubject(ev.Subject)
	if err != nil {
		return err
	}

	svc.Logs.Info("deployment target",
		zap.String("subscription", tgt.SubscriptionID),
		zap.String("resource_group", tgt.ResourceGroup),
		zap.String("account", tgt.AccountName),
		zap.String("deployment", tgt.DeploymentName))

	_, err = CheckCapacity(ctx, conf, svc, tgt)
	return err
}

//HandleEventGrid is the handler for event grid triggered invocations
func HandleEventGrid(ctx context.Context, conf *Conf, svc *Services, ev json.RawMessage) (res interface{}, err error) {
	e, err := DecodeEvent(ev)
	if err != nil {
		return nil, err
	}

	return HandleEvent(ctx, conf, svc, e), nil
}

//HandleCapacityCheck runs a capacity check for a target given in the invocation payload
func HandleCapacityCheck(ctx context.Context, conf *Conf, svc *Services, ev json.RawMessage) (res interface{}, err error) {
	tgt := Target{}
	if err = decodeData(unwrapHTTP(ev), &tgt); err != nil {
		return nil, errors.Wrap(err, "failed to decode check target")
	}

	if tgt.DeploymentName == "" {
		tgt.DeploymentName = UnknownDeployment
	}

	if err = tgt.Validate(); err != nil {
		return nil, err
	}

	return CheckCapacity(ctx, conf, svc, tgt)
}
