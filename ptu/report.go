package ptu

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/aldelar/ptu-ri-alert/ptu/model"
)

//Outcome classifies deployed capacity against reserved capacity
type Outcome int

const (
	//OutcomeNoReservations means nothing is reserved, all deployed units are billed on-demand
	OutcomeNoReservations Outcome = iota

	//OutcomeCovered means reservations cover every deployed unit
	OutcomeCovered

	//OutcomeExceeded means more units are deployed than reserved
	OutcomeExceeded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoReservations:
		return "no reservations"
	case OutcomeCovered:
		return "fully covered"
	case OutcomeExceeded:
		return "exceeds reservations"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

//MarshalText encodes the outcome by name
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(strings.ReplaceAll(o.String(), " ", "_")), nil
}

//UnmarshalText decodes an outcome name
func (o *Outcome) UnmarshalText(b []byte) error {
	for _, c := range []Outcome{OutcomeNoReservations, OutcomeCovered, OutcomeExceeded} {
		if txt, _ := c.MarshalText(); string(txt) == string(b) {
			*o = c
			return nil
		}
	}

	return errors.Errorf("unknown outcome '%s'", b)
}

//Classify compares deployed and reserved units
func Classify(deployed, reserved int64) Outcome {
	switch {
	case reserved == 0:
		return OutcomeNoReservations
	case deployed <= reserved:
		return OutcomeCovered
	default:
		return OutcomeExceeded
	}
}

//Totals accumulates capacity units over one check
type Totals struct {
	Deployed int64 `json:"deployed"`
	Reserved int64 `json:"reserved"`
	Target   int64 `json:"target"`
}

//DeploymentLine is one entry of the deployment breakdown
type DeploymentLine struct {
	Name     string `json:"name"`
	SKU      string `json:"sku"`
	Capacity int64  `json:"capacity"`
}

//ReservationLine is one entry of the reservation breakdown
type ReservationLine struct {
	Name              string `json:"name"`
	Quantity          int64  `json:"quantity"`
	ProvisioningState string `json:"provisioning_state"`
}

//Report is the result of comparing an account's provisioned deployments with the subscription's reservations
type Report struct {
	Target       Target            `json:"target"`
	Totals       Totals            `json:"totals"`
	Outcome      Outcome           `json:"outcome"`
	Slack        int64             `json:"slack,omitempty"`
	Excess       int64             `json:"excess,omitempty"`
	TargetBilled bool              `json:"target_billed,omitempty"`
	Deployments  []DeploymentLine  `json:"deployments"`
	Reservations []ReservationLine `json:"reservations"`
	Partial      bool              `json:"partial_reservations,omitempty"`
}

//NewReport starts an empty report for the target
func NewReport(t Target) *Report {
	return &Report{
		Target:       t,
		Deployments:  []DeploymentLine{},
		Reservations: []ReservationLine{},
	}
}

//AddDeployment counts the deployment if its sku carries the provisioned prefix
func (r *Report) AddDeployment(dep *model.Deployment, skuPrefix string) (counted bool) {
	if dep == nil || !dep.IsProvisioned(skuPrefix) {
		return false
	}

	n := dep.Units()
	r.Totals.Deployed += n
	r.Deployments = append(r.Deployments, DeploymentLine{Name: dep.Name, SKU: dep.SKUName, Capacity: n})
	if dep.Name == r.Target.DeploymentName {
		r.Totals.Target = n
	}

	return true
}

//AddReservation counts the reservation if its sku description carries the marker
func (r *Report) AddReservation(res *model.Reservation, marker string) (counted bool) {
	if res == nil || !res.Covers(marker) {
		return false
	}

	n := res.Units()
	r.Totals.Reserved += n
	r.Reservations = append(r.Reservations, ReservationLine{Name: res.Label(), Quantity: n, ProvisioningState: res.ProvisioningState})
	return true
}

//Finish classifies the totals and derives slack or excess
func (r *Report) Finish() {
	r.Outcome = Classify(r.Totals.Deployed, r.Totals.Reserved)
	r.Slack, r.Excess, r.TargetBilled = 0, 0, false
	switch r.Outcome {
	case OutcomeCovered:
		r.Slack = r.Totals.Reserved - r.Totals.Deployed
	case OutcomeExceeded:
		r.Excess = r.Totals.Deployed - r.Totals.Reserved
		r.TargetBilled = r.Totals.Target > 0
	}
}

//Log writes the comparison to the logger, the level follows the outcome
func (r *Report) Log(logs *zap.Logger) {
	tgt := zap.String("deployment", r.Target.DeploymentName)
	deployed := zap.Int64("deployed", r.Totals.Deployed)
	reserved := zap.Int64("reserved", r.Totals.Reserved)

	switch r.Outcome {
	case OutcomeNoReservations:
		logs.Warn("no reservations found, all deployed units are billed hourly",
			deployed, reserved, tgt, zap.Int64("on_demand", r.Totals.Deployed))
	case OutcomeCovered:
		logs.Info("fully covered by reservations",
			deployed, reserved, zap.Int64("available", r.Slack))
		logs.Info("new deployment is covered", tgt, zap.Int64("capacity", r.Totals.Target))
	case OutcomeExceeded:
		logs.Error("deployed capacity exceeds reservations",
			deployed, reserved, zap.Int64("excess", r.Excess))
		if r.TargetBilled {
			logs.Error("new deployment may be partially or fully billed hourly", tgt, zap.Int64("capacity", r.Totals.Target))
		}
		logs.Error("consider purchasing additional reservations", zap.Int64("units", r.Excess))
	}
}
