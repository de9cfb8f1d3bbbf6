package model

import "strings"

//ReservationOrder groups one or more reservations that were purchased together
type ReservationOrder struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
}

//Reservation is a purchased capacity commitment
type Reservation struct {
	Name              string `json:"name"`
	DisplayName       string `json:"display_name,omitempty"`
	SKUDescription    string `json:"sku_description"`
	Quantity          *int64 `json:"quantity,omitempty"`
	ProvisioningState string `json:"provisioning_state,omitempty"`
}

//Label is the display name, or the name if there is none
func (r *Reservation) Label() string {
	if r.DisplayName != "" {
		return r.DisplayName
	}

	return r.Name
}

//Covers reports whether the sku description contains marker
func (r *Reservation) Covers(marker string) bool {
	return r.SKUDescription != "" && strings.Contains(r.SKUDescription, marker)
}

//Units returns the reserved quantity, a missing or negative quantity counts as zero
func (r *Reservation) Units() int64 {
	return units(r.Quantity)
}
