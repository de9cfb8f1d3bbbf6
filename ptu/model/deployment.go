package model

import "strings"

//Deployment is a named allocation of capacity units under a cognitive services account
type Deployment struct {
	Name     string `json:"name"`
	SKUName  string `json:"sku_name"`
	Capacity *int64 `json:"sku_capacity,omitempty"`
}

//IsProvisioned reports whether the deployment sku starts with prefix, ignoring case
func (d *Deployment) IsProvisioned(prefix string) bool {
	return strings.HasPrefix(strings.ToLower(d.SKUName), strings.ToLower(prefix))
}

//Units returns the deployed capacity, a missing or negative capacity counts as zero
func (d *Deployment) Units() int64 {
	return units(d.Capacity)
}

func units(v *int64) int64 {
	if v == nil || *v < 0 {
		return 0
	}

	return *v
}
