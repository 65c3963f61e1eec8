package request

import "strings"

// CreateServiceRequestRequest is the customer's intake payload.
type CreateServiceRequestRequest struct {
	Vehicle    string `json:"vehicle" binding:"required"`
	CategoryID string `json:"category_id" binding:"required"`
	Address    string `json:"address"`
	Zip        string `json:"zip" binding:"required"`
}

// Normalize trims every field and reports whether the required ones survive.
func (r *CreateServiceRequestRequest) Normalize() bool {
	r.Vehicle = strings.TrimSpace(r.Vehicle)
	r.CategoryID = strings.TrimSpace(r.CategoryID)
	r.Address = strings.TrimSpace(r.Address)
	r.Zip = strings.TrimSpace(r.Zip)
	return r.Vehicle != "" && r.CategoryID != "" && r.Zip != ""
}
