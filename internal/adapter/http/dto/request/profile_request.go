package request

import "strings"

type UpsertProfileRequest struct {
	ID          string   `json:"id" binding:"required"`
	Role        string   `json:"role" binding:"required,oneof=customer pro supplier staff"`
	Name        string   `json:"name"`
	Email       string   `json:"email" binding:"omitempty,email"`
	CategoryIDs []string `json:"category_ids"`
	ZipCodes    []string `json:"zip_codes"`
	Active      *bool    `json:"active"`
}

func (r UpsertProfileRequest) ResolveID() string {
	return strings.TrimSpace(r.ID)
}

// IsActive defaults to true when the field is omitted.
func (r UpsertProfileRequest) IsActive() bool {
	return r.Active == nil || *r.Active
}
