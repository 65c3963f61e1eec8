package response

import "automarket/internal/domain/entities"

type ProfileResponse struct {
	ID          string   `json:"id"`
	Role        string   `json:"role"`
	Name        string   `json:"name,omitempty"`
	Email       string   `json:"email,omitempty"`
	CategoryIDs []string `json:"category_ids"`
	ZipCodes    []string `json:"zip_codes"`
	Active      bool     `json:"active"`
}

func FromProfile(p entities.Profile) ProfileResponse {
	res := ProfileResponse{
		ID:          p.ID,
		Role:        string(p.Role),
		Name:        p.Name,
		Email:       p.Email,
		CategoryIDs: p.CategoryIDs,
		ZipCodes:    p.ZipCodes,
		Active:      p.Active,
	}
	if res.CategoryIDs == nil {
		res.CategoryIDs = []string{}
	}
	if res.ZipCodes == nil {
		res.ZipCodes = []string{}
	}
	return res
}
