package response

import (
	"time"

	"automarket/internal/domain/entities"
	"automarket/internal/usecase"
)

type LeadResponse struct {
	ID            string    `json:"id"`
	RequestID     string    `json:"request_id"`
	ProID         string    `json:"pro_id"`
	Status        string    `json:"status"`
	CategoryID    string    `json:"category_id,omitempty"`
	Zip           string    `json:"zip,omitempty"`
	Vehicle       string    `json:"vehicle,omitempty"`
	RequestStatus string    `json:"request_status,omitempty"`
	LockedByOther bool      `json:"locked_by_other"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func FromLead(l entities.Lead) LeadResponse {
	return LeadResponse{
		ID:        l.ID,
		RequestID: l.RequestID,
		ProID:     l.ProID,
		Status:    string(l.Status),
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

func FromLeadView(v usecase.LeadView) LeadResponse {
	res := FromLead(v.Lead)
	res.CategoryID = v.Request.CategoryID
	res.Zip = v.Request.Zip
	res.Vehicle = v.Request.Vehicle
	res.RequestStatus = string(v.Request.Status)
	res.LockedByOther = v.LockedByOther
	return res
}

func FromLeadViews(items []usecase.LeadView) []LeadResponse {
	out := make([]LeadResponse, 0, len(items))
	for _, v := range items {
		out = append(out, FromLeadView(v))
	}
	return out
}
