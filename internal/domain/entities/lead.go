package entities

import (
	"time"

	"github.com/google/uuid"
)

type LeadStatus string

const (
	LeadStatusNew      LeadStatus = "new"
	LeadStatusAccepted LeadStatus = "accepted"
	LeadStatusDeclined LeadStatus = "declined"
)

// Lead is an offer of a ServiceRequest to one professional.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI (request_id-index): request_id
//   - GSI (pro_id-index): pro_id
//
// Status only moves forward: new -> accepted | declined.
type Lead struct {
	ID        string     `json:"id"`
	RequestID string     `json:"request_id"`
	ProID     string     `json:"pro_id"`
	Status    LeadStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// LeadID derives the lead id from its request and professional, so a request
// is offered to a professional at most once.
func LeadID(requestID, proID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(requestID+"/"+proID)).String()
}
