package interfaces

import (
	"context"
	"time"

	"automarket/internal/domain/entities"
)

// ILeadRepository abstracts persistence for Lead.
//
// Lead ids are derived from (request, pro) so CreateBatch is idempotent:
// already existing leads are skipped and only the new ones are returned.
type ILeadRepository interface {
	CreateBatch(ctx context.Context, leads []entities.Lead) ([]entities.Lead, error)
	GetByID(ctx context.Context, id string) (entities.Lead, error)
	ListByPro(ctx context.Context, proID string) ([]entities.Lead, error)
	ListByRequest(ctx context.Context, requestID string) ([]entities.Lead, error)
	Decline(ctx context.Context, id, proID string, now time.Time) (entities.Lead, error)
}
