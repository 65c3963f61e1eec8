package interfaces

import (
	"context"

	"automarket/internal/domain/entities"
)

// IProfileRepository is the identity collaborator's profile store.
type IProfileRepository interface {
	Upsert(ctx context.Context, p entities.Profile) (entities.Profile, error)
	GetByID(ctx context.Context, id string) (entities.Profile, error)
	ListEligiblePros(ctx context.Context, categoryID, zip string) ([]entities.Profile, error)
}
