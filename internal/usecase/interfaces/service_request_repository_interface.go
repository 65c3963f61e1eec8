package interfaces

import (
	"context"
	"time"

	"automarket/internal/domain/entities"
)

// AcquireLockCommand is applied as one atomic unit: the request lock fields and
// the caller's lead move together or not at all.
type AcquireLockCommand struct {
	RequestID string
	ProID     string
	LeadID    string
	Now       time.Time
	ExpiresAt time.Time
}

// IServiceRequestRepository abstracts persistence for ServiceRequest.
//
// Lookups return a zero value (empty ID) when the item does not exist.
// Conditional writes return a *ConditionFailedError when their guard rejects.
type IServiceRequestRepository interface {
	Create(ctx context.Context, r entities.ServiceRequest) (entities.ServiceRequest, error)
	GetByID(ctx context.Context, id string) (entities.ServiceRequest, error)
	ListByCustomer(ctx context.Context, customerID string) ([]entities.ServiceRequest, error)
	TransitionStatus(ctx context.Context, id string, from []entities.ServiceRequestStatus, to entities.ServiceRequestStatus, now time.Time) (entities.ServiceRequest, error)
	AcquireLock(ctx context.Context, cmd AcquireLockCommand) (entities.ServiceRequest, error)
	ListExpiredLocks(ctx context.Context, now time.Time, limit int) ([]entities.ServiceRequest, error)
	ReleaseExpiredLock(ctx context.Context, id, proID string, now time.Time) (bool, error)
	DeleteCompleted(ctx context.Context, id, customerID string) error
}
