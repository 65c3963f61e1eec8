package interfaces

import (
	"context"

	"automarket/internal/domain/entities"
)

// INotifier accepts fire-and-forget notifications. Callers log failures and
// never roll back on them.
type INotifier interface {
	Notify(ctx context.Context, n entities.Notification) error
}
