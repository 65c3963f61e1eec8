package usecase

import (
	"context"

	"automarket/internal/domain/entities"
	"automarket/internal/usecase/interfaces"

	"github.com/sirupsen/logrus"
)

// notifier delivers best-effort notifications after a transition committed.
// It never returns an error: failures are logged and the caller moves on.
type notifier struct {
	profiles interfaces.IProfileRepository
	sink     interfaces.INotifier
	log      *logrus.Logger
}

// send reports whether a delivery was attempted.
func (n notifier) send(ctx context.Context, recipientID string, tpl entities.NotificationTemplate, data map[string]string) bool {
	if n.sink == nil || recipientID == "" {
		return false
	}
	entry := n.log.WithFields(logrus.Fields{
		"module":       "notification",
		"template":     tpl,
		"recipient_id": recipientID,
	})

	email := ""
	if n.profiles != nil {
		p, err := n.profiles.GetByID(ctx, recipientID)
		if err != nil {
			entry.WithError(err).Warn("recipient lookup failed; skipping notification")
			return false
		}
		email = p.Email
	}
	if email == "" {
		entry.Warn("recipient has no e-mail; skipping notification")
		return false
	}

	err := n.sink.Notify(ctx, entities.Notification{
		RecipientID: recipientID,
		Email:       email,
		Template:    tpl,
		Data:        data,
	})
	if err != nil {
		entry.WithError(err).Warn("notification dispatch failed")
	}
	return true
}
