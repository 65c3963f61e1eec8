package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"automarket/internal/domain/entities"
	"automarket/internal/logger"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// NewServer builds the worker that drains the notifications queue.
func NewServer(redis asynq.RedisClientOpt, concurrency int, log *logrus.Logger) *asynq.Server {
	if concurrency <= 0 {
		concurrency = 10
	}
	log = logger.OrDiscard(log)
	return asynq.NewServer(redis, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{Queue: 1},
		Logger:      log,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			log.WithFields(logrus.Fields{
				"module":    "notification",
				"op":        "deliver",
				"task_type": task.Type(),
				"retried":   retried,
				"max_retry": maxRetry,
			}).WithError(err).Warn("delivery attempt failed")
		}),
	})
}

func NewServeMux(mailer Mailer, log *logrus.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeEmail, HandleEmailTask(mailer, log))
	return mux
}

// HandleEmailTask renders and sends one notification. Malformed tasks are
// not retried.
func HandleEmailTask(mailer Mailer, log *logrus.Logger) asynq.HandlerFunc {
	log = logger.OrDiscard(log)
	return func(ctx context.Context, task *asynq.Task) error {
		var n entities.Notification
		if err := json.Unmarshal(task.Payload(), &n); err != nil {
			logger.LogError(log, "notification", "deliver", "invalid payload", string(task.Payload()), err)
			return fmt.Errorf("decode notification: %v: %w", err, asynq.SkipRetry)
		}
		if n.Email == "" {
			return fmt.Errorf("notification for %s has no recipient e-mail: %w", n.RecipientID, asynq.SkipRetry)
		}
		subject, body, err := Render(n.Template, n.Data)
		if err != nil {
			if errors.Is(err, ErrUnknownTemplate) {
				return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
			}
			return err
		}
		if err := mailer.Send(ctx, n.Email, subject, body); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"module":       "notification",
			"op":           "deliver",
			"template":     n.Template,
			"recipient_id": n.RecipientID,
		}).Info("notification delivered")
		return nil
	}
}
