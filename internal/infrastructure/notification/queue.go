package notification

import (
	"context"
	"encoding/json"
	"time"

	"automarket/internal/domain/entities"
	"automarket/internal/logger"
	"automarket/internal/usecase/interfaces"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

const (
	TypeEmail = "notification:email"
	Queue     = "notifications"

	maxRetry    = 5
	taskTimeout = 30 * time.Second
)

func NewEmailTask(n entities.Notification) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeEmail, b)
	opts := []asynq.Option{
		asynq.Queue(Queue),
		asynq.MaxRetry(maxRetry),
		asynq.Timeout(taskTimeout),
	}
	return task, opts, nil
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqNotifier hands notifications to the worker through Redis. Enqueueing
// is the only thing a use case waits for; delivery happens out of band.
type AsynqNotifier struct {
	client enqueuer
	log    *logrus.Logger
}

var _ interfaces.INotifier = (*AsynqNotifier)(nil)

func NewAsynqNotifier(client *asynq.Client, log *logrus.Logger) *AsynqNotifier {
	return &AsynqNotifier{client: client, log: logger.OrDiscard(log)}
}

func (n *AsynqNotifier) Notify(ctx context.Context, msg entities.Notification) error {
	task, opts, err := NewEmailTask(msg)
	if err != nil {
		return err
	}
	info, err := n.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		logger.LogError(n.log, "notification", "enqueue", string(msg.Template), msg.RecipientID, err)
		return err
	}
	n.log.WithFields(logrus.Fields{
		"module":       "notification",
		"op":           "enqueue",
		"task_id":      info.ID,
		"template":     msg.Template,
		"recipient_id": msg.RecipientID,
	}).Debug("notification enqueued")
	return nil
}

// RedisClientOpt builds the asynq connection from the shared Redis settings.
func RedisClientOpt(addr, password string, db int) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: addr, Password: password, DB: db}
}
