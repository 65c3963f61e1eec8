package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"automarket/internal/domain/entities"
	"automarket/internal/logger"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	to, subject, body string
	err               error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.to, m.subject, m.body = to, subject, body
	return m.err
}

type fakeEnqueuer struct {
	task *asynq.Task
	opts []asynq.Option
	err  error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.task, f.opts = task, opts
	if f.err != nil {
		return nil, f.err
	}
	return &asynq.TaskInfo{ID: "task-1", Queue: Queue}, nil
}

func TestRender(t *testing.T) {
	subject, body, err := Render(entities.TemplateQuoteSelected, map[string]string{
		"quote_id":   "q-1",
		"minutes":    "30",
		"expires_at": "2025-03-10T12:30:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, "Your quote was selected: confirm within 30 minutes", subject)
	assert.Contains(t, body, "q-1")
	assert.Contains(t, body, "2025-03-10T12:30:00Z")

	_, body, err = Render(entities.TemplateJobAccepted, nil)
	require.NoError(t, err)
	assert.NotContains(t, body, "<no value>")

	_, _, err = Render("nope", nil)
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestRender_AllTemplatesKnown(t *testing.T) {
	for _, tpl := range []entities.NotificationTemplate{
		entities.TemplateLeadOffered, entities.TemplateJobAccepted, entities.TemplateQuoteSubmitted,
		entities.TemplateQuoteSelected, entities.TemplateQuoteConfirmed, entities.TemplateQuoteExpired,
		entities.TemplateJobCompleted, entities.TemplateJobCancelled, entities.TemplateReferralFeePaid,
	} {
		_, _, err := Render(tpl, map[string]string{})
		assert.NoError(t, err, tpl)
	}
}

func TestAsynqNotifier_Notify(t *testing.T) {
	q := &fakeEnqueuer{}
	n := &AsynqNotifier{client: q, log: logger.Discard()}

	msg := entities.Notification{RecipientID: "pro-1", Email: "pro@example.com", Template: entities.TemplateQuoteExpired, Data: map[string]string{"quote_id": "q-1"}}
	require.NoError(t, n.Notify(context.Background(), msg))
	require.NotNil(t, q.task)
	assert.Equal(t, TypeEmail, q.task.Type())

	var got entities.Notification
	require.NoError(t, json.Unmarshal(q.task.Payload(), &got))
	assert.Equal(t, msg, got)
	assert.Len(t, q.opts, 3)

	q.err = errors.New("redis down")
	assert.Error(t, n.Notify(context.Background(), msg))
}

func TestHandleEmailTask(t *testing.T) {
	payload := func(n entities.Notification) []byte {
		b, _ := json.Marshal(n)
		return b
	}

	t.Run("delivers", func(t *testing.T) {
		m := &fakeMailer{}
		h := HandleEmailTask(m, nil)
		err := h(context.Background(), asynq.NewTask(TypeEmail, payload(entities.Notification{
			RecipientID: "cust-1", Email: "cust@example.com", Template: entities.TemplateQuoteConfirmed,
			Data: map[string]string{"quote_id": "q-1", "request_id": "req-1"},
		})))
		require.NoError(t, err)
		assert.Equal(t, "cust@example.com", m.to)
		assert.Equal(t, "Your appointment is confirmed", m.subject)
	})

	t.Run("malformed payload is not retried", func(t *testing.T) {
		err := HandleEmailTask(&fakeMailer{}, nil)(context.Background(), asynq.NewTask(TypeEmail, []byte("{")))
		assert.ErrorIs(t, err, asynq.SkipRetry)
	})

	t.Run("unknown template is not retried", func(t *testing.T) {
		err := HandleEmailTask(&fakeMailer{}, nil)(context.Background(), asynq.NewTask(TypeEmail, payload(entities.Notification{
			RecipientID: "x", Email: "x@example.com", Template: "nope",
		})))
		assert.ErrorIs(t, err, asynq.SkipRetry)
	})

	t.Run("mailer failure is retried", func(t *testing.T) {
		err := HandleEmailTask(&fakeMailer{err: errors.New("smtp 421")}, nil)(context.Background(), asynq.NewTask(TypeEmail, payload(entities.Notification{
			RecipientID: "x", Email: "x@example.com", Template: entities.TemplateJobAccepted,
		})))
		require.Error(t, err)
		assert.False(t, errors.Is(err, asynq.SkipRetry))
	})
}

func TestSMTPMailer_Send(t *testing.T) {
	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
	)
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 587, From: "no-reply@example.com"})
	m.send = func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		return nil
	}

	require.NoError(t, m.Send(context.Background(), "pro@example.com", "Hello", "Body"))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"pro@example.com"}, gotTo)
	assert.True(t, strings.HasPrefix(gotMsg, "From: no-reply@example.com\r\n"))
	assert.Contains(t, gotMsg, "Subject: Hello\r\n")
	assert.True(t, strings.HasSuffix(gotMsg, "\r\n\r\nBody\r\n"))
}

func TestNewMailer(t *testing.T) {
	_, isLog := NewMailer(SMTPConfig{}, nil).(*LogMailer)
	assert.True(t, isLog)
	_, isSMTP := NewMailer(SMTPConfig{Host: "smtp.example.com"}, nil).(*SMTPMailer)
	assert.True(t, isSMTP)
}
