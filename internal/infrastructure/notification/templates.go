package notification

import (
	"bytes"
	"errors"
	"fmt"
	"text/template"

	"automarket/internal/domain/entities"
)

type message struct {
	subject *template.Template
	body    *template.Template
}

func mustMessage(name, subject, body string) message {
	return message{
		subject: template.Must(template.New(name + ".subject").Option("missingkey=zero").Parse(subject)),
		body:    template.Must(template.New(name + ".body").Option("missingkey=zero").Parse(body)),
	}
}

var messages = map[entities.NotificationTemplate]message{
	entities.TemplateLeadOffered: mustMessage("lead_offered",
		"New job available near you",
		"A customer needs help with {{.category_id}} in {{.zip}}. Open lead {{.lead_id}} to accept the job before another professional does."),
	entities.TemplateJobAccepted: mustMessage("job_accepted",
		"A professional accepted your request",
		"Your service request {{.request_id}} was accepted. You will receive a quote soon."),
	entities.TemplateQuoteSubmitted: mustMessage("quote_submitted",
		"You received a quote",
		"A quote of {{.estimated_price}} was submitted for request {{.request_id}}."),
	entities.TemplateQuoteSelected: mustMessage("quote_selected",
		"Your quote was selected: confirm within {{.minutes}} minutes",
		"The customer selected quote {{.quote_id}}. Confirm it before {{.expires_at}} or it will expire."),
	entities.TemplateQuoteConfirmed: mustMessage("quote_confirmed",
		"Your appointment is confirmed",
		"The professional confirmed quote {{.quote_id}} for request {{.request_id}}."),
	entities.TemplateQuoteExpired: mustMessage("quote_expired",
		"A quote expired",
		"Quote {{.quote_id}} for request {{.request_id}} was not confirmed in time and has expired."),
	entities.TemplateJobCompleted: mustMessage("job_completed",
		"Your service was completed",
		"The professional marked appointment {{.appointment_id}} as completed."),
	entities.TemplateJobCancelled: mustMessage("job_cancelled",
		"An appointment was cancelled",
		"Appointment {{.appointment_id}} for request {{.request_id}} was cancelled by the {{.cancelled_by}}."),
	entities.TemplateReferralFeePaid: mustMessage("referral_fee_paid",
		"Referral fee paid",
		"We received payment {{.payment_id}} for referral fee {{.fee_id}}."),
}

var ErrUnknownTemplate = errors.New("unknown notification template")

func Render(tpl entities.NotificationTemplate, data map[string]string) (subject, body string, err error) {
	m, ok := messages[tpl]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnknownTemplate, tpl)
	}
	var s, b bytes.Buffer
	if err := m.subject.Execute(&s, data); err != nil {
		return "", "", err
	}
	if err := m.body.Execute(&b, data); err != nil {
		return "", "", err
	}
	return s.String(), b.String(), nil
}
