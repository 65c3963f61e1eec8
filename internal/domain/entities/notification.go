package entities

// NotificationTemplate names an e-mail template rendered by the notifier worker.
type NotificationTemplate string

const (
	TemplateLeadOffered     NotificationTemplate = "lead_offered"
	TemplateJobAccepted     NotificationTemplate = "job_accepted"
	TemplateQuoteSubmitted  NotificationTemplate = "quote_submitted"
	TemplateQuoteSelected   NotificationTemplate = "quote_selected"
	TemplateQuoteConfirmed  NotificationTemplate = "quote_confirmed"
	TemplateQuoteExpired    NotificationTemplate = "quote_expired"
	TemplateJobCompleted    NotificationTemplate = "job_completed"
	TemplateJobCancelled    NotificationTemplate = "job_cancelled"
	TemplateReferralFeePaid NotificationTemplate = "referral_fee_paid"
)

type Notification struct {
	RecipientID string               `json:"recipient_id"`
	Email       string               `json:"email"`
	Template    NotificationTemplate `json:"template"`
	Data        map[string]string    `json:"data,omitempty"`
}
