package interfaces

import "errors"

// ErrConditionFailed is matched by every ConditionFailedError.
var ErrConditionFailed = errors.New("conditional write rejected")

const (
	EntityServiceRequest = "service_request"
	EntityLead           = "lead"
	EntityQuote          = "quote"
	EntityAppointment    = "appointment"
	EntityReferralFee    = "referral_fee"
)

// ConditionFailedError reports which item's condition rejected an atomic write.
// Nothing was written when a repository returns it.
type ConditionFailedError struct {
	Entity string
}

func (e *ConditionFailedError) Error() string {
	return "conditional write rejected on " + e.Entity
}

func (e *ConditionFailedError) Is(target error) bool {
	return target == ErrConditionFailed
}

func ConditionFailed(entity string) error {
	return &ConditionFailedError{Entity: entity}
}

// FailedEntity returns the entity whose condition failed, or "" when err is
// not a condition failure.
func FailedEntity(err error) string {
	var cfe *ConditionFailedError
	if errors.As(err, &cfe) {
		return cfe.Entity
	}
	return ""
}
