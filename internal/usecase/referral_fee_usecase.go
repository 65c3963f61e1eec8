package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"automarket/internal/domain/entities"
	"automarket/internal/logger"
	"automarket/internal/usecase/interfaces"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	ErrPaymentGatewayNotConfigured    = errors.New("payment gateway not configured")
	ErrPaymentGatewayBadRequest       = errors.New("payment gateway bad request")
	ErrPaymentGatewayUnauthorized     = errors.New("payment gateway unauthorized")
	ErrPaymentGatewayInvalidUsers     = errors.New("payment gateway invalid users involved")
	ErrPaymentGatewayCustomerNotFound = errors.New("payment gateway customer not found")
)

// FeePolicy prices the referral fee created when a quote is selected.
// A zero percent leaves the amount for staff to set.
type FeePolicy struct {
	Percent decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

func (p FeePolicy) Amount(price decimal.Decimal) decimal.Decimal {
	if !p.Percent.IsPositive() || !price.IsPositive() {
		return decimal.Zero
	}
	return price.Mul(p.Percent).Div(hundred).Round(2)
}

// PaymentOptions carries the sandbox knobs of the payment gateway.
type PaymentOptions struct {
	// Mock skips the payer checks; the gateway answers without calling out.
	Mock           bool
	AccessToken    string
	TestPayerEmail string
}

// IReferralFeeUseCase covers referral fee reads, staff pricing and payment.
//
// Requested behavior:
//   - A pending fee is charged once through the payment gateway and marked paid.
//   - The amount charged is always the stored amount, never the caller's.
type IReferralFeeUseCase interface {
	Get(ctx context.Context, actor entities.Actor, id string) (entities.ReferralFee, error)
	ListMine(ctx context.Context, proID string) ([]entities.ReferralFee, error)
	SetAmount(ctx context.Context, id string, amount decimal.Decimal) (entities.ReferralFee, error)
	Pay(ctx context.Context, proID, id string, payload json.RawMessage) (entities.ReferralFee, error)
}

type ReferralFeeUseCase struct {
	repo     interfaces.IReferralFeeRepository
	gateway  interfaces.IPaymentGateway
	notify   notifier
	log      *logrus.Logger
	payments PaymentOptions

	Now func() time.Time
}

var _ IReferralFeeUseCase = (*ReferralFeeUseCase)(nil)

func NewReferralFeeUseCase(
	repo interfaces.IReferralFeeRepository,
	gateway interfaces.IPaymentGateway,
	profiles interfaces.IProfileRepository,
	sink interfaces.INotifier,
	log *logrus.Logger,
	payments PaymentOptions,
) *ReferralFeeUseCase {
	log = logger.OrDiscard(log)
	return &ReferralFeeUseCase{
		repo:     repo,
		gateway:  gateway,
		notify:   notifier{profiles: profiles, sink: sink, log: log},
		log:      log,
		payments: payments,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

func (u *ReferralFeeUseCase) Get(ctx context.Context, actor entities.Actor, id string) (entities.ReferralFee, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.ReferralFee{}, ErrInvalidID
	}
	f, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.ReferralFee{}, storageFailure(err)
	}
	if f.ID == "" {
		return entities.ReferralFee{}, ErrReferralFeeNotFound
	}
	if actor.Role != entities.RoleStaff && f.ProID != actor.ID {
		return entities.ReferralFee{}, ErrReferralFeeNotFound
	}
	return f, nil
}

func (u *ReferralFeeUseCase) ListMine(ctx context.Context, proID string) ([]entities.ReferralFee, error) {
	proID = strings.TrimSpace(proID)
	if proID == "" {
		return nil, ErrInvalidID
	}
	items, err := u.repo.ListByPro(ctx, proID)
	if err != nil {
		return nil, storageFailure(err)
	}
	return items, nil
}

func (u *ReferralFeeUseCase) SetAmount(ctx context.Context, id string, amount decimal.Decimal) (entities.ReferralFee, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.ReferralFee{}, ErrInvalidID
	}
	if !amount.IsPositive() {
		return entities.ReferralFee{}, ErrInvalidAmount
	}
	f, err := u.repo.SetAmount(ctx, id, amount.Round(2), u.Now())
	if err == nil {
		return f, nil
	}
	if interfaces.FailedEntity(err) == "" {
		return entities.ReferralFee{}, storageFailure(err)
	}
	current, gerr := u.repo.GetByID(ctx, id)
	if gerr != nil {
		return entities.ReferralFee{}, storageFailure(gerr)
	}
	if current.ID == "" {
		return entities.ReferralFee{}, ErrReferralFeeNotFound
	}
	return entities.ReferralFee{}, ErrFeeNotPending
}

func (u *ReferralFeeUseCase) Pay(ctx context.Context, proID, id string, payload json.RawMessage) (entities.ReferralFee, error) {
	proID = strings.TrimSpace(proID)
	id = strings.TrimSpace(id)
	entry := u.log.WithFields(logrus.Fields{"module": "referral_fee", "op": "pay", "fee_id": id, "payload_len": len(payload)})
	entry.Info("pay start")
	if proID == "" || id == "" {
		return entities.ReferralFee{}, ErrInvalidID
	}
	if len(payload) == 0 || !json.Valid(payload) {
		if !u.payments.Mock {
			return entities.ReferralFee{}, ErrInvalidPayload
		}
		payload = json.RawMessage("{}")
	}
	if u.gateway == nil {
		entry.Error("gateway not configured")
		return entities.ReferralFee{}, ErrPaymentGatewayNotConfigured
	}

	fee, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.ReferralFee{}, storageFailure(err)
	}
	if fee.ID == "" || fee.ProID != proID {
		return entities.ReferralFee{}, ErrReferralFeeNotFound
	}
	if fee.Status != entities.ReferralFeeStatusPending {
		return entities.ReferralFee{}, ErrFeeNotPending
	}
	if !fee.Amount.IsPositive() {
		return entities.ReferralFee{}, ErrFeeAmountNotSet
	}

	payload, err = u.enrichPayload(fee, payload)
	if err != nil {
		entry.WithError(err).Info("payload rejected")
		return entities.ReferralFee{}, err
	}

	paymentID, providerStatus, providerResp, err := u.gateway.CreatePayment(ctx, payload)
	if err != nil {
		entry.WithError(err).Error("payment gateway failed")
		return entities.ReferralFee{}, classifyGatewayError(err)
	}
	entry = entry.WithFields(logrus.Fields{"payment_id": paymentID, "provider_status": providerStatus})

	paid, err := u.repo.MarkPaid(ctx, fee.ID, paymentID, providerResp, u.Now())
	if err != nil {
		// The charge went through; the payment id in the log is the reconciliation key.
		logger.LogError(u.log, "referral_fee", "pay", "mark paid after charge", logrus.Fields{"fee_id": fee.ID, "payment_id": paymentID}, err)
		if interfaces.FailedEntity(err) != "" {
			return entities.ReferralFee{}, ErrFeeNotPending
		}
		return entities.ReferralFee{}, storageFailure(err)
	}
	entry.Info("referral fee paid")

	u.notify.send(ctx, paid.ProID, entities.TemplateReferralFeePaid, map[string]string{
		"fee_id":     paid.ID,
		"quote_id":   paid.QuoteID,
		"amount":     paid.Amount.StringFixed(2),
		"payment_id": paymentID,
	})
	return paid, nil
}

// enrichPayload links the charge to the fee and pins the amount to the stored one.
func (u *ReferralFeeUseCase) enrichPayload(fee entities.ReferralFee, payload json.RawMessage) (json.RawMessage, error) {
	var req map[string]any
	if err := json.Unmarshal(payload, &req); err != nil {
		if u.payments.Mock {
			req = map[string]any{}
		} else {
			return nil, ErrInvalidPayload
		}
	}
	if !u.payments.Mock {
		if !hasNonEmptyString(req, "payment_method_id") {
			return nil, ErrInvalidPayload
		}
		u.ensurePayerDefaults(req)
		if !hasPayer(req) {
			return nil, ErrInvalidPayload
		}
	}
	if _, ok := req["external_reference"]; !ok {
		req["external_reference"] = fee.ID
	}
	if _, ok := req["description"]; !ok {
		req["description"] = fmt.Sprintf("Referral fee for quote %s", fee.QuoteID)
	}
	amount, _ := fee.Amount.Float64()
	req["transaction_amount"] = amount

	b, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return b, nil
}

func (u *ReferralFeeUseCase) ensurePayerDefaults(m map[string]any) {
	v, ok := m["payer"]
	if !ok || v == nil {
		v = map[string]any{}
		m["payer"] = v
	}
	payer, ok := v.(map[string]any)
	if !ok {
		return
	}
	if _, ok := payer["type"]; !ok {
		payer["type"] = "customer"
	}
	if hasPayerID(payer) || hasNonEmptyString(payer, "email") {
		return
	}
	if email := strings.TrimSpace(u.payments.TestPayerEmail); email != "" {
		payer["email"] = email
	} else if strings.HasPrefix(strings.TrimSpace(u.payments.AccessToken), "TEST-") {
		payer["email"] = "test_user_br@testuser.com"
	}
}

func hasNonEmptyString(m map[string]any, key string) bool {
	s, ok := m[key].(string)
	return ok && strings.TrimSpace(s) != ""
}

func hasPayer(m map[string]any) bool {
	payer, ok := m["payer"].(map[string]any)
	if !ok {
		return false
	}
	return hasNonEmptyString(payer, "email") || hasPayerID(payer)
}

func hasPayerID(payer map[string]any) bool {
	v, ok := payer["id"]
	if !ok || v == nil {
		return false
	}
	s := strings.TrimSpace(fmt.Sprintf("%v", v))
	return s != "" && s != "<nil>"
}

func classifyGatewayError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "customer not found") || strings.Contains(msg, "\"code\":2002"):
		return ErrPaymentGatewayCustomerNotFound
	case strings.Contains(msg, "invalid users involved") || strings.Contains(msg, "\"code\":2034"):
		return ErrPaymentGatewayInvalidUsers
	case strings.Contains(msg, "\"error\":\"unauthorized\"") || strings.Contains(msg, "\"status\":401"):
		return ErrPaymentGatewayUnauthorized
	case strings.Contains(msg, "\"error\":\"bad_request\"") || strings.Contains(msg, "\"status\":400"):
		return ErrPaymentGatewayBadRequest
	}
	return err
}
