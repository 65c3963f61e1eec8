package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	request "automarket/internal/adapter/http/dto/request"
	response "automarket/internal/adapter/http/dto/response"
	"automarket/internal/logger"
	"automarket/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ReferralFeeHandler handles referral fee reads, staff pricing and payment.
type ReferralFeeHandler struct {
	usecase      usecase.IReferralFeeUseCase
	log          *logrus.Logger
	mockPayments bool
}

// NewReferralFeeHandler builds the handler; with mockPayments an unreadable
// pay body falls back to an empty payload instead of failing.
func NewReferralFeeHandler(uc usecase.IReferralFeeUseCase, log *logrus.Logger, mockPayments bool) *ReferralFeeHandler {
	return &ReferralFeeHandler{usecase: uc, log: logger.OrDiscard(log), mockPayments: mockPayments}
}

func (h *ReferralFeeHandler) Get(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	fee, err := h.usecase.Get(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		respondError(c, h.log, "referral_fee", "get", err)
		return
	}
	c.JSON(http.StatusOK, response.FromReferralFee(fee))
}

func (h *ReferralFeeHandler) ListMine(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	items, err := h.usecase.ListMine(c.Request.Context(), a.ID)
	if err != nil {
		respondError(c, h.log, "referral_fee", "list", err)
		return
	}
	c.JSON(http.StatusOK, response.FromReferralFees(items))
}

func (h *ReferralFeeHandler) SetAmount(c *gin.Context) {
	var payload request.SetReferralFeeAmountRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondInvalid(c)
		return
	}
	fee, err := h.usecase.SetAmount(c.Request.Context(), c.Param("id"), payload.Amount)
	if err != nil {
		respondError(c, h.log, "referral_fee", "set_amount", err)
		return
	}
	c.JSON(http.StatusOK, response.FromReferralFee(fee))
}

// Pay godoc
// @Summary      Pay a pending referral fee through Mercado Pago
// @Tags         referral-fees
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id    path      string                         true  "Referral fee id"
// @Param        body  body      request.ReferralFeePayRequest  true  "Mercado Pago payload"
// @Success      200   {object}  response.ReferralFeeResponse
// @Failure      400   {object}  pkg.HTTPError
// @Failure      409   {object}  pkg.HTTPError
// @Router       /referral-fees/{id}/pay [post]
func (h *ReferralFeeHandler) Pay(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	feeID := c.Param("id")
	entry := h.log.WithFields(logrus.Fields{"module": "referral_fee", "op": "pay", "fee_id": feeID})
	entry.Info("pay start")

	mpPayload, err := readMPPayload(c)
	if err != nil {
		if !h.mockPayments {
			entry.WithError(err).Info("invalid payload")
			respondInvalid(c)
			return
		}
		entry.WithError(err).Info("payload invalid in mock mode; using empty payload")
		mpPayload = json.RawMessage("{}")
	}

	paid, err := h.usecase.Pay(c.Request.Context(), a.ID, feeID, mpPayload)
	if err != nil {
		entry.WithError(err).Info("pay failed")
		respondError(c, h.log, "referral_fee", "pay", err)
		return
	}
	entry.WithFields(logrus.Fields{"payment_id": paid.PaymentID, "status": paid.Status}).Info("pay success")
	c.JSON(http.StatusOK, response.FromReferralFee(paid))
}

// readMPPayload accepts either {"mp_payload": {...}} or the bare provider object.
func readMPPayload(c *gin.Context) (json.RawMessage, error) {
	raw, err := c.GetRawData()
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return json.RawMessage("{}"), nil
	}
	if !json.Valid(raw) {
		return nil, errors.New("request body is not valid json")
	}

	var envelope request.ReferralFeePayRequest
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err == nil {
		if _, wrapped := probe["mp_payload"]; wrapped {
			_ = json.Unmarshal(raw, &envelope)
			trimmed := strings.TrimSpace(string(envelope.MPPayload))
			if trimmed == "" || trimmed == "null" {
				return nil, errors.New("mp_payload cannot be empty")
			}
			return envelope.MPPayload, nil
		}
	}
	return json.RawMessage(raw), nil
}
