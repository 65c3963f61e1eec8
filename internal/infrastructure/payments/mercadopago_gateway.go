package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"automarket/internal/logger"
	"automarket/internal/usecase/interfaces"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/sirupsen/logrus"
)

var ErrMissingMercadoPagoAccessToken = errors.New("missing MERCADOPAGO_ACCESS_TOKEN")
var ErrMercadoPagoGatewayNotConfigured = errors.New("mercado pago gateway not configured")

// MercadoPagoGateway charges referral fees through Mercado Pago. In mock mode
// it approves every payment locally and echoes the request back as the
// provider response.
type MercadoPagoGateway struct {
	client   payment.Client
	mockMode bool
	log      *logrus.Logger

	now func() time.Time
}

var _ interfaces.IPaymentGateway = (*MercadoPagoGateway)(nil)

func NewMercadoPagoGateway(accessToken string, mock bool, log *logrus.Logger) (*MercadoPagoGateway, error) {
	log = logger.OrDiscard(log)
	if mock {
		log.WithField("module", "payment_gateway").Info("mock mode enabled")
		return &MercadoPagoGateway{mockMode: true, log: log, now: time.Now}, nil
	}

	if accessToken == "" {
		log.WithField("module", "payment_gateway").Warn("missing MERCADOPAGO_ACCESS_TOKEN")
		return nil, ErrMissingMercadoPagoAccessToken
	}

	cfg, err := config.New(accessToken)
	if err != nil {
		logger.LogError(log, "payment_gateway", "init", "sdk config", nil, err)
		return nil, err
	}
	log.WithField("module", "payment_gateway").Info("Mercado Pago client initialized")

	return &MercadoPagoGateway{client: payment.NewClient(cfg), log: log, now: time.Now}, nil
}

func (g *MercadoPagoGateway) CreatePayment(ctx context.Context, requestPayload json.RawMessage) (providerPaymentID string, providerStatus string, providerResponse json.RawMessage, err error) {
	if g != nil && g.mockMode {
		return g.mockPayment(requestPayload)
	}

	if g == nil || g.client == nil {
		return "", "", nil, ErrMercadoPagoGatewayNotConfigured
	}
	fields := logrus.Fields{"module": "payment_gateway", "op": "create", "payload_len": len(requestPayload)}
	g.log.WithFields(fields).Debug("create start")

	var req payment.Request
	if err := json.Unmarshal(requestPayload, &req); err != nil {
		logger.LogError(g.log, "payment_gateway", "create", "payload unmarshal", nil, err)
		return "", "", nil, err
	}

	resp, err := g.client.Create(ctx, req)
	if err != nil {
		logger.LogError(g.log, "payment_gateway", "create", "sdk create", nil, err)
		return "", "", nil, err
	}

	b, err := json.Marshal(resp)
	if err != nil {
		logger.LogError(g.log, "payment_gateway", "create", "response marshal", nil, err)
		return "", "", nil, err
	}
	g.log.WithFields(fields).WithFields(logrus.Fields{
		"provider_payment_id": resp.ID,
		"provider_status":     resp.Status,
	}).Info("create success")

	return fmt.Sprintf("%d", resp.ID), resp.Status, b, nil
}

func (g *MercadoPagoGateway) mockPayment(requestPayload json.RawMessage) (string, string, json.RawMessage, error) {
	resp := map[string]any{}
	if len(requestPayload) > 0 && json.Valid(requestPayload) {
		if err := json.Unmarshal(requestPayload, &resp); err != nil {
			resp = map[string]any{"request_payload_raw": string(requestPayload)}
		}
	}

	now := g.now().UTC()
	id := strconv.FormatInt(now.UnixNano(), 10)
	stamp := now.Format(time.RFC3339Nano)
	resp["id"] = id
	resp["status"] = "approved"
	resp["status_detail"] = "accredited"
	if _, ok := resp["date_created"]; !ok {
		resp["date_created"] = stamp
	}
	if _, ok := resp["date_approved"]; !ok {
		resp["date_approved"] = stamp
	}

	b, err := json.Marshal(resp)
	if err != nil {
		return "", "", nil, err
	}
	g.log.WithFields(logrus.Fields{"module": "payment_gateway", "op": "create", "provider_payment_id": id}).Info("mock payment approved")
	return id, "approved", b, nil
}
