// Package bootstrap wires configuration into stores, gateways and use cases
// for the api, sweeper and notifier binaries.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"automarket/internal/adapter/persistence/repository"
	"automarket/internal/adapter/persistence/sqlite"
	"automarket/internal/config"
	"automarket/internal/infrastructure/database"
	"automarket/internal/infrastructure/notification"
	"automarket/internal/infrastructure/payments"
	"automarket/internal/logger"
	"automarket/internal/usecase"
	"automarket/internal/usecase/interfaces"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// Repositories is one consistent store: every repository shares the same
// backend so multi-entity transitions stay atomic.
type Repositories struct {
	ServiceRequests interfaces.IServiceRequestRepository
	Leads           interfaces.ILeadRepository
	Quotes          interfaces.IQuoteRepository
	Appointments    interfaces.IAppointmentRepository
	ReferralFees    interfaces.IReferralFeeRepository
	Profiles        interfaces.IProfileRepository
}

type Container struct {
	Config config.Config
	Log    *logrus.Logger
	Repos  Repositories

	ServiceRequests *usecase.ServiceRequestUseCase
	JobLocks        *usecase.JobLockUseCase
	Quotes          *usecase.QuoteUseCase
	Appointments    *usecase.AppointmentUseCase
	ReferralFees    *usecase.ReferralFeeUseCase
	Profiles        *usecase.ProfileUseCase
	Sweep           *usecase.SweepUseCase

	closers []func() error
}

// New opens the configured store and builds every use case. Callers must
// Close the container.
func New(ctx context.Context, cfg config.Config, log *logrus.Logger) (*Container, error) {
	log = logger.OrDiscard(log)
	c := &Container{Config: cfg, Log: log}

	repos, err := c.openStore(ctx)
	if err != nil {
		return nil, err
	}
	c.Repos = repos

	var sink interfaces.INotifier
	if cfg.NotificationsEnabled {
		client := asynq.NewClient(notification.RedisClientOpt(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB))
		c.closers = append(c.closers, client.Close)
		sink = notification.NewAsynqNotifier(client, log)
	} else {
		log.WithField("module", "bootstrap").Info("notifications disabled")
	}

	var gateway interfaces.IPaymentGateway
	gw, err := payments.NewMercadoPagoGateway(cfg.MercadoPagoAccessToken, cfg.PaymentGatewayMock, log)
	if err != nil {
		log.WithField("module", "bootstrap").WithError(err).Warn("Mercado Pago gateway not configured")
	} else {
		gateway = gw
	}

	feePercent, err := cfg.FeePercent()
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	c.ServiceRequests = usecase.NewServiceRequestUseCase(repos.ServiceRequests, repos.Leads, repos.Profiles, sink, log)
	c.JobLocks = usecase.NewJobLockUseCase(repos.ServiceRequests, repos.Leads, repos.Profiles, sink, log, cfg.LockDuration)
	c.Quotes = usecase.NewQuoteUseCase(repos.Quotes, repos.ServiceRequests, repos.Profiles, sink, log,
		usecase.FeePolicy{Percent: feePercent}, cfg.ConfirmationTimerMinutes)
	c.Appointments = usecase.NewAppointmentUseCase(repos.Appointments, repos.Profiles, sink, log)
	c.ReferralFees = usecase.NewReferralFeeUseCase(repos.ReferralFees, gateway, repos.Profiles, sink, log, usecase.PaymentOptions{
		Mock:           cfg.PaymentGatewayMock,
		AccessToken:    cfg.MercadoPagoAccessToken,
		TestPayerEmail: cfg.MercadoPagoTestEmail,
	})
	c.Profiles = usecase.NewProfileUseCase(repos.Profiles)
	c.Sweep = usecase.NewSweepUseCase(repos.Quotes, repos.ServiceRequests, repos.Profiles, sink, log, cfg.SweepBatchSize)
	return c, nil
}

func (c *Container) openStore(ctx context.Context) (Repositories, error) {
	switch strings.ToLower(c.Config.StoreDriver) {
	case config.StoreDriverSQLite:
		db, err := sqlite.Open(c.Config.SQLitePath)
		if err != nil {
			return Repositories{}, err
		}
		if err := sqlite.Migrate(db); err != nil {
			_ = db.Close()
			return Repositories{}, err
		}
		c.closers = append(c.closers, db.Close)
		c.Log.WithFields(logrus.Fields{"module": "bootstrap", "driver": "sqlite", "path": c.Config.SQLitePath}).Info("store ready")
		return Repositories{
			ServiceRequests: sqlite.NewServiceRequestRepository(db),
			Leads:           sqlite.NewLeadRepository(db),
			Quotes:          sqlite.NewQuoteRepository(db),
			Appointments:    sqlite.NewAppointmentRepository(db),
			ReferralFees:    sqlite.NewReferralFeeRepository(db),
			Profiles:        sqlite.NewProfileRepository(db),
		}, nil

	case config.StoreDriverDynamoDB:
		ddb, err := database.ConnectDynamoDB(ctx, c.Config)
		if err != nil {
			return Repositories{}, err
		}
		tables := repository.Tables{
			ServiceRequests: c.Config.ServiceRequestsTable,
			Leads:           c.Config.LeadsTable,
			Quotes:          c.Config.QuotesTable,
			Appointments:    c.Config.AppointmentsTable,
			ReferralFees:    c.Config.ReferralFeesTable,
			Profiles:        c.Config.ProfilesTable,
		}
		c.Log.WithFields(logrus.Fields{"module": "bootstrap", "driver": "dynamodb", "region": c.Config.AWSRegion}).Info("store ready")
		return Repositories{
			ServiceRequests: repository.NewServiceRequestDynamoRepository(ddb, tables),
			Leads:           repository.NewLeadDynamoRepository(ddb, tables),
			Quotes:          repository.NewQuoteDynamoRepository(ddb, tables),
			Appointments:    repository.NewAppointmentDynamoRepository(ddb, tables),
			ReferralFees:    repository.NewReferralFeeDynamoRepository(ddb, tables),
			Profiles:        repository.NewProfileDynamoRepository(ddb, tables),
		}, nil
	}
	return Repositories{}, fmt.Errorf("unsupported STORE_DRIVER %q", c.Config.StoreDriver)
}

// Close releases resources in reverse order of acquisition.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
