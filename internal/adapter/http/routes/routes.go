package routes

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "automarket/docs" // This will be auto-generated
	"automarket/internal/adapter/http/handlers"
	"automarket/internal/adapter/http/middleware"
	"automarket/internal/bootstrap"
	"automarket/internal/config"
	"automarket/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const shutdownTimeout = 15 * time.Second

// Run will start the server and block until SIGINT/SIGTERM.
func Run() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info").WithError(err).Fatal("invalid configuration")
	}
	log := logger.New(cfg.LogLevel)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to startup the application")
	}
	defer container.Close()

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           NewRouter(container),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithFields(logrus.Fields{"module": "http", "addr": srv.Addr}).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("failed to startup the application")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

// NewRouter builds the engine over an already wired container.
func NewRouter(c *bootstrap.Container) *gin.Engine {
	router := gin.New()
	setMiddlewares(router, c.Log)

	// Swagger documentation endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	mockPayments := c.Config.PaymentGatewayMock
	h := marketplaceHandlers{
		serviceRequests: handlers.NewServiceRequestHandler(c.ServiceRequests, c.Log),
		jobLocks:        handlers.NewJobLockHandler(c.JobLocks, c.Log),
		quotes:          handlers.NewQuoteHandler(c.Quotes, c.Log),
		appointments:    handlers.NewAppointmentHandler(c.Appointments, c.Log),
		referralFees:    handlers.NewReferralFeeHandler(c.ReferralFees, c.Log, mockPayments),
		profiles:        handlers.NewProfileHandler(c.Profiles, c.Log),
		sweep:           handlers.NewSweepHandler(c.Sweep, c.Log),
	}

	// Rotas publicas
	v1 := router.Group("/v1")
	addPingRoutes(v1)
	addInternalRoutes(v1, h.sweep, c.Config.SweepToken)

	// Rotas autenticadas
	authed := v1.Group("", middleware.Authenticate([]byte(c.Config.JWTSecret)))
	addMarketplaceRoutes(authed, h)
	return router
}

func setMiddlewares(router *gin.Engine, log *logrus.Logger) {
	router.Use(gin.Logger())
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.WithFields(logrus.Fields{"module": "http", "path": c.FullPath()}).Errorf("Recovered from panic: %v", recovered)
		c.AbortWithStatus(http.StatusInternalServerError)
	}))
}
