package routes

import (
	"automarket/internal/adapter/http/handlers"
	"automarket/internal/adapter/http/middleware"
	"automarket/internal/domain/entities"

	"github.com/gin-gonic/gin"
)

const (
	PathServiceRequests = "/service-requests"
	PathLeads           = "/leads"
	PathQuotes          = "/quotes"
	PathAppointments    = "/appointments"
	PathReferralFees    = "/referral-fees"
	PathProfiles        = "/profiles"
	PathInternal        = "/internal"

	SweepTokenHeader = "X-Sweep-Token"
)

type marketplaceHandlers struct {
	serviceRequests *handlers.ServiceRequestHandler
	jobLocks        *handlers.JobLockHandler
	quotes          *handlers.QuoteHandler
	appointments    *handlers.AppointmentHandler
	referralFees    *handlers.ReferralFeeHandler
	profiles        *handlers.ProfileHandler
	sweep           *handlers.SweepHandler
}

var (
	customerOnly    = middleware.RequireRole(entities.RoleCustomer)
	proOnly         = middleware.RequireRole(entities.RolePro)
	staffOnly       = middleware.RequireRole(entities.RoleStaff)
	customerOrPro   = middleware.RequireRole(entities.RoleCustomer, entities.RolePro)
	customerOrStaff = middleware.RequireRole(entities.RoleCustomer, entities.RoleStaff)
)

func addMarketplaceRoutes(rg *gin.RouterGroup, h marketplaceHandlers) {
	requests := rg.Group(PathServiceRequests)
	{
		requests.POST("", customerOnly, h.serviceRequests.Create)
		requests.GET("", customerOnly, h.serviceRequests.ListMine)
		requests.GET("/:id", h.serviceRequests.Get)
		requests.DELETE("/:id", customerOnly, h.serviceRequests.Delete)
		requests.POST("/:id/dispatch", customerOrStaff, h.serviceRequests.Dispatch)
		requests.GET("/:id/lock", h.jobLocks.IsLocked)
		requests.POST("/:id/lock", proOnly, h.jobLocks.Acquire)
		requests.GET("/:id/quotes", h.quotes.ListByRequest)
	}

	leads := rg.Group(PathLeads, proOnly)
	{
		leads.GET("", h.jobLocks.ListLeads)
		leads.POST("/:id/decline", h.jobLocks.DeclineLead)
	}

	quotes := rg.Group(PathQuotes)
	{
		quotes.POST("", proOnly, h.quotes.Submit)
		quotes.GET("", proOnly, h.quotes.ListMine)
		quotes.GET("/:id", h.quotes.Get)
		quotes.POST("/:id/select", customerOnly, h.quotes.Select)
		quotes.POST("/:id/confirm", proOnly, h.quotes.Confirm)
		quotes.POST("/:id/decline", proOnly, h.quotes.Decline)
	}

	appointments := rg.Group(PathAppointments)
	{
		appointments.GET("", h.appointments.ListMine)
		appointments.GET("/:id", h.appointments.Get)
		appointments.POST("/:id/start", proOnly, h.appointments.Start)
		appointments.POST("/:id/complete", proOnly, h.appointments.Complete)
		appointments.POST("/:id/cancel", customerOrPro, h.appointments.Cancel)
	}

	fees := rg.Group(PathReferralFees)
	{
		fees.GET("", proOnly, h.referralFees.ListMine)
		fees.GET("/:id", h.referralFees.Get)
		fees.PUT("/:id/amount", staffOnly, h.referralFees.SetAmount)
		fees.POST("/:id/pay", proOnly, h.referralFees.Pay)
	}

	profiles := rg.Group(PathProfiles)
	{
		profiles.GET("/me", h.profiles.GetMe)
		profiles.PUT("", staffOnly, h.profiles.Upsert)
	}
}

// addInternalRoutes exposes the sweep to an external scheduler.
func addInternalRoutes(rg *gin.RouterGroup, sweep *handlers.SweepHandler, token string) {
	internal := rg.Group(PathInternal, middleware.RequireToken(SweepTokenHeader, token))
	{
		internal.POST("/sweep", sweep.Run)
		internal.GET("/sweep/pending", sweep.Pending)
	}
}
