package handlers

import (
	"net/http"
	"time"

	request "automarket/internal/adapter/http/dto/request"
	response "automarket/internal/adapter/http/dto/response"
	"automarket/internal/logger"
	"automarket/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ServiceRequestHandler handles customer intake and lead dispatch.
type ServiceRequestHandler struct {
	usecase usecase.IServiceRequestUseCase
	log     *logrus.Logger
	now     func() time.Time
}

func NewServiceRequestHandler(uc usecase.IServiceRequestUseCase, log *logrus.Logger) *ServiceRequestHandler {
	return &ServiceRequestHandler{usecase: uc, log: logger.OrDiscard(log), now: utcNow}
}

// Create godoc
// @Summary      Create a service request
// @Tags         service-requests
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        body  body      request.CreateServiceRequestRequest  true  "Service request"
// @Success      201   {object}  response.ServiceRequestResponse
// @Failure      400   {object}  pkg.HTTPError
// @Router       /service-requests [post]
func (h *ServiceRequestHandler) Create(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var payload request.CreateServiceRequestRequest
	if err := c.ShouldBindJSON(&payload); err != nil || !payload.Normalize() {
		respondInvalid(c)
		return
	}

	created, err := h.usecase.Create(c.Request.Context(), a.ID, usecase.CreateServiceRequestInput{
		Vehicle:    payload.Vehicle,
		CategoryID: payload.CategoryID,
		Address:    payload.Address,
		Zip:        payload.Zip,
	})
	if err != nil {
		respondError(c, h.log, "service_request", "create", err)
		return
	}
	c.JSON(http.StatusCreated, response.FromServiceRequest(created, h.now()))
}

func (h *ServiceRequestHandler) ListMine(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	items, err := h.usecase.ListMine(c.Request.Context(), a.ID)
	if err != nil {
		respondError(c, h.log, "service_request", "list", err)
		return
	}
	c.JSON(http.StatusOK, response.FromServiceRequests(items, h.now()))
}

func (h *ServiceRequestHandler) Get(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	r, err := h.usecase.Get(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		respondError(c, h.log, "service_request", "get", err)
		return
	}
	c.JSON(http.StatusOK, response.FromServiceRequest(r, h.now()))
}

// Dispatch godoc
// @Summary      Fan a request out to eligible professionals
// @Tags         service-requests
// @Produce      json
// @Security     Bearer
// @Param        id   path      string  true  "Service request id"
// @Success      200  {object}  response.DispatchResponse
// @Failure      409  {object}  pkg.HTTPError
// @Router       /service-requests/{id}/dispatch [post]
func (h *ServiceRequestHandler) Dispatch(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	res, err := h.usecase.Dispatch(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		respondError(c, h.log, "service_request", "dispatch", err)
		return
	}
	c.JSON(http.StatusOK, response.DispatchResponse{
		Request:      response.FromServiceRequest(res.Request, h.now()),
		LeadsCreated: res.LeadsCreated,
	})
}

func (h *ServiceRequestHandler) Delete(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.usecase.Delete(c.Request.Context(), a.ID, c.Param("id")); err != nil {
		respondError(c, h.log, "service_request", "delete", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func utcNow() time.Time {
	return time.Now().UTC()
}
