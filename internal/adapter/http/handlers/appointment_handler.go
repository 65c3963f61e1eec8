package handlers

import (
	"context"
	"net/http"

	response "automarket/internal/adapter/http/dto/response"
	"automarket/internal/domain/entities"
	"automarket/internal/logger"
	"automarket/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AppointmentHandler struct {
	usecase usecase.IAppointmentUseCase
	log     *logrus.Logger
}

func NewAppointmentHandler(uc usecase.IAppointmentUseCase, log *logrus.Logger) *AppointmentHandler {
	return &AppointmentHandler{usecase: uc, log: logger.OrDiscard(log)}
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	appt, err := h.usecase.Get(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		respondError(c, h.log, "appointment", "get", err)
		return
	}
	c.JSON(http.StatusOK, response.FromAppointment(appt))
}

func (h *AppointmentHandler) ListMine(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	items, err := h.usecase.ListMine(c.Request.Context(), a)
	if err != nil {
		respondError(c, h.log, "appointment", "list", err)
		return
	}
	c.JSON(http.StatusOK, response.FromAppointments(items))
}

func (h *AppointmentHandler) Start(c *gin.Context) {
	h.transition(c, "start", func(ctx context.Context, a entities.Actor, id string) (entities.Appointment, error) {
		return h.usecase.Start(ctx, a.ID, id)
	})
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	h.transition(c, "complete", func(ctx context.Context, a entities.Actor, id string) (entities.Appointment, error) {
		return h.usecase.Complete(ctx, a.ID, id)
	})
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	h.transition(c, "cancel", h.usecase.Cancel)
}

func (h *AppointmentHandler) transition(
	c *gin.Context,
	op string,
	apply func(ctx context.Context, a entities.Actor, id string) (entities.Appointment, error),
) {
	a, ok := actor(c)
	if !ok {
		return
	}
	appt, err := apply(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		respondError(c, h.log, "appointment", op, err)
		return
	}
	c.JSON(http.StatusOK, response.FromAppointment(appt))
}
