package handlers

import (
	"net/http"

	request "automarket/internal/adapter/http/dto/request"
	response "automarket/internal/adapter/http/dto/response"
	"automarket/internal/domain/entities"
	"automarket/internal/logger"
	"automarket/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ProfileHandler struct {
	usecase usecase.IProfileUseCase
	log     *logrus.Logger
}

func NewProfileHandler(uc usecase.IProfileUseCase, log *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{usecase: uc, log: logger.OrDiscard(log)}
}

func (h *ProfileHandler) GetMe(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	p, err := h.usecase.Get(c.Request.Context(), a.ID)
	if err != nil {
		respondError(c, h.log, "profile", "get", err)
		return
	}
	c.JSON(http.StatusOK, response.FromProfile(p))
}

func (h *ProfileHandler) Upsert(c *gin.Context) {
	var payload request.UpsertProfileRequest
	if err := c.ShouldBindJSON(&payload); err != nil || payload.ResolveID() == "" {
		respondInvalid(c)
		return
	}
	p, err := h.usecase.Upsert(c.Request.Context(), entities.Profile{
		ID:          payload.ResolveID(),
		Role:        entities.Role(payload.Role),
		Name:        payload.Name,
		Email:       payload.Email,
		CategoryIDs: payload.CategoryIDs,
		ZipCodes:    payload.ZipCodes,
		Active:      payload.IsActive(),
	})
	if err != nil {
		respondError(c, h.log, "profile", "upsert", err)
		return
	}
	c.JSON(http.StatusOK, response.FromProfile(p))
}
