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

// QuoteHandler handles quote submission and the confirmation handshake.
type QuoteHandler struct {
	usecase usecase.IQuoteUseCase
	log     *logrus.Logger
	now     func() time.Time
}

func NewQuoteHandler(uc usecase.IQuoteUseCase, log *logrus.Logger) *QuoteHandler {
	return &QuoteHandler{usecase: uc, log: logger.OrDiscard(log), now: utcNow}
}

// Submit godoc
// @Summary      Submit a quote for a locked job
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        body  body      request.SubmitQuoteRequest  true  "Quote"
// @Success      201   {object}  response.QuoteResponse
// @Failure      400   {object}  pkg.HTTPError
// @Failure      409   {object}  pkg.HTTPError
// @Router       /quotes [post]
func (h *QuoteHandler) Submit(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var payload request.SubmitQuoteRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondInvalid(c)
		return
	}
	requestID := payload.ResolveRequestID()
	price, err := payload.ResolvePrice()
	if requestID == "" || err != nil {
		respondInvalid(c)
		return
	}

	q, err := h.usecase.Submit(c.Request.Context(), a.ID, usecase.SubmitQuoteInput{
		RequestID:                requestID,
		EstimatedPrice:           price,
		Description:              payload.Description,
		ConfirmationTimerMinutes: payload.ConfirmationTimerMinutes,
	})
	if err != nil {
		respondError(c, h.log, "quote", "submit", err)
		return
	}
	c.JSON(http.StatusCreated, response.FromQuote(q, h.now()))
}

// Select godoc
// @Summary      Select a quote and start its confirmation timer
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id    path      string                      true   "Quote id"
// @Param        body  body      request.SelectQuoteRequest  false  "Preferred start"
// @Success      200   {object}  response.QuoteResponse
// @Failure      409   {object}  pkg.HTTPError  "Another quote is awaiting confirmation"
// @Router       /quotes/{id}/select [post]
func (h *QuoteHandler) Select(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var payload request.SelectQuoteRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			respondInvalid(c)
			return
		}
	}
	q, err := h.usecase.Select(c.Request.Context(), a.ID, c.Param("id"), usecase.SelectQuoteInput{
		StartsAt: payload.ResolveStartsAt(),
	})
	if err != nil {
		respondError(c, h.log, "quote", "select", err)
		return
	}
	c.JSON(http.StatusOK, response.FromQuote(q, h.now()))
}

// Confirm godoc
// @Summary      Confirm a selected quote before its timer lapses
// @Tags         quotes
// @Produce      json
// @Security     Bearer
// @Param        id   path      string  true  "Quote id"
// @Success      200  {object}  response.QuoteResponse
// @Failure      409  {object}  pkg.HTTPError  "This quote has expired"
// @Router       /quotes/{id}/confirm [post]
func (h *QuoteHandler) Confirm(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	q, err := h.usecase.Confirm(c.Request.Context(), a.ID, c.Param("id"))
	if err != nil {
		respondError(c, h.log, "quote", "confirm", err)
		return
	}
	c.JSON(http.StatusOK, response.FromQuote(q, h.now()))
}

func (h *QuoteHandler) Decline(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	q, err := h.usecase.Decline(c.Request.Context(), a.ID, c.Param("id"))
	if err != nil {
		respondError(c, h.log, "quote", "decline", err)
		return
	}
	c.JSON(http.StatusOK, response.FromQuote(q, h.now()))
}

func (h *QuoteHandler) Get(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	q, err := h.usecase.Get(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		respondError(c, h.log, "quote", "get", err)
		return
	}
	c.JSON(http.StatusOK, response.FromQuote(q, h.now()))
}

func (h *QuoteHandler) ListByRequest(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	items, err := h.usecase.ListByRequest(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		respondError(c, h.log, "quote", "list_by_request", err)
		return
	}
	c.JSON(http.StatusOK, response.FromQuotes(items, h.now()))
}

func (h *QuoteHandler) ListMine(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	items, err := h.usecase.ListMine(c.Request.Context(), a.ID)
	if err != nil {
		respondError(c, h.log, "quote", "list_mine", err)
		return
	}
	c.JSON(http.StatusOK, response.FromQuotes(items, h.now()))
}
