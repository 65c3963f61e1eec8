package handlers

import (
	"net/http"
	"time"

	response "automarket/internal/adapter/http/dto/response"
	"automarket/internal/logger"
	"automarket/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// JobLockHandler exposes the exclusive job lock and the pro's lead inbox.
type JobLockHandler struct {
	usecase usecase.IJobLockUseCase
	log     *logrus.Logger
	now     func() time.Time
}

func NewJobLockHandler(uc usecase.IJobLockUseCase, log *logrus.Logger) *JobLockHandler {
	return &JobLockHandler{usecase: uc, log: logger.OrDiscard(log), now: utcNow}
}

// Acquire godoc
// @Summary      Accept a job (acquire the exclusive lock)
// @Description  Succeeds for exactly one professional while the lock window is open.
// @Tags         job-lock
// @Produce      json
// @Security     Bearer
// @Param        id   path      string  true  "Service request id"
// @Success      200  {object}  response.ServiceRequestResponse
// @Failure      404  {object}  pkg.HTTPError
// @Failure      409  {object}  pkg.HTTPError  "This job was already accepted by another professional"
// @Router       /service-requests/{id}/lock [post]
func (h *JobLockHandler) Acquire(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	r, err := h.usecase.Acquire(c.Request.Context(), c.Param("id"), a.ID)
	if err != nil {
		respondError(c, h.log, "job_lock", "acquire", err)
		return
	}
	c.JSON(http.StatusOK, response.FromServiceRequest(r, h.now()))
}

// IsLocked godoc
// @Summary      Current lock state of a request
// @Tags         job-lock
// @Produce      json
// @Security     Bearer
// @Param        id   path      string  true  "Service request id"
// @Success      200  {object}  response.LockResponse
// @Failure      404  {object}  pkg.HTTPError
// @Router       /service-requests/{id}/lock [get]
func (h *JobLockHandler) IsLocked(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	state, err := h.usecase.LockStatus(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		respondError(c, h.log, "job_lock", "is_locked", err)
		return
	}
	c.JSON(http.StatusOK, response.FromLockState(state))
}

func (h *JobLockHandler) ListLeads(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	views, err := h.usecase.ListLeads(c.Request.Context(), a.ID)
	if err != nil {
		respondError(c, h.log, "job_lock", "list_leads", err)
		return
	}
	c.JSON(http.StatusOK, response.FromLeadViews(views))
}

func (h *JobLockHandler) DeclineLead(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	lead, err := h.usecase.Decline(c.Request.Context(), c.Param("id"), a.ID)
	if err != nil {
		respondError(c, h.log, "job_lock", "decline", err)
		return
	}
	c.JSON(http.StatusOK, response.FromLead(lead))
}
