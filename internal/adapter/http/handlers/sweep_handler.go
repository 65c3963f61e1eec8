package handlers

import (
	"net/http"
	"time"

	response "automarket/internal/adapter/http/dto/response"
	"automarket/internal/logger"
	"automarket/internal/usecase"
	"automarket/pkg"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SweepHandler lets an external scheduler trigger the expiration sweep.
type SweepHandler struct {
	usecase usecase.ISweepUseCase
	log     *logrus.Logger
	now     func() time.Time
}

func NewSweepHandler(uc usecase.ISweepUseCase, log *logrus.Logger) *SweepHandler {
	return &SweepHandler{usecase: uc, log: logger.OrDiscard(log), now: utcNow}
}

// SweepFailure is the error body of a sweep pass that failed part way. Result
// holds what the pass completed before failing.
type SweepFailure struct {
	pkg.HTTPError
	Result usecase.SweepResult `json:"result"`
}

// Run godoc
// @Summary      Run one expiration sweep pass
// @Tags         internal
// @Produce      json
// @Param        X-Sweep-Token  header    string  true  "Shared sweep token"
// @Success      200            {object}  usecase.SweepResult
// @Failure      401            {object}  pkg.HTTPError
// @Failure      500            {object}  handlers.SweepFailure
// @Router       /internal/sweep [post]
func (h *SweepHandler) Run(c *gin.Context) {
	res, err := h.usecase.Run(c.Request.Context())
	if err != nil {
		appErr := mapError(err)
		logger.LogError(h.log, "sweep", "run", c.FullPath(), c.Params, err)
		c.JSON(appErr.HTTPStatus, SweepFailure{HTTPError: appErr.ToHTTPError(), Result: res})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *SweepHandler) Pending(c *gin.Context) {
	items, err := h.usecase.Pending(c.Request.Context())
	if err != nil {
		respondError(c, h.log, "sweep", "pending", err)
		return
	}
	c.JSON(http.StatusOK, response.FromQuotes(items, h.now()))
}
