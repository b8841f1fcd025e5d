package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/lostfound-bot/internal/http/handlers/common"
	"github.com/ignatzorin/lostfound-bot/internal/models"
	"github.com/ignatzorin/lostfound-bot/internal/moderation"
)

// ReportModeration операции модерации, доступные через API.
type ReportModeration interface {
	ListPending(ctx context.Context) ([]models.Report, error)
	Get(ctx context.Context, id int64) (*models.Report, error)
	Decide(ctx context.Context, d moderation.Decision) (moderation.Outcome, error)
}

// ReportHandler отдаёт заявки и принимает решения модераторов.
type ReportHandler struct {
	moderation ReportModeration
}

// NewReportHandler создаёт хэндлер.
func NewReportHandler(m ReportModeration) *ReportHandler {
	return &ReportHandler{moderation: m}
}

// DecisionResponse итог решения.
type DecisionResponse struct {
	Result moderation.Result   `json:"result"`
	Status models.ReportStatus `json:"status"`
	Report *models.Report      `json:"report"`
}

// ListPending GET /api/reports/pending
func (h *ReportHandler) ListPending(c *gin.Context) {
	reports, err := h.moderation.ListPending(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	if reports == nil {
		reports = []models.Report{}
	}

	c.JSON(http.StatusOK, gin.H{
		"reports": reports,
		"total":   len(reports),
	})
}

// GetReport GET /api/reports/:id
func (h *ReportHandler) GetReport(c *gin.Context) {
	id, err := common.ParseIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	report, err := h.moderation.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// Decide POST /api/reports/:id/decision
func (h *ReportHandler) Decide(c *gin.Context) {
	moderator, err := common.CurrentModerator(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Action string `json:"action" binding:"required,oneof=approve reject"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "action должен быть approve или reject")
		return
	}

	outcome, err := h.moderation.Decide(c.Request.Context(), moderation.Decision{
		ReportID:  id,
		Verb:      moderation.Verb(req.Action),
		Moderator: moderator,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	status := http.StatusOK
	if outcome.Result == moderation.ResultAlreadyDecided {
		status = http.StatusConflict
	}

	c.JSON(status, DecisionResponse{
		Result: outcome.Result,
		Status: outcome.Status,
		Report: outcome.Report,
	})
}
