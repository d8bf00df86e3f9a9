package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/debt_settlement_app/internal/core/ports/services"
	"github.com/SscSPs/debt_settlement_app/internal/dto"
	"github.com/SscSPs/debt_settlement_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

type settlementHandler struct {
	settlementService portssvc.SettlementSvc
}

func newSettlementHandler(ss portssvc.SettlementSvc) *settlementHandler {
	return &settlementHandler{settlementService: ss}
}

func registerSettlementRoutes(rg *gin.RouterGroup, settlementService portssvc.SettlementSvc) {
	h := newSettlementHandler(settlementService)

	settlements := rg.Group("/settlements")
	{
		settlements.POST("", h.createSettlement)
	}
}

// createSettlement godoc
// @Summary Settle an event
// @Description Computes the smallest set of payments that settles the posted expenses and payoffs, in the base currency.
// @Description A missing exchange rate is answered with 422 since the request itself was well formed.
// @Tags settlements
// @Accept  json
// @Produce  json
// @Param   settlement body dto.CreateSettlementRequest true "Event participants and transactions"
// @Success 201 {object} dto.SettlementResponse
// @Failure 400 {object} map[string]string "Invalid request format, unknown participant or bad configuration"
// @Failure 422 {object} map[string]string "No exchange rate for a required conversion"
// @Failure 500 {object} map[string]string "Failed to compute settlement"
// @Router /settlements [post]
func (h *settlementHandler) createSettlement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateSettlement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger.Info("Received request to settle event",
		slog.String("base_currency", req.BaseCurrency),
		slog.Int("participants", len(req.Participants)),
		slog.Int("transactions", len(req.Transactions)),
	)

	settlement, err := h.settlementService.Settle(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err, "Failed to compute settlement")
		return
	}

	c.JSON(http.StatusCreated, dto.ToSettlementResponse(settlement))
}
