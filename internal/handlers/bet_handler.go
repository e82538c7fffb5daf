package handlers

import (
	"net/http"
	"time"

	"github.com/betmates/betmates-backend/internal/models"
	"github.com/betmates/betmates-backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BetHandler handles bet-related HTTP requests
type BetHandler struct {
	betService services.BetService
}

// NewBetHandler creates a new BetHandler
func NewBetHandler(betService services.BetService) *BetHandler {
	return &BetHandler{
		betService: betService,
	}
}

// CreateBetRequest is the payload for creating a bet
type CreateBetRequest struct {
	GroupID     string   `json:"groupId" binding:"required"`
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Options     []string `json:"options" binding:"required,min=2"`
	EndDate     string   `json:"endDate" binding:"required"`
}

// CreateBet handles POST /bets
func (h *BetHandler) CreateBet(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request CreateBetRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	groupID, err := primitive.ObjectIDFromHex(request.GroupID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID format"})
		return
	}
	endDate, err := time.Parse(time.RFC3339, request.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end date format (RFC3339)"})
		return
	}

	bet, err := h.betService.CreateBet(c.Request.Context(), groupID, userID, request.Title, request.Description, models.BetType(request.Type), request.Options, endDate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bet)
}

// GetBetByID handles GET /bets/:id
func (h *BetHandler) GetBetByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	bet, err := h.betService.GetBetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bet)
}

// GetGroupBets handles GET /groups/:id/bets
func (h *BetHandler) GetGroupBets(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	bets, err := h.betService.GetGroupBets(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bets)
}

// PlaceParticipationRequest is the payload for staking on a bet
type PlaceParticipationRequest struct {
	OptionID string `json:"optionId" binding:"required"`
	Amount   int64  `json:"amount" binding:"required,gt=0"`
}

// PlaceParticipation handles POST /bets/:id/participations. A retried request
// carrying the same Idempotency-Key header returns the original participation
// instead of double-charging the caller.
func (h *BetHandler) PlaceParticipation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	betID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var request PlaceParticipationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	optionID, err := primitive.ObjectIDFromHex(request.OptionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid option ID format"})
		return
	}

	participation, err := h.betService.PlaceParticipation(c.Request.Context(), betID, userID, optionID, request.Amount, c.GetHeader("Idempotency-Key"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, participation)
}

// SettleBetRequest is the payload for settling a bet
type SettleBetRequest struct {
	WinningOptionID string `json:"winningOptionId" binding:"required"`
}

// SettleBet handles POST /bets/:id/settle
func (h *BetHandler) SettleBet(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	betID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var request SettleBetRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	optionID, err := primitive.ObjectIDFromHex(request.WinningOptionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid option ID format"})
		return
	}

	bet, err := h.betService.SettleBet(c.Request.Context(), betID, optionID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bet)
}

// GetParticipations handles GET /bets/:id/participations
func (h *BetHandler) GetParticipations(c *gin.Context) {
	betID, ok := pathID(c, "id")
	if !ok {
		return
	}

	participations, err := h.betService.GetParticipations(c.Request.Context(), betID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, participations)
}

// GetBetStats handles GET /bets/:id/stats
func (h *BetHandler) GetBetStats(c *gin.Context) {
	betID, ok := pathID(c, "id")
	if !ok {
		return
	}

	stats, err := h.betService.GetBetStats(c.Request.Context(), betID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
