package handlers

import (
	"net/http"
	"time"

	"github.com/betmates/betmates-backend/internal/models"
	"github.com/betmates/betmates-backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChallengeHandler handles challenge-related HTTP requests
type ChallengeHandler struct {
	challengeService services.ChallengeService
}

// NewChallengeHandler creates a new ChallengeHandler
func NewChallengeHandler(challengeService services.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{
		challengeService: challengeService,
	}
}

// CreateChallengeRequest is the payload for creating a challenge
type CreateChallengeRequest struct {
	GroupID      string   `json:"groupId" binding:"required"`
	Title        string   `json:"title" binding:"required"`
	Description  string   `json:"description"`
	InitialPrize int64    `json:"initialPrize" binding:"min=0"`
	EndDate      string   `json:"endDate" binding:"required"`
	Tasks        []string `json:"tasks"`
}

// CreateChallenge handles POST /challenges
func (h *ChallengeHandler) CreateChallenge(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var request CreateChallengeRequest
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

	challenge, err := h.challengeService.CreateChallenge(c.Request.Context(), groupID, userID, request.Title, request.Description, request.InitialPrize, endDate, request.Tasks)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, challenge)
}

// GetChallengeByID handles GET /challenges/:id
func (h *ChallengeHandler) GetChallengeByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	challenge, err := h.challengeService.GetChallengeByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, challenge)
}

// GetGroupChallenges handles GET /groups/:id/challenges
func (h *ChallengeHandler) GetGroupChallenges(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	challenges, err := h.challengeService.GetGroupChallenges(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, challenges)
}

// JoinChallengeRequest is the payload for joining a challenge
type JoinChallengeRequest struct {
	BlindAmount int64 `json:"blindAmount" binding:"required"`
}

// JoinChallenge handles POST /challenges/:id/join
func (h *ChallengeHandler) JoinChallenge(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	challengeID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var request JoinChallengeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.challengeService.JoinChallenge(c.Request.Context(), challengeID, userID, request.BlindAmount); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Joined challenge"})
}

// SubmitJustificationRequest is the payload for submitting proof
type SubmitJustificationRequest struct {
	Type    string `json:"type" binding:"required,oneof=text image"`
	Content string `json:"content" binding:"required"`
}

// SubmitJustification handles POST /challenges/:id/justifications
func (h *ChallengeHandler) SubmitJustification(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	challengeID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var request SubmitJustificationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	justification, err := h.challengeService.SubmitJustification(c.Request.Context(), challengeID, userID, models.JustificationType(request.Type), request.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, justification)
}

// GetJustifications handles GET /challenges/:id/justifications
func (h *ChallengeHandler) GetJustifications(c *gin.Context) {
	challengeID, ok := pathID(c, "id")
	if !ok {
		return
	}

	justifications, err := h.challengeService.GetJustifications(c.Request.Context(), challengeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, justifications)
}

// VoteRequest is the payload for voting on a justification
type VoteRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

// VoteJustification handles POST /justifications/:id/votes
func (h *ChallengeHandler) VoteJustification(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	justificationID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var request VoteRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.challengeService.VoteJustification(c.Request.Context(), justificationID, userID, *request.Approved); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vote recorded"})
}

// GetJustificationStatus handles GET /justifications/:id/status
func (h *ChallengeHandler) GetJustificationStatus(c *gin.Context) {
	justificationID, ok := pathID(c, "id")
	if !ok {
		return
	}

	status, err := h.challengeService.GetJustificationStatus(c.Request.Context(), justificationID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// CompleteFromJustificationRequest names the approved justification that
// completes the challenge
type CompleteFromJustificationRequest struct {
	JustificationID string `json:"justificationId" binding:"required"`
}

// CompleteFromJustification handles POST /challenges/:id/complete
func (h *ChallengeHandler) CompleteFromJustification(c *gin.Context) {
	challengeID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var request CompleteFromJustificationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	justificationID, err := primitive.ObjectIDFromHex(request.JustificationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid justification ID format"})
		return
	}

	challenge, err := h.challengeService.CompleteFromJustification(c.Request.Context(), challengeID, justificationID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, challenge)
}

// CompleteTask handles POST /challenges/:id/tasks/:taskId/complete
func (h *ChallengeHandler) CompleteTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	challengeID, ok := pathID(c, "id")
	if !ok {
		return
	}
	taskID, ok := pathID(c, "taskId")
	if !ok {
		return
	}

	challenge, err := h.challengeService.CompleteTask(c.Request.Context(), challengeID, taskID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, challenge)
}
