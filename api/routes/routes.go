package routes

import (
	"github.com/betmates/betmates-backend/internal/config"
	"github.com/betmates/betmates-backend/internal/handlers"
	"github.com/betmates/betmates-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// HandlerDependencies bundles the handlers the router wires up
type HandlerDependencies struct {
	AuthHandler      *handlers.AuthHandler
	GroupHandler     *handlers.GroupHandler
	BetHandler       *handlers.BetHandler
	ChallengeHandler *handlers.ChallengeHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
			})
		})

		auth := public.Group("/auth")
		{
			auth.POST("/register", deps.AuthHandler.Register)
			auth.POST("/login", deps.AuthHandler.Login)
		}
	}

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(cfg))
	{
		groups := protected.Group("/groups")
		{
			groups.GET("", deps.GroupHandler.GetMyGroups)
			groups.POST("", deps.GroupHandler.CreateGroup)
			groups.POST("/join", deps.GroupHandler.JoinGroup)
			groups.GET("/:id", deps.GroupHandler.GetGroupByID)
			groups.GET("/:id/members", deps.GroupHandler.GetMembers)
			groups.GET("/:id/balance", deps.GroupHandler.GetBalance)
			groups.GET("/:id/bets", deps.BetHandler.GetGroupBets)
			groups.GET("/:id/challenges", deps.ChallengeHandler.GetGroupChallenges)
		}

		bets := protected.Group("/bets")
		{
			bets.POST("", deps.BetHandler.CreateBet)
			bets.GET("/:id", deps.BetHandler.GetBetByID)
			bets.GET("/:id/stats", deps.BetHandler.GetBetStats)
			bets.GET("/:id/participations", deps.BetHandler.GetParticipations)
			bets.POST("/:id/participations", deps.BetHandler.PlaceParticipation)
			bets.POST("/:id/settle", deps.BetHandler.SettleBet)
		}

		challenges := protected.Group("/challenges")
		{
			challenges.POST("", deps.ChallengeHandler.CreateChallenge)
			challenges.GET("/:id", deps.ChallengeHandler.GetChallengeByID)
			challenges.POST("/:id/join", deps.ChallengeHandler.JoinChallenge)
			challenges.GET("/:id/justifications", deps.ChallengeHandler.GetJustifications)
			challenges.POST("/:id/justifications", deps.ChallengeHandler.SubmitJustification)
			challenges.POST("/:id/complete", deps.ChallengeHandler.CompleteFromJustification)
			challenges.POST("/:id/tasks/:taskId/complete", deps.ChallengeHandler.CompleteTask)
		}

		justifications := protected.Group("/justifications")
		{
			justifications.POST("/:id/votes", deps.ChallengeHandler.VoteJustification)
			justifications.GET("/:id/status", deps.ChallengeHandler.GetJustificationStatus)
		}
	}

	return router
}
