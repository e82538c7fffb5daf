package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/betmates/betmates-backend/api/routes"
	"github.com/betmates/betmates-backend/internal/config"
	"github.com/betmates/betmates-backend/internal/handlers"
	"github.com/betmates/betmates-backend/internal/repositories"
	mongorepo "github.com/betmates/betmates-backend/internal/repositories/mongodb"
	"github.com/betmates/betmates-backend/internal/services"
	"github.com/betmates/betmates-backend/pkg/mongodb"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present; real environments configure via env vars
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	mongoClient, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err = mongoClient.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	db := mongoClient.Database(cfg.MongoDB.Database)

	// The uniqueness invariants live in these indexes; refuse to start
	// without them.
	if err := mongodb.EnsureIndexes(context.Background(), db); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	// Initialize repositories
	var userRepo repositories.UserRepository = mongorepo.NewUserRepository(db)
	var groupRepo repositories.GroupRepository = mongorepo.NewGroupRepository(db)
	var memberRepo repositories.GroupMemberRepository = mongorepo.NewGroupMemberRepository(db)
	var betRepo repositories.BetRepository = mongorepo.NewBetRepository(db)
	var participationRepo repositories.ParticipationRepository = mongorepo.NewParticipationRepository(db)
	var challengeRepo repositories.ChallengeRepository = mongorepo.NewChallengeRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, cfg)
	groupService := services.NewGroupService(groupRepo, memberRepo, mongoClient)
	betService := services.NewBetService(betRepo, participationRepo, memberRepo, mongoClient)
	challengeService := services.NewChallengeService(challengeRepo, memberRepo, mongoClient)

	// Initialize handlers
	handlerDeps := routes.HandlerDependencies{
		AuthHandler:      handlers.NewAuthHandler(authService),
		GroupHandler:     handlers.NewGroupHandler(groupService),
		BetHandler:       handlers.NewBetHandler(betService),
		ChallengeHandler: handlers.NewChallengeHandler(challengeService),
	}

	router := routes.SetupRouter(cfg, handlerDeps)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	log.Printf("Server starting on port %s", cfg.Server.Port)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server exiting")
}
