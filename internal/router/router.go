package router

import (
	"log"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/buzztalks/backend/internal/enrich"
	"github.com/buzztalks/backend/internal/handlers"
	"github.com/buzztalks/backend/internal/live"
	authmw "github.com/buzztalks/backend/internal/middleware"
	"github.com/buzztalks/backend/internal/models"
	"github.com/buzztalks/backend/internal/repositories"
	"github.com/buzztalks/backend/pkg/cloudinary"
	"github.com/buzztalks/backend/pkg/config"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// SetupMiddleware attaches the global middleware chain
func SetupMiddleware(e *echo.Echo) {
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
}

// SetupRoutes wires repositories and handlers onto the echo instance.
// Everything under /api/v1 requires authentication; the auth endpoints and
// the health check do not.
func SetupRoutes(e *echo.Echo, cfg *config.Config, db *config.DB, firebaseAuth *firebaseauth.Client) {
	if err := db.Postgres.AutoMigrate(&models.Account{}); err != nil {
		log.Fatalf("Failed to migrate account schema: %v", err)
	}

	mongoDB := db.Mongo.Database(cfg.MongoDatabase)

	accountRepo := repositories.NewPostgresAccountRepository(db.Postgres)
	userRepo := repositories.NewMongoUserRepository(mongoDB)
	postRepo := repositories.NewMongoPostRepository(mongoDB, "posts")
	reelRepo := repositories.NewMongoPostRepository(mongoDB, "reels")
	commentRepo := repositories.NewMongoCommentRepository(mongoDB)
	followRepo := repositories.NewMongoFollowRepository(mongoDB)
	storyRepo := repositories.NewMongoStoryRepository(mongoDB)
	convRepo := repositories.NewMongoConversationRepository(mongoDB)
	msgRepo := repositories.NewMongoMessageRepository(mongoDB)
	notifRepo := repositories.NewMongoNotificationRepository(mongoDB)

	enricher := enrich.New(userRepo)
	hub := live.NewHub(mongoDB)
	cld := cloudinary.New(cfg.CloudinaryCloudName, cfg.CloudinaryUploadPreset)

	authHandler := handlers.NewAuthHandler(accountRepo, userRepo, firebaseAuth, cfg.JWTSecret)
	userHandler := handlers.NewUserHandler(userRepo)
	postHandler := handlers.NewPostHandler(postRepo, userRepo, "/posts", true)
	reelHandler := handlers.NewPostHandler(reelRepo, userRepo, "/reels", false)
	feedHandler := handlers.NewFeedHandler(postRepo, reelRepo, enricher)
	likeHandler := handlers.NewLikeHandler(postRepo, reelRepo, commentRepo, notifRepo)
	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo, notifRepo, enricher)
	followHandler := handlers.NewFollowHandler(followRepo, enricher)
	storyHandler := handlers.NewStoryHandler(storyRepo, enricher)
	convHandler := handlers.NewConversationHandler(convRepo, msgRepo, notifRepo, enricher)
	notifHandler := handlers.NewNotificationHandler(notifRepo, enricher)
	uploadHandler := handlers.NewUploadHandler(cld)
	streamHandler := handlers.NewStreamHandler(hub, postRepo, reelRepo)

	e.GET("/health", handlers.HealthCheck)

	authGroup := e.Group("/auth")
	authHandler.RegisterAuthRoutes(authGroup)

	api := e.Group("/api/v1", authmw.AuthMiddleware(firebaseAuth))
	userHandler.RegisterProfileRoutes(api)
	postHandler.RegisterPostRoutes(api)
	reelHandler.RegisterPostRoutes(api)
	feedHandler.RegisterFeedRoutes(api)
	likeHandler.RegisterLikeRoutes(api)
	commentHandler.RegisterCommentRoutes(api)
	followHandler.RegisterFollowRoutes(api)
	storyHandler.RegisterStoryRoutes(api)
	convHandler.RegisterConversationRoutes(api)
	notifHandler.RegisterNotificationRoutes(api)
	uploadHandler.RegisterUploadRoutes(api)
	streamHandler.RegisterStreamRoutes(api)
}
