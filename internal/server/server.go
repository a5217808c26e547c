package server

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/workbridge-app/workbridge/internal/config"
	"github.com/workbridge-app/workbridge/internal/entity"
	"github.com/workbridge-app/workbridge/internal/middleware"
	"github.com/workbridge-app/workbridge/pkg/storage"

	attachmentHttp "github.com/workbridge-app/workbridge/internal/modules/attachment/delivery/http"
	attachmentRepo "github.com/workbridge-app/workbridge/internal/modules/attachment/repository"
	attachmentService "github.com/workbridge-app/workbridge/internal/modules/attachment/service"

	conversationHttp "github.com/workbridge-app/workbridge/internal/modules/conversation/delivery/http"
	conversationRepo "github.com/workbridge-app/workbridge/internal/modules/conversation/repository"
	conversationService "github.com/workbridge-app/workbridge/internal/modules/conversation/service"

	dashboardHttp "github.com/workbridge-app/workbridge/internal/modules/dashboard/delivery/http"
	dashboardService "github.com/workbridge-app/workbridge/internal/modules/dashboard/service"

	jobHttp "github.com/workbridge-app/workbridge/internal/modules/job/delivery/http"
	jobRepo "github.com/workbridge-app/workbridge/internal/modules/job/repository"
	jobService "github.com/workbridge-app/workbridge/internal/modules/job/service"

	notifHttp "github.com/workbridge-app/workbridge/internal/modules/notification/delivery/http"
	notifRepo "github.com/workbridge-app/workbridge/internal/modules/notification/repository"
	notifService "github.com/workbridge-app/workbridge/internal/modules/notification/service"

	profileHttp "github.com/workbridge-app/workbridge/internal/modules/profile/delivery/http"
	profileService "github.com/workbridge-app/workbridge/internal/modules/profile/service"

	proposalHttp "github.com/workbridge-app/workbridge/internal/modules/proposal/delivery/http"
	proposalRepo "github.com/workbridge-app/workbridge/internal/modules/proposal/repository"
	proposalService "github.com/workbridge-app/workbridge/internal/modules/proposal/service"

	searchHttp "github.com/workbridge-app/workbridge/internal/modules/search/delivery/http"
	searchRepo "github.com/workbridge-app/workbridge/internal/modules/search/repository"
	searchService "github.com/workbridge-app/workbridge/internal/modules/search/service"

	userHttp "github.com/workbridge-app/workbridge/internal/modules/user/delivery/http"
	userRepo "github.com/workbridge-app/workbridge/internal/modules/user/repository"
	userService "github.com/workbridge-app/workbridge/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Server {
	userRepository := userRepo.NewUserRepository(db)

	fileStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Fatalf("failed to initialize cloudinary storage: %v", err)
	}

	meiliHost := cfg.MeiliSearchHost
	if !strings.HasPrefix(meiliHost, "http") {
		meiliHost = "http://" + meiliHost + ":7700"
	}
	meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))

	searchRepository := searchRepo.NewSearchRepository(db)
	searchSvc := searchService.NewService(meiliClient, searchRepository)

	authSvc := userService.NewAuthService(userRepository)
	authHandler := userHttp.NewAuthHandler(authSvc)

	profileSvc := profileService.NewProfileService(userRepository, fileStorage, searchSvc)
	profileHandler := profileHttp.NewProfileHandler(profileSvc)

	searchHandler := searchHttp.NewSearchHandler(searchSvc)

	jobRepository := jobRepo.NewJobRepository(db)
	proposalRepository := proposalRepo.NewProposalRepository(db)
	jobSvc := jobService.NewService(jobRepository, userRepository, proposalRepository, searchSvc)
	jobHandler := jobHttp.NewJobHandler(jobSvc)

	notificationRepository := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notificationRepository, redisClient)
	notificationHandler := notifHttp.NewNotificationHandler(notificationSvc, redisClient)

	proposalSvc := proposalService.NewService(
		proposalRepository,
		jobRepository,
		userRepository,
		notificationSvc,
		searchSvc,
		redisClient,
		cfg.ProposalCooldown,
	)
	proposalHandler := proposalHttp.NewProposalHandler(proposalSvc)

	conversationRepository := conversationRepo.NewConversationRepository(db)
	conversationSvc := conversationService.NewService(conversationRepository, userRepository, notificationSvc)
	conversationHandler := conversationHttp.NewConversationHandler(conversationSvc)

	attachmentRepository := attachmentRepo.NewAttachmentRepository(db)
	attachmentSvc := attachmentService.NewAttachmentService(attachmentRepository, fileStorage)
	attachmentHandler := attachmentHttp.NewAttachmentHandler(attachmentSvc)

	dashboardSvc := dashboardService.NewDashboardService(userRepository, jobRepository, proposalSvc)
	dashboardHandler := dashboardHttp.NewDashboardHandler(dashboardSvc)

	// Orphan attachment cleanup, every 12 hours
	go func() {
		ticker := time.NewTicker(12 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			if err := attachmentSvc.CleanupOrphanAttachments(context.Background()); err != nil {
				log.Printf("orphan attachment cleanup failed: %v", err)
			}
		}
	}()

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(userRepository)

	api := router.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
	}

	api.GET("/search", searchHandler.Search)
	api.GET("/profiles/:username", profileHandler.GetProfileByUsername)

	// Protected routes
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Job routes
		protected.GET("/jobs", jobHandler.GetJobs)
		protected.POST("/jobs", authMiddleware.RequireRole(entity.RoleClient), jobHandler.CreateJob)
		protected.GET("/jobs/:job_id", jobHandler.GetJob)
		protected.PUT("/jobs/:job_id", authMiddleware.RequireRole(entity.RoleClient), jobHandler.UpdateJob)
		protected.DELETE("/jobs/:job_id", authMiddleware.RequireRole(entity.RoleClient), jobHandler.DeleteJob)

		// Proposal routes
		protected.POST("/jobs/:job_id/proposals", authMiddleware.RequireRole(entity.RoleFreelancer), proposalHandler.SubmitProposal)
		protected.GET("/jobs/:job_id/proposals", authMiddleware.RequireRole(entity.RoleClient), proposalHandler.GetJobProposals)
		protected.GET("/proposals/me", authMiddleware.RequireRole(entity.RoleFreelancer), proposalHandler.GetMyProposals)
		protected.POST("/proposals/:proposal_id/accept", authMiddleware.RequireRole(entity.RoleClient), proposalHandler.AcceptProposal)

		// Conversation routes
		protected.GET("/conversations", conversationHandler.GetMyConversations)
		protected.GET("/conversations/:conversation_id", conversationHandler.GetConversation)
		protected.POST("/conversations/:conversation_id/messages", conversationHandler.SendMessage)

		// Profile routes
		protected.GET("/profile/me", profileHandler.GetCurrentProfile)
		protected.PUT("/profile", profileHandler.UpdateProfile)

		// Dashboard
		protected.GET("/dashboard", dashboardHandler.GetDashboard)

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)

		protected.POST("/upload", attachmentHandler.UploadAttachment)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
