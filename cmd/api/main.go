package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/collabflow/collabflow-api/internal/config"
	"github.com/collabflow/collabflow-api/internal/database"
	"github.com/collabflow/collabflow-api/internal/handler"
	"github.com/collabflow/collabflow-api/internal/mailer"
	"github.com/collabflow/collabflow-api/internal/middleware"
	"github.com/collabflow/collabflow-api/internal/models"
	"github.com/collabflow/collabflow-api/internal/repository"
	"github.com/collabflow/collabflow-api/internal/router"
	"github.com/collabflow/collabflow-api/internal/service"
	cloud "github.com/collabflow/collabflow-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.Document{},
		&models.DocumentVersion{},
		&models.Project{},
		&models.Issue{},
		&models.Comment{},
		&models.Message{},
		&models.Notification{},
		&models.Reaction{},
		&models.Attachment{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		logger.Warn().Err(err).Msg("nats unavailable, cross-node event mirroring disabled")
		natsConn = nil
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	mail := mailer.New(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}, logger)

	var storage service.FileStorage
	if cfg.CloudinaryName != "" {
		uploader, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryName,
			APIKey:    cfg.CloudinaryKey,
			APISecret: cfg.CloudinarySecret,
			Folder:    cfg.CloudinaryFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		storage = uploader
	}

	userRepo := repository.NewUserRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	issueRepo := repository.NewIssueRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	reactionRepo := repository.NewReactionRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	searchRepo := repository.NewSearchRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	notificationService := service.NewNotificationService(notificationRepo, redisClient, cfg.EventChannelBase, natsConn, validate, logger)
	commentService := service.NewCommentService(commentRepo, documentRepo, issueRepo, teamRepo, userRepo, notificationService, mail, validate, logger, cfg.AppBaseURL, cfg.FanOutWorkers)
	messageService := service.NewMessageService(messageRepo, teamRepo, userRepo, notificationService, mail, redisClient, cfg.EventChannelBase, natsConn, validate, logger, cfg.AppBaseURL, cfg.FanOutWorkers)
	reactionService := service.NewReactionService(reactionRepo, validate, logger)
	teamService := service.NewTeamService(teamRepo, userRepo, notificationService, mail, validate, logger, cfg.AppBaseURL)
	issueService := service.NewIssueService(issueRepo, userRepo, notificationService, mail, validate, logger, cfg.AppBaseURL)
	workspaceService := service.NewWorkspaceService(documentRepo, projectRepo, validate, logger)
	searchService := service.NewSearchService(searchRepo, validate, logger, cfg.AppBaseURL)
	analyticsService := service.NewAnalyticsService(analyticsRepo, redisClient, cfg.AnalyticsCacheTTL, logger)
	attachmentService := service.NewAttachmentService(storage, attachmentRepo, cfg.UploadMaxSizeMB, validate, logger)

	runCtx, stopConsumers := context.WithCancel(context.Background())
	defer stopConsumers()
	notificationService.Start(runCtx)
	messageService.Start(runCtx)

	notificationHandler := handler.NewNotificationHandler(notificationService, logger, 30*time.Second)
	commentHandler := handler.NewCommentHandler(commentService, logger)
	messageHandler := handler.NewMessageHandler(messageService, logger)
	reactionHandler := handler.NewReactionHandler(reactionService, logger)
	teamHandler := handler.NewTeamHandler(teamService, logger)
	issueHandler := handler.NewIssueHandler(issueService, logger)
	workspaceHandler := handler.NewWorkspaceHandler(workspaceService, logger)
	searchHandler := handler.NewSearchHandler(searchService, logger)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, logger)

	var attachmentHandler *handler.AttachmentHandler
	if storage != nil {
		attachmentHandler = handler.NewAttachmentHandler(attachmentService, logger)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		NotificationHandler: notificationHandler,
		CommentHandler:      commentHandler,
		MessageHandler:      messageHandler,
		ReactionHandler:     reactionHandler,
		TeamHandler:         teamHandler,
		IssueHandler:        issueHandler,
		WorkspaceHandler:    workspaceHandler,
		SearchHandler:       searchHandler,
		AnalyticsHandler:    analyticsHandler,
		AttachmentHandler:   attachmentHandler,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, stopConsumers)
}

func waitForShutdown(app *fiber.App, stopConsumers context.CancelFunc) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	stopConsumers()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
