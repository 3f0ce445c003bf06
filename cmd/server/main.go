// @title Invois API
// @version 1.0
// @description Invoicing backend: documents, customers, uploads, and the invoicing assistant.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"fmt"
	"log"

	"invois/internal/assistant/openai"
	"invois/internal/config"
	"invois/internal/email/noop"
	"invois/internal/email/ses"
	"invois/internal/handler"
	"invois/internal/numbering"
	"invois/internal/port"
	"invois/internal/repository/postgres"
	"invois/internal/router"
	"invois/internal/service"
	s3storage "invois/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	tenantRepo := postgres.NewTenantRepo(db)
	userRepo := postgres.NewUserRepo(db)
	customerRepo := postgres.NewCustomerRepo(db)
	documentRepo := postgres.NewDocumentRepo(db)
	statsRepo := postgres.NewStatsRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize email sender
	var emailSender port.EmailSender
	switch cfg.Email.Provider {
	case "ses":
		emailSender, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		emailSender = noop.NewNoopSender()
	}

	// Initialize assistant backend; nil when not configured
	var chatClient port.ChatClient
	if cfg.Assistant.APIKey != "" {
		chatClient = openai.NewClient(&cfg.Assistant)
	}

	// Initialize services
	authSvc := service.NewAuthService(userRepo, tenantRepo, cfg.JWT)
	fileSvc := service.NewFileService(s3Client, &cfg.S3)
	numGen := numbering.NewGenerator(documentRepo)
	documentSvc := service.NewDocumentService(documentRepo, numGen, fileSvc, emailSender)
	customerSvc := service.NewCustomerService(customerRepo)
	assistantSvc := service.NewAssistantService(chatClient, documentSvc, customerSvc)
	tenantSvc := service.NewTenantService(tenantRepo)
	userSvc := service.NewUserService(userRepo)
	statsSvc := service.NewStatsService(statsRepo)

	// Initialize handlers
	authH := handler.NewAuthHandler(authSvc)
	documentH := handler.NewDocumentHandler(documentSvc)
	customerH := handler.NewCustomerHandler(customerSvc)
	uploadH := handler.NewUploadHandler(fileSvc)
	assistantH := handler.NewAssistantHandler(assistantSvc)
	tenantH := handler.NewTenantHandler(tenantSvc)
	userH := handler.NewUserHandler(userSvc)
	statsH := handler.NewStatsHandler(statsSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg, authSvc, authH, documentH, customerH, uploadH, assistantH, tenantH, userH, statsH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
