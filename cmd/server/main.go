package main

import (
	"context"
	"encoding/base64"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/rangerisrael/pet-portal-sub000/internal/config"
	"github.com/rangerisrael/pet-portal-sub000/internal/db"
	"github.com/rangerisrael/pet-portal-sub000/internal/handler"
	"github.com/rangerisrael/pet-portal-sub000/internal/repository"
	"github.com/rangerisrael/pet-portal-sub000/internal/server"
	"github.com/rangerisrael/pet-portal-sub000/internal/service"
	"google.golang.org/api/option"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect database", "err", err)
		os.Exit(1)
	}
	defer pg.Close()

	// Firebase Auth (optional)
	var firebaseAuth *auth.Client
	if cfg.FirebaseProjectID != "" {
		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, firebaseOptions(cfg)...)
		if err != nil {
			logger.Error("failed to init firebase app", "err", err)
			os.Exit(1)
		}
		client, err := app.Auth(ctx)
		if err != nil {
			logger.Error("failed to init firebase auth", "err", err)
			os.Exit(1)
		}
		firebaseAuth = client
	}

	// repositories
	userRepo := repository.UserRepository{DB: pg}
	branchRepo := repository.BranchRepository{DB: pg}
	staffRepo := repository.StaffAssignmentRepository{DB: pg}
	petRepo := repository.PetRepository{DB: pg}
	appointmentRepo := repository.AppointmentRepository{DB: pg}
	recordRepo := repository.MedicalRecordRepository{DB: pg}
	inventoryRepo := repository.InventoryRepository{DB: pg}
	requestRepo := repository.StockRequestRepository{DB: pg}
	invoiceRepo := repository.InvoiceRepository{DB: pg}
	notificationRepo := repository.NotificationRepository{DB: pg}
	auditRepo := repository.AuditLogRepository{DB: pg}
	dashboardRepo := repository.DashboardRepository{DB: pg}
	preferencesRepo := repository.PreferencesRepository{DB: pg}

	if err := branchRepo.SeedDefaults(ctx); err != nil {
		logger.Error("failed to seed branches", "err", err)
		os.Exit(1)
	}
	if err := inventoryRepo.SeedDefaults(ctx); err != nil {
		logger.Error("failed to seed inventory", "err", err)
		os.Exit(1)
	}

	// services
	authSvc := service.AuthService{Config: cfg, Users: userRepo, Logger: logger, FirebaseAuth: firebaseAuth}
	auditSvc := &service.AuditService{Logs: auditRepo, Notifications: notificationRepo, Logger: logger}
	defer auditSvc.Close()
	inventorySvc := service.InventoryService{Items: inventoryRepo, Audit: auditSvc}
	requestSvc := service.StockRequestService{Requests: requestRepo, Items: inventoryRepo, Staff: staffRepo, Audit: auditSvc}

	// handlers
	healthHandler := handler.HealthHandler{DB: pg}
	authHandler := handler.AuthHandler{Service: &authSvc}
	profileHandler := handler.ProfileHandler{Users: userRepo, Config: cfg}
	branchHandler := handler.BranchHandler{Repo: branchRepo}
	staffHandler := handler.StaffHandler{Auth: &authSvc, Assignments: staffRepo}
	petHandler := handler.PetHandler{Repo: petRepo, Appointments: appointmentRepo, Config: cfg}
	appointmentHandler := handler.AppointmentHandler{Repo: appointmentRepo, Pets: petRepo, Staff: staffRepo, Branches: branchRepo, Audit: auditSvc}
	recordHandler := handler.MedicalRecordHandler{Repo: recordRepo, Pets: petRepo, Audit: auditSvc}
	inventoryHandler := handler.InventoryHandler{Repo: inventoryRepo, Staff: staffRepo, Branches: branchRepo, Service: inventorySvc}
	requestHandler := handler.StockRequestHandler{Repo: requestRepo, Staff: staffRepo, Branches: branchRepo, Service: requestSvc}
	invoiceHandler := handler.InvoiceHandler{Repo: invoiceRepo, Audit: auditSvc}
	notificationHandler := handler.NotificationHandler{Repo: notificationRepo}
	preferencesHandler := handler.PreferencesHandler{Repo: preferencesRepo}
	dashboardHandler := handler.DashboardHandler{Repo: dashboardRepo, Staff: staffRepo, Branches: branchRepo}
	auditLogHandler := handler.AuditLogHandler{Repo: auditRepo}
	exportHandler := handler.ExportHandler{Inventory: inventoryRepo, AuditLogs: auditRepo, Staff: staffRepo, Branches: branchRepo, Audit: auditSvc}
	docsHandler := handler.DocsHandler{OpenAPIPath: cfg.OpenAPIPath}

	router := server.NewRouter(cfg, logger,
		healthHandler, authHandler, profileHandler, branchHandler, staffHandler,
		petHandler, appointmentHandler, recordHandler, inventoryHandler,
		requestHandler, invoiceHandler, notificationHandler, preferencesHandler,
		dashboardHandler, auditLogHandler, exportHandler, docsHandler)

	if err := server.Start(ctx, cfg, router, logger); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}

func firebaseOptions(cfg config.Config) []option.ClientOption {
	if cfg.FirebaseCredFile == "" {
		return nil
	}

	cred := cfg.FirebaseCredFile
	// Allow inline JSON or base64-encoded JSON in env to avoid writing a file.
	if strings.HasPrefix(strings.TrimSpace(cred), "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cred))}
	}
	if decoded, err := base64.StdEncoding.DecodeString(cred); err == nil && strings.HasPrefix(strings.TrimSpace(string(decoded)), "{") {
		return []option.ClientOption{option.WithCredentialsJSON(decoded)}
	}

	return []option.ClientOption{option.WithCredentialsFile(cred)}
}
