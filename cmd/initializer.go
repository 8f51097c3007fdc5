package main

import (
	"log"
	"log/slog"
	"os"

	"cloud.google.com/go/firestore"
	"firebase.google.com/go/messaging"

	"entitleBack/internal/config"
	"entitleBack/internal/handlers"
	"entitleBack/internal/repositories"
	"entitleBack/internal/services"
	"entitleBack/utils"
)

type application struct {
	errorLog *log.Logger
	infoLog  *log.Logger

	tokenManager *utils.Manager

	entitlementRepo     *repositories.EntitlementRepository
	verificationHandler *handlers.VerificationHandler
	pushHandler         *handlers.PushHandler
}

func initializeApp(cfg config.Config, fsClient *firestore.Client, msgClient *messaging.Client, errorLog, infoLog *log.Logger) *application {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Repositories
	entitlementRepo := &repositories.EntitlementRepository{Client: fsClient}

	// Services
	playService, err := services.NewGooglePlayService(services.GooglePlayConfig{
		PackageName:        cfg.GooglePlay.PackageName,
		ServiceAccountJSON: cfg.GooglePlay.ServiceAccountJSON,
		Logger:             logger,
	})
	if err != nil {
		errorLog.Fatal(err)
	}
	appStoreService, err := services.NewAppStoreService(services.AppStoreConfig{
		SharedSecret:  cfg.AppStore.SharedSecret,
		ProductionURL: cfg.AppStore.ProductionURL,
		SandboxURL:    cfg.AppStore.SandboxURL,
		Logger:        logger,
	})
	if err != nil {
		errorLog.Fatal(err)
	}
	pushService := services.NewPushService(msgClient, logger)
	verificationService := &services.VerificationService{
		Play:     playService,
		AppStore: appStoreService,
		Store:    entitlementRepo,
		Push:     pushService,
		Logger:   logger,
	}

	// Handlers
	verificationHandler := &handlers.VerificationHandler{Service: verificationService, Store: entitlementRepo}
	pushHandler := &handlers.PushHandler{Sender: pushService, Store: entitlementRepo}

	tokenManager, err := utils.NewManager(cfg.Auth.SigningKey)
	if err != nil {
		errorLog.Fatal(err)
	}

	return &application{
		errorLog:            errorLog,
		infoLog:             infoLog,
		tokenManager:        tokenManager,
		entitlementRepo:     entitlementRepo,
		verificationHandler: verificationHandler,
		pushHandler:         pushHandler,
	}
}
