package main

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/Maxiflexy/MonieBank/internal/app"
	"github.com/Maxiflexy/MonieBank/internal/config"
	"github.com/Maxiflexy/MonieBank/internal/controllers"
	"github.com/Maxiflexy/MonieBank/internal/database"
	"github.com/Maxiflexy/MonieBank/internal/repositories"
	"github.com/Maxiflexy/MonieBank/internal/services"
	"github.com/Maxiflexy/MonieBank/internal/utils"
)

const appName = "auth-service"

func main() {
	utils.InitLogger(appName)
	cfg := config.LoadConfig(appName)

	if err := database.RunMigrations(cfg.DBUrl); err != nil {
		utils.Logger.Fatal("Failed to run database migrations:", err)
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize application:", err)
	}
	defer application.Close()

	//----------------------------------------------------------------------
	// Repositories
	//----------------------------------------------------------------------
	tokenRepo := repositories.NewTokenRepository(application.DB)
	userRepo := repositories.NewUserRepository(application.DB)

	//----------------------------------------------------------------------
	// Services
	//----------------------------------------------------------------------
	notificationSender := services.NewKafkaNotificationSender(cfg.KafkaBrokers)
	defer notificationSender.Close()

	tokenService := services.NewTokenService(cfg, tokenRepo)
	verificationService := services.NewEmailVerificationService(userRepo, notificationSender, cfg)
	identityVerifier := services.NewGoogleVerifier(services.GoogleVerifierConfig{
		ClientID: cfg.GoogleClientID,
	})
	authService := services.NewAuthService(userRepo, tokenService, verificationService, identityVerifier, cfg)
	tokenCleanupService := services.NewTokenCleanupService(tokenService)

	//----------------------------------------------------------------------
	// Controllers
	//----------------------------------------------------------------------
	authController := controllers.NewAuthController(authService, verificationService, cfg)
	userController := controllers.NewUserController(authService, cfg)
	healthController := controllers.NewHealthController(application)

	//----------------------------------------------------------------------
	// Router & Endpoints
	//----------------------------------------------------------------------
	router := mux.NewRouter()

	// Health
	router.HandleFunc("/health", healthController.HealthCheckHandler).Methods("GET")

	authRouter := router.PathPrefix("/api/auth").Subrouter()

	authRouter.HandleFunc("/signup", authController.Signup).Methods("POST")
	authRouter.HandleFunc("/verify-email", authController.VerifyEmail).Methods("GET")
	authRouter.HandleFunc("/resend-verification", authController.ResendVerification).Methods("POST")
	authRouter.HandleFunc("/login", authController.Login).Methods("POST")
	authRouter.HandleFunc("/oauth2/google", authController.GoogleLogin).Methods("POST")
	authRouter.HandleFunc("/refresh", authController.Refresh).Methods("POST")
	authRouter.HandleFunc("/logout", authController.Logout).Methods("POST")

	// Consumed by the api-gateway for blacklist checks.
	authRouter.HandleFunc("/validate-token", authController.ValidateToken).Methods("GET")

	authRouter.HandleFunc("/me", userController.Me).Methods("GET")
	authRouter.HandleFunc("/me", userController.UpdateProfile).Methods("PUT")
	authRouter.HandleFunc("/users/{userId}", userController.GetUserByID).Methods("GET")

	//----------------------------------------------------------------------
	// Expired-token cleanup via cron
	//----------------------------------------------------------------------
	c := cron.New()
	_, schErr := c.AddFunc("@every 1h", func() {
		if e := tokenCleanupService.CleanupExpired(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("Scheduled token cleanup failed")
		}
	})
	if schErr != nil {
		utils.Logger.WithError(schErr).Fatal("Failed to schedule token cleanup job")
	}
	c.Start()

	co := cors.New(cors.Options{
		AllowedOrigins: []string{cfg.AppURL},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Authorization", "Content-Type",
			utils.HeaderSupportsEncryption, utils.HeaderRequestEncrypted,
		},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("Failed to start server:", err)
	}
}
