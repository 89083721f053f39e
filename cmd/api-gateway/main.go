package main

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/Maxiflexy/MonieBank/internal/config"
	"github.com/Maxiflexy/MonieBank/internal/gateway"
	"github.com/Maxiflexy/MonieBank/internal/utils"
)

const appName = "api-gateway"

func main() {
	utils.InitLogger(appName)
	cfg := config.LoadGatewayConfig(appName)

	router := gateway.NewRouter(cfg)

	co := cors.New(cors.Options{
		AllowedOrigins: []string{cfg.AllowedOrigin},
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
