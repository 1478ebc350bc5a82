package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/DRSN-tech/cashier-backend/internal/app"
	config "github.com/DRSN-tech/cashier-backend/internal/cfg"
	"github.com/DRSN-tech/cashier-backend/pkg/logger"
	"github.com/joho/godotenv"
)

//	@title						Cashier Backend API
//	@version					1.0
//	@description				Касса: каталог, транзакции со списанием остатков, вход кассиров.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer <token>
func main() {
	// .env необязателен: в контейнере переменные приходят из окружения
	envErr := godotenv.Load()

	log := logger.NewSlogLogger()
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		log.Warnf("failed to read .env: %v", envErr)
	}

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		os.Exit(1)
	}
}
