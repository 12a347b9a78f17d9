package main

import (
	"context"
	"log"

	"hris-auth/cmd"
	"hris-auth/internal/data/repository"
	"hris-auth/internal/usecase"
	"hris-auth/internal/wire"
	"hris-auth/pkg/captcha"
	"hris-auth/pkg/database"
	"hris-auth/pkg/mailer"
	"hris-auth/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.InitLogger(config.App.Name, config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using stdout only.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	ctx := context.Background()

	db, err := database.InitDB(ctx, config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	if config.Database.Migrate {
		if err := database.RunMigrations(ctx, db); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		logger.Info("Migrations applied")
	}

	var loginCodes, recoveryCodes repository.CodeRegistry
	if config.Redis.Enabled {
		client, err := database.InitRedis(ctx, config.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer client.Close()

		loginCodes = repository.NewRedisCodeRegistry(client, repository.LoginCodePrefix, logger)
		recoveryCodes = repository.NewRedisCodeRegistry(client, repository.RecoveryCodePrefix, logger)
		logger.Info("Code registry backed by redis", zap.String("addr", config.Redis.Addr))
	} else {
		loginCodes = repository.NewMemoryCodeRegistry()
		recoveryCodes = repository.NewMemoryCodeRegistry()
		logger.Warn("Code registry kept in process memory; codes do not survive a restart")
	}

	repos := repository.NewRepository(db, loginCodes, recoveryCodes, logger)

	deps := usecase.Dependencies{
		Notifier: notifier(config, logger),
		Captcha:  captchaVerifier(config, logger),
	}

	app := wire.Wiring(repos, config, deps, logger)

	if err := cmd.APIServer(app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server exited", zap.Error(err))
	}
}

func notifier(config *utils.Config, logger *zap.Logger) usecase.Notifier {
	if config.Email.Host == "" {
		logger.Warn("SMTP_HOST not set, codes are written to the log instead of mailed")
		return mailer.NewLogMailer(logger)
	}
	return mailer.NewSMTPMailer(config.Email, config.OTP.Expiry(), logger)
}

func captchaVerifier(config *utils.Config, logger *zap.Logger) usecase.CaptchaVerifier {
	if !config.Captcha.Enabled {
		logger.Warn("reCAPTCHA verification disabled")
		return captcha.NewDisabledVerifier(logger)
	}
	return captcha.NewRecaptchaVerifier(config.Captcha, logger)
}
