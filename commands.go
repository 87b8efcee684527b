package main

import (
	"fmt"
	"net/http"
	"time"

	"overtime-tracker/config"
	"overtime-tracker/database"
	"overtime-tracker/logging"
	"overtime-tracker/server"
	"overtime-tracker/services"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func bootstrap() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	if err := logging.Init(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	}); err != nil {
		return nil, nil, err
	}

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return cfg, db, nil
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web application",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer database.Close(db)

	if cfg.UsesDefaultSecret() {
		logging.Logger.Warn("SECRET_KEY is the development default; set it in production")
	}

	router, err := server.NewRouter(cfg, db)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logging.Logger.WithField("port", cfg.ServerPort).Info("server starting")
	return srv.ListenAndServe()
}

func newUserAddCommand() *cobra.Command {
	var username, password, role string

	cmd := &cobra.Command{
		Use:   "useradd",
		Short: "Create a team, supervisor or manager account",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer database.Close(db)

			user, err := services.NewUserService(db).CreateUser(cmd.Context(), username, password, role)
			if err != nil {
				return err
			}

			logging.Logger.WithField("username", user.Username).WithField("role", user.Role).Info("user created")
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	cmd.Flags().StringVar(&role, "role", "team", "team, supervisor or manager")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
