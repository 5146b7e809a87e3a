package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jayan110105/neura/internal/agent"
	"github.com/jayan110105/neura/internal/app"
	"github.com/jayan110105/neura/internal/auth"
	"github.com/jayan110105/neura/internal/config"
	"github.com/jayan110105/neura/internal/logger"
	"github.com/jayan110105/neura/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	var (
		addrFlag string
		envFile  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(envFile); err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addrFlag != "" {
				cfg.Server.Addr = addrFlag
			}

			log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
			if err != nil {
				return err
			}
			defer log.Sync()

			if cfg.Auth.JWTSecret == "" {
				return errors.New("auth.jwt_secret not configured; set NEURA_JWT_SECRET or run 'neura secret set jwt_secret'")
			}
			sessions, err := auth.NewSessions(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL.Duration)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg, log)
			if err != nil {
				return fmt.Errorf("failed to start: %w", err)
			}
			defer func() {
				if err := a.Close(); err != nil {
					log.Error("failed to close", zap.Error(err))
				}
			}()
			if err := a.CheckModel(); err != nil {
				return err
			}

			var google server.LoginFlow
			if err := a.CheckGoogle(); err != nil {
				log.Warn("google sign-in disabled", zap.Error(err))
			} else {
				google = auth.NewGoogle(a.OAuth, a.Mail, a.Store, sessions)
			}

			srv := server.New(server.Deps{
				Agent:       a.Agent,
				Email:       a.Pipeline,
				Notes:       a.Notes,
				Transcripts: a.Store,
				Sessions:    sessions,
				Google:      google,
				SessionFor: func(userID string) agent.Session {
					return a.Session(userID, a.Store)
				},
				Logger:        log,
				SecureCookies: strings.HasPrefix(cfg.Server.BaseURL, "https://"),
			})
			return srv.Run(ctx, server.Config{
				Addr:         cfg.Server.Addr,
				ReadTimeout:  cfg.Server.ReadTimeout.Duration,
				WriteTimeout: cfg.Server.WriteTimeout.Duration,
			})
		},
	}

	cmd.Flags().StringVar(&addrFlag, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")
	return cmd
}
