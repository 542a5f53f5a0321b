package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bricks-cloud/geminiproxy/internal/auth"
	"github.com/bricks-cloud/geminiproxy/internal/config"
	logger "github.com/bricks-cloud/geminiproxy/internal/logger/zap"
	"github.com/bricks-cloud/geminiproxy/internal/provider/google"
	"github.com/bricks-cloud/geminiproxy/internal/sanitize"
	"github.com/bricks-cloud/geminiproxy/internal/server/web/proxy"
	"github.com/bricks-cloud/geminiproxy/internal/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	mode    string
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "geminiproxy",
	Short: "Forwarding proxy for the Gemini API",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the proxy server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&mode, "mode", "m", "dev", "select the mode that geminiproxy runs in")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve() error {
	lg := logger.NewLogger(mode)
	defer lg.Sync()

	gin.SetMode(gin.ReleaseMode)

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		lg.Sugar().Fatalf("cannot load env file %s: %v", envFile, err)
	}

	cfg, err := config.ParseEnvVariables()
	if err != nil {
		lg.Sugar().Fatalf("cannot parse environment variables: %v", err)
	}

	if len(cfg.SettingsFile) != 0 {
		s, err := config.LoadSettings(cfg.SettingsFile)
		if err != nil {
			lg.Sugar().Fatalf("cannot load settings file %s: %v", cfg.SettingsFile, err)
		}

		cfg.ApplySettings(s)
	}

	if cfg.TelemetryEnabled() {
		if err := telemetry.Init(cfg, lg); err != nil {
			lg.Sugar().Fatalf("cannot initialize telemetry: %v", err)
		}
	}

	otelShutdown, err := telemetry.SetupOTelSDK(context.Background(), cfg)
	if err != nil {
		lg.Sugar().Fatalf("cannot set up open telemetry: %v", err)
	}

	a := auth.NewAuthenticator(cfg.Codes, cfg.HideUserApiKey, []string{google.ApiKeyHeader}, lg)
	if !a.NeedCode() {
		lg.Sugar().Infof("no access code configured, every caller may use the server google config")
	}

	deny := sanitize.NewDenylist(cfg.StrippedBodyFields...)
	lg.Sugar().Infof("stripping body fields %v before forwarding", deny.Keys())

	ps, err := proxy.NewProxyServer(lg, mode, cfg.ProxyPort, a, config.NewEnvProvider(), deny, cfg.ProxyTimeout, cfg.MaxBodyBytes)
	if err != nil {
		lg.Sugar().Fatalf("error creating proxy http server: %v", err)
	}

	ps.Run()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	lg.Sugar().Infof("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := ps.Shutdown(ctx); err != nil {
		lg.Sugar().Debugf("proxy server shutdown: %v", err)
	}

	if err := telemetry.Shutdown(ctx); err != nil {
		lg.Sugar().Debugf("telemetry shutdown: %v", err)
	}

	if err := otelShutdown(ctx); err != nil {
		lg.Sugar().Debugf("open telemetry shutdown: %v", err)
	}

	lg.Sugar().Infof("server exited")

	return nil
}
