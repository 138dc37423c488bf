// Command authflow drives the authentication pages from a terminal, either
// against an in-process service (local) or a running server (remote).
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"woodeoo-auth/internal/client"
	"woodeoo-auth/internal/data/repository/memory"
	"woodeoo-auth/internal/flow"
	"woodeoo-auth/internal/notify"
	"woodeoo-auth/internal/routes"
	"woodeoo-auth/internal/usecase"
	"woodeoo-auth/pkg/utils"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "authflow:", err)
		os.Exit(1)
	}
}

func run() error {
	fs := pflag.NewFlagSet("authflow", pflag.ContinueOnError)
	envFile := fs.String("env", ".env", "configuration file")
	fs.String("mode", "", "local or remote (default from FLOW_MODE)")
	fs.String("api", "", "API base URL in remote mode (default from FLOW_API_BASE_URL)")
	fs.String("start", "", "page to open first (default: the login page)")
	fs.Bool("debug", false, "verbose logging")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	config, err := utils.LoadConfigFrom(*envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	v := viper.New()
	v.SetDefault("mode", config.Flow.Mode)
	v.SetDefault("api", config.Flow.APIBaseURL)
	v.SetDefault("debug", config.App.Debug)
	if err := v.BindPFlags(fs); err != nil {
		return err
	}

	logger, err := utils.InitLogger(config.App.LogPath, v.GetBool("debug"))
	if err != nil {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	table, err := routes.New(config.Routes)
	if err != nil {
		return fmt.Errorf("route overrides: %w", err)
	}

	var gateway flow.Gateway
	switch mode := v.GetString("mode"); mode {
	case "local":
		service := usecase.NewService(memory.NewRepository(nil), config, notify.NewLogNotifier(logger), logger)
		gateway = client.NewLocalGateway(service.Auth, logger)
	case "remote":
		gateway = client.NewHTTPGateway(v.GetString("api"), logger)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}

	opts := flow.Options{
		Routes:           table,
		Logger:           logger,
		CooldownSeconds:  config.Flow.ResendCooldownSeconds,
		RedirectDelay:    time.Duration(config.Flow.RedirectDelayMillis) * time.Millisecond,
		RequireResetCode: config.Flow.RequireResetCode,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sh := newShell(os.Stdout, gateway, opts)
	start := v.GetString("start")
	if start == "" {
		start = table.Path(routes.Login)
	}
	if err := sh.open(start); err != nil {
		return err
	}
	fmt.Println(`type "help" for commands`)

	return sh.Run(ctx, os.Stdin)
}
