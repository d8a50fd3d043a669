package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/orgball2608/scrapbook-daily-bot/internal/auth"
	"github.com/orgball2608/scrapbook-daily-bot/internal/auth/authimpl"
	"github.com/orgball2608/scrapbook-daily-bot/internal/command"
	"github.com/orgball2608/scrapbook-daily-bot/internal/command/commandimpl"
	"github.com/orgball2608/scrapbook-daily-bot/internal/convert"
	"github.com/orgball2608/scrapbook-daily-bot/internal/convert/convertimpl"
	"github.com/orgball2608/scrapbook-daily-bot/internal/db"
	"github.com/orgball2608/scrapbook-daily-bot/internal/flow"
	"github.com/orgball2608/scrapbook-daily-bot/internal/flow/flowimpl"
	"github.com/orgball2608/scrapbook-daily-bot/internal/materializer"
	"github.com/orgball2608/scrapbook-daily-bot/internal/materializer/materializerimpl"
	"github.com/orgball2608/scrapbook-daily-bot/internal/pgx"
	"github.com/orgball2608/scrapbook-daily-bot/internal/picker"
	"github.com/orgball2608/scrapbook-daily-bot/internal/picker/pickerimpl"
	"github.com/orgball2608/scrapbook-daily-bot/internal/ratelimit"
	repositories "github.com/orgball2608/scrapbook-daily-bot/internal/repositories/fx"
	"github.com/orgball2608/scrapbook-daily-bot/internal/telegram"
	"github.com/orgball2608/scrapbook-daily-bot/internal/telegram/telegramimpl"
	"github.com/orgball2608/scrapbook-daily-bot/internal/vault"
	"github.com/orgball2608/scrapbook-daily-bot/internal/vault/vaultimpl"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/config"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/logger"
	"go.uber.org/fx"
)

var App = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		pgx.New,
	),
	fx.Provide(
		fx.Annotate(
			vaultimpl.New,
			fx.As(new(vault.Vault)),
		), fx.Annotate(
			materializerimpl.New,
			fx.As(new(materializer.Client)),
		), fx.Annotate(
			telegramimpl.New,
			fx.As(new(telegram.Client)),
		), fx.Annotate(
			authimpl.New,
			fx.As(new(auth.Manager)),
		), fx.Annotate(
			pickerimpl.New,
			fx.As(new(picker.Client)),
		), fx.Annotate(
			flowimpl.New,
			fx.As(new(flow.Client)),
		), fx.Annotate(
			convertimpl.New,
			fx.As(new(convert.Client)),
		),
		fx.Annotate(
			commandimpl.New,
			fx.As(new(command.Client)),
		),
		newCommandLimiter,
	),
	repositories.Module,
	fx.Invoke(migrate),
	fx.Invoke(run),
)

func newCommandLimiter() ratelimit.Limiter {
	return ratelimit.NewInMemoryLimiter(1, 2*time.Second, 5)
}

func migrate(cfg *config.Config, log logger.Logger) error {
	pg, err := db.NewConnect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect for migrations: %w", err)
	}
	defer pg.Close()

	if err := pg.MigrationInit(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("Database migrations applied")
	return nil
}

func run(lc fx.Lifecycle, log logger.Logger, cfg *config.Config, tgClient telegram.Client,
	flowClient flow.Client, cmdClient command.Client) {
	runCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go startHttpServer(log, cfg)

			go func() {
				if err := cmdClient.HandleCommand(runCtx); err != nil && runCtx.Err() == nil {
					log.Error("Command handler stopped", "error", err)
					tgClient.SendMessageToUser("Command handler stopped: " + err.Error())
				}
			}()

			if err := flowClient.ScheduleAutoCreate(runCtx); err != nil {
				log.Error("Auto-create scheduling error", "error", err)
				tgClient.SendMessageToUser("Auto-create scheduling error: " + err.Error())
			}

			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func startHttpServer(log logger.Logger, cfg *config.Config) {
	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		healthCheckHandler(w, r, log)
	})

	log.Info(fmt.Sprintf("Starting server on :%d", cfg.App.Port))

	if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.App.Port), nil); err != nil {
		log.Error("Server failed to start", "error", err)
	}
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request, logger logger.Logger) {
	logger.Info("Health check request received", "Method", r.Method, "URL", r.URL.String())
	w.Header().Set("Content-Type", "text/plain")
	if _, err := w.Write([]byte("ok")); err != nil {
		logger.Error("Failed to write response", "Error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
