package commandimpl

import (
	"github.com/orgball2608/scrapbook-daily-bot/internal/auth"
	"github.com/orgball2608/scrapbook-daily-bot/internal/command"
	"github.com/orgball2608/scrapbook-daily-bot/internal/convert"
	"github.com/orgball2608/scrapbook-daily-bot/internal/flow"
	"github.com/orgball2608/scrapbook-daily-bot/internal/ratelimit"
	"github.com/orgball2608/scrapbook-daily-bot/internal/repositories/scrapday"
	"github.com/orgball2608/scrapbook-daily-bot/internal/telegram"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/config"
	"github.com/orgball2608/scrapbook-daily-bot/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Flow         flow.Client
	Auth         auth.Manager
	Convert      convert.Client
	Telegram     telegram.Client
	ScrapDayRepo scrapday.Repository
	Limiter      ratelimit.Limiter
	Logger       logger.Logger
	Config       *config.Config
}

type CommandImpl struct {
	Flow         flow.Client
	Auth         auth.Manager
	Convert      convert.Client
	Telegram     telegram.Client
	ScrapDayRepo scrapday.Repository
	Limiter      ratelimit.Limiter
	Logger       logger.Logger
	Config       *config.Config
}

func New(opts Opts) *CommandImpl {
	return &CommandImpl{
		Flow:         opts.Flow,
		Auth:         opts.Auth,
		Convert:      opts.Convert,
		Telegram:     opts.Telegram,
		ScrapDayRepo: opts.ScrapDayRepo,
		Limiter:      opts.Limiter,
		Logger:       opts.Logger.WithComponent("command"),
		Config:       opts.Config,
	}
}

var _ command.Client = (*CommandImpl)(nil)
