package fx

import (
	"github.com/orgball2608/scrapbook-daily-bot/internal/repositories/scrapday"
	"github.com/orgball2608/scrapbook-daily-bot/internal/repositories/token"
	"go.uber.org/fx"
)

var Module = fx.Options(
	token.Module,
	scrapday.Module,
)
