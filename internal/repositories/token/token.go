package token

import (
	"context"
	"errors"

	"github.com/orgball2608/scrapbook-daily-bot/internal/domain"
)

var ErrNotFound = errors.New("token not found")

//go:generate go run go.uber.org/mock/mockgen -source=token.go -destination=mocks/mock.go

// Repository persists the single OAuth token triple. This is the external
// "config collaborator" the authorization manager stores tokens through.
type Repository interface {
	Get(ctx context.Context) (*domain.AuthToken, error)
	Save(ctx context.Context, token domain.AuthToken) error
	Clear(ctx context.Context) error
}
