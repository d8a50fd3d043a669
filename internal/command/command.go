package command

import "context"

//go:generate go run go.uber.org/mock/mockgen -source=command.go -destination=mocks/mock.go

type Client interface {
	// HandleCommand runs the update loop until the context is cancelled,
	// translating chat commands and button presses into flow triggers.
	HandleCommand(ctx context.Context) error
}
