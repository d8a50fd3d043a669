package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

//go:generate go run go.uber.org/mock/mockgen -source=telegram.go -destination=mocks/mock.go

// Client is the outbound side of the user conversation: notices, picker
// links and the inbound update stream.
type Client interface {
	// SendMessage sends a plain notice to a chat.
	SendMessage(chatID int64, text string)

	// SendMessageToUser sends a notice to the configured primary user.
	SendMessageToUser(text string)

	// SendPickerLink sends the remote picker URI with the Done/Cancel
	// inline buttons that drive the picking step.
	SendPickerLink(chatID int64, pickerURI string)

	// UpdatesChannel returns the long-poll update stream.
	UpdatesChannel() tgbotapi.UpdatesChannel

	// AnswerCallback acknowledges an inline button press.
	AnswerCallback(callbackID string)
}
