package core

import "net/mail"

type (
	// EmailMessage is a plain-text notification. The console only sends
	// short workflow updates; no attachments or HTML templating needed.
	EmailMessage struct {
		To          []mail.Address
		Cc          []mail.Address
		Subject     string
		TextContent string
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

func (msg EmailMessage) HasRecipients() bool {
	return len(msg.To) > 0 || len(msg.Cc) > 0
}

func (msg EmailMessage) HasContent() bool {
	return msg.TextContent != ""
}
