// Package messaging provides the transport abstraction and the event
// dispatcher of the coach bot.
//
// A Service adapts one chat transport (WhatsApp via whatsmeow, or Twilio's
// WhatsApp API) to normalized events and outbound operations. The Dispatcher
// sits between a Service and the flow engine, enforcing the access allowlist
// and serializing events per user.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/RomaniumSSS/My-first-project/internal/models"
)

// Constants for service configuration.
const (
	// DefaultChannelBufferSize defines the buffer size for event channels.
	DefaultChannelBufferSize = 100
	// DefaultChannelTimeout bounds non-blocking channel operations.
	DefaultChannelTimeout = 1 * time.Second
)

// ErrServiceStopped is returned by operations on a stopped service.
var ErrServiceStopped = errors.New("messaging service stopped")

// phoneNumberRegex matches everything that is not a digit.
var phoneNumberRegex = regexp.MustCompile(`[^0-9]`)

// Service defines a pluggable chat transport.
type Service interface {
	// ValidateAndCanonicalizeRecipient validates and canonicalizes a
	// recipient identifier.
	ValidateAndCanonicalizeRecipient(recipient string) (string, error)

	// SendText sends a text message; buttons are rendered as numbered
	// options on transports without native keyboards.
	SendText(ctx context.Context, to, text string, buttons ...models.Button) error

	// SendAnimation sends an animation by catalogue reference. Transports
	// without media support degrade to the caption text.
	SendAnimation(ctx context.Context, to, ref, caption string) error

	// EditLast replaces the most recent bot message to the recipient, best
	// effort.
	EditLast(ctx context.Context, to, text string) error

	// FetchImageBase64 downloads the media behind an opaque photo reference.
	FetchImageBase64(ctx context.Context, ref string) (string, error)

	// SetCommands registers the bot command catalogue where the transport
	// supports it.
	SetCommands(ctx context.Context, commands []models.BotCommand) error

	// Start begins background processing (event polling).
	Start(ctx context.Context) error

	// Stop stops background processing and cleans up resources.
	Stop() error

	// Events returns the channel of normalized inbound events.
	Events() <-chan models.Event
}

// canonicalizePhone strips non-digits and validates minimum length. Both
// transports share WhatsApp phone addressing.
func canonicalizePhone(recipient string) (string, error) {
	if recipient == "" {
		return "", fmt.Errorf("recipient cannot be empty")
	}

	canonical := phoneNumberRegex.ReplaceAllString(recipient, "")
	if canonical == "" {
		return "", fmt.Errorf("invalid phone number: no digits found in recipient %q", recipient)
	}
	if len(canonical) < 6 {
		return "", fmt.Errorf("invalid phone number: %q is too short (minimum 6 digits required)", canonical)
	}

	if canonical != recipient {
		slog.Debug("Messaging canonicalized recipient", "original", recipient, "canonical", canonical)
	}
	return canonical, nil
}

// renderButtons appends inline buttons as a numbered option list. Users
// reply with the option number.
func renderButtons(text string, buttons []models.Button) string {
	if len(buttons) == 0 {
		return text
	}
	var b strings.Builder
	b.WriteString(text)
	b.WriteString("\n")
	for i, btn := range buttons {
		fmt.Fprintf(&b, "\n%d. %s", i+1, btn.Label)
	}
	return b.String()
}

// parseInbound converts a raw inbound text into a normalized event.
// Numbered replies and exact label matches resolve against the last button
// set shown to the sender.
func parseInbound(from, body string, lastButtons []models.Button, ts int64) models.Event {
	trimmed := strings.TrimSpace(body)

	if strings.HasPrefix(trimmed, "/") {
		command := strings.TrimPrefix(trimmed, "/")
		if idx := strings.IndexAny(command, " \t\n"); idx >= 0 {
			command = command[:idx]
		}
		return models.Event{From: from, Kind: models.EventCommand, Command: strings.ToLower(command), Time: ts}
	}

	if len(lastButtons) > 0 {
		if n, err := strconv.Atoi(trimmed); err == nil && n >= 1 && n <= len(lastButtons) {
			btn := lastButtons[n-1]
			return models.Event{From: from, Kind: models.EventButton, Button: btn.Tag, Payload: btn.Payload, Time: ts}
		}
		for _, btn := range lastButtons {
			if strings.EqualFold(trimmed, btn.Label) {
				return models.Event{From: from, Kind: models.EventButton, Button: btn.Tag, Payload: btn.Payload, Time: ts}
			}
		}
	}

	return models.Event{From: from, Kind: models.EventText, Text: trimmed, Time: ts}
}
