package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/RomaniumSSS/My-first-project/internal/models"
	"github.com/RomaniumSSS/My-first-project/internal/twiliowhatsapp"
)

// TwilioService implements Service over the Twilio WhatsApp API. It is the
// degraded transport: text only, so animations fall back to captions, edits
// send new messages and photos never arrive (Twilio inbound media is not
// wired here).
type TwilioService struct {
	client twiliowhatsapp.Sender

	mu          sync.Mutex
	lastButtons map[string][]models.Button
	events      chan models.Event
	done        chan struct{}
	stopped     bool
}

// NewTwilioService creates a TwilioService wrapping the given sender.
func NewTwilioService(client twiliowhatsapp.Sender) *TwilioService {
	return &TwilioService{
		client:      client,
		lastButtons: make(map[string][]models.Button),
		events:      make(chan models.Event, DefaultChannelBufferSize),
		done:        make(chan struct{}),
	}
}

// ValidateAndCanonicalizeRecipient validates a WhatsApp phone number.
func (s *TwilioService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	return canonicalizePhone(recipient)
}

// Start is a no-op; inbound messages arrive through the webhook handler.
func (s *TwilioService) Start(ctx context.Context) error {
	return nil
}

// Stop closes channels and stops the service.
func (s *TwilioService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil
	}
	s.stopped = true
	close(s.done)
	close(s.events)
	slog.Info("TwilioService stopped")
	return nil
}

// SendText sends a text message with buttons rendered as numbered options.
func (s *TwilioService) SendText(ctx context.Context, to, text string, buttons ...models.Button) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrServiceStopped
	}
	s.mu.Unlock()

	canonical, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		return err
	}

	if err := s.client.SendMessage(ctx, canonical, renderButtons(text, buttons)); err != nil {
		slog.Error("TwilioService SendText error", "error", err, "to", canonical)
		return err
	}

	s.mu.Lock()
	if len(buttons) > 0 {
		s.lastButtons[canonical] = buttons
	} else {
		delete(s.lastButtons, canonical)
	}
	s.mu.Unlock()
	return nil
}

// SendAnimation degrades to the caption text; Twilio media upload is out of
// scope for this transport.
func (s *TwilioService) SendAnimation(ctx context.Context, to, ref, caption string) error {
	if caption == "" {
		slog.Debug("TwilioService skipping animation without caption", "ref", ref)
		return nil
	}
	return s.SendText(ctx, to, caption)
}

// EditLast sends a new message; the Twilio API cannot edit.
func (s *TwilioService) EditLast(ctx context.Context, to, text string) error {
	return s.SendText(ctx, to, text)
}

// FetchImageBase64 always fails: this transport produces no photo events.
func (s *TwilioService) FetchImageBase64(ctx context.Context, ref string) (string, error) {
	return "", fmt.Errorf("photo download not supported by this transport")
}

// SetCommands is a no-op; Twilio has no command registry.
func (s *TwilioService) SetCommands(ctx context.Context, commands []models.BotCommand) error {
	return nil
}

// Events returns the channel of normalized inbound events.
func (s *TwilioService) Events() <-chan models.Event {
	return s.events
}

// WebhookHandler handles inbound Twilio webhook requests, normalizing each
// message into an event.
func (s *TwilioService) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		slog.Error("TwilioService failed to parse webhook form", "error", err)
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	from := r.FormValue("From")
	body := r.FormValue("Body")
	if from == "" || body == "" {
		slog.Warn("TwilioService webhook missing fields", "from_set", from != "")
		http.Error(w, "Missing required fields", http.StatusBadRequest)
		return
	}

	canonical, err := s.ValidateAndCanonicalizeRecipient(from)
	if err != nil {
		slog.Warn("TwilioService webhook invalid sender", "error", err)
		http.Error(w, "Invalid sender", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	lastButtons := s.lastButtons[canonical]
	s.mu.Unlock()

	s.emit(parseInbound(canonical, body, lastButtons, time.Now().Unix()))
	w.WriteHeader(http.StatusOK)
}

// emit forwards an event without blocking the webhook handler. The mutex is
// held across the send so Stop cannot close the channel mid-emit.
func (s *TwilioService) emit(ev models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		slog.Warn("TwilioService dropping event (service stopped)", "from", ev.From)
		return
	}

	select {
	case s.events <- ev:
	case <-time.After(DefaultChannelTimeout):
		slog.Warn("TwilioService event channel blocked, dropping event", "from", ev.From)
	}
}
