package messaging

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/RomaniumSSS/My-first-project/internal/models"
	"github.com/RomaniumSSS/My-first-project/internal/util"
	"github.com/RomaniumSSS/My-first-project/internal/whatsapp"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types/events"
)

// WhatsAppService implements Service using the whatsmeow-based client.
//
// WhatsApp has no inline keyboards, so buttons are rendered as numbered
// options and numeric replies are mapped back to button events using the
// last option set shown to each sender.
type WhatsAppService struct {
	client   whatsapp.Sender
	waClient *whatsapp.Client // full client for event handling, nil under test

	mediaDir string // directory of animation files, <ref>.mp4

	mu          sync.Mutex
	lastButtons map[string][]models.Button
	lastMsgID   map[string]string
	photoCache  map[string]*waE2E.ImageMessage

	events  chan models.Event
	done    chan struct{}
	stopped bool
}

// NewWhatsAppService creates a WhatsAppService wrapping the given sender.
// mediaDir holds the animation catalogue files; empty disables animations.
func NewWhatsAppService(client whatsapp.Sender, mediaDir string) *WhatsAppService {
	service := &WhatsAppService{
		client:      client,
		mediaDir:    mediaDir,
		lastButtons: make(map[string][]models.Button),
		lastMsgID:   make(map[string]string),
		photoCache:  make(map[string]*waE2E.ImageMessage),
		events:      make(chan models.Event, DefaultChannelBufferSize),
		done:        make(chan struct{}),
	}

	if waClient, ok := client.(*whatsapp.Client); ok {
		service.waClient = waClient
		slog.Debug("WhatsAppService created with full client for event handling")
	} else {
		slog.Debug("WhatsAppService created with interface client (likely mock)")
	}

	return service
}

// ValidateAndCanonicalizeRecipient validates a WhatsApp phone number.
func (s *WhatsAppService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	return canonicalizePhone(recipient)
}

// Start begins processing inbound WhatsApp events.
func (s *WhatsAppService) Start(ctx context.Context) error {
	slog.Debug("WhatsAppService Start invoked")

	if s.waClient == nil || s.waClient.GetClient() == nil {
		slog.Debug("WhatsAppService no full client available, skipping event handling")
		return nil
	}

	s.waClient.GetClient().AddEventHandler(func(evt interface{}) {
		if msg, ok := evt.(*events.Message); ok {
			s.handleIncomingMessage(msg)
		}
	})
	slog.Debug("WhatsAppService event handler registered")
	return nil
}

// Stop stops background processing.
func (s *WhatsAppService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil
	}
	s.stopped = true
	close(s.done)
	close(s.events)
	slog.Info("WhatsAppService stopped")
	return nil
}

// SendText sends a text message, rendering buttons as numbered options and
// remembering them for reply mapping.
func (s *WhatsAppService) SendText(ctx context.Context, to, text string, buttons ...models.Button) error {
	canonical, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		return err
	}

	id, err := s.client.SendMessage(ctx, canonical, renderButtons(text, buttons))
	if err != nil {
		slog.Error("WhatsAppService SendText error", "error", err, "to", canonical)
		return err
	}

	s.mu.Lock()
	s.lastMsgID[canonical] = id
	if len(buttons) > 0 {
		s.lastButtons[canonical] = buttons
	} else {
		delete(s.lastButtons, canonical)
	}
	s.mu.Unlock()

	slog.Debug("WhatsAppService message sent", "to", canonical, "buttons", len(buttons))
	return nil
}

// SendAnimation sends the animation file behind a catalogue reference as a
// looping GIF. A missing file degrades to the caption text.
func (s *WhatsAppService) SendAnimation(ctx context.Context, to, ref, caption string) error {
	canonical, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		return err
	}

	if s.mediaDir != "" {
		data, readErr := os.ReadFile(filepath.Join(s.mediaDir, ref+".mp4"))
		if readErr == nil {
			return s.client.SendVideoGif(ctx, canonical, data, caption)
		}
		slog.Warn("WhatsAppService animation file missing", "ref", ref, "error", readErr)
	}

	if caption == "" {
		return nil
	}
	return s.SendText(ctx, canonical, caption)
}

// EditLast edits the most recent message to the recipient. Without a known
// message id the text is sent as a new message.
func (s *WhatsAppService) EditLast(ctx context.Context, to, text string) error {
	canonical, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		return err
	}

	s.mu.Lock()
	id := s.lastMsgID[canonical]
	s.mu.Unlock()

	if id == "" {
		return s.SendText(ctx, canonical, text)
	}
	if err := s.client.EditMessage(ctx, canonical, id, text); err != nil {
		slog.Debug("WhatsAppService edit failed, sending new message", "to", canonical, "error", err)
		return s.SendText(ctx, canonical, text)
	}
	return nil
}

// FetchImageBase64 downloads a previously received photo by its reference.
func (s *WhatsAppService) FetchImageBase64(ctx context.Context, ref string) (string, error) {
	s.mu.Lock()
	img, ok := s.photoCache[ref]
	s.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("unknown photo reference %q", ref)
	}

	data, err := s.client.DownloadImage(ctx, img)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// SetCommands logs the command catalogue. WhatsApp has no server-side
// command registry; commands are still parsed from message text.
func (s *WhatsAppService) SetCommands(ctx context.Context, commands []models.BotCommand) error {
	names := make([]string, 0, len(commands))
	for _, cmd := range commands {
		names = append(names, "/"+cmd.Name)
	}
	slog.Info("WhatsAppService commands available", "commands", strings.Join(names, " "))
	return nil
}

// Events returns the channel of normalized inbound events.
func (s *WhatsAppService) Events() <-chan models.Event {
	return s.events
}

// handleIncomingMessage normalizes one inbound WhatsApp message.
func (s *WhatsAppService) handleIncomingMessage(evt *events.Message) {
	if evt.Message == nil || evt.Info.IsFromMe {
		return
	}

	from := evt.Info.Sender.User
	ts := evt.Info.Timestamp.Unix()

	if img := evt.Message.GetImageMessage(); img != nil {
		ref := util.GenerateRandomID("wa_", 32)
		s.mu.Lock()
		s.photoCache[ref] = img
		s.mu.Unlock()

		s.emit(models.Event{
			From:     from,
			Kind:     models.EventPhoto,
			PhotoRef: ref,
			Caption:  img.GetCaption(),
			Time:     ts,
		})
		return
	}

	var body string
	switch {
	case evt.Message.Conversation != nil:
		body = *evt.Message.Conversation
	case evt.Message.ExtendedTextMessage != nil && evt.Message.ExtendedTextMessage.Text != nil:
		body = *evt.Message.ExtendedTextMessage.Text
	default:
		slog.Debug("WhatsAppService ignoring unsupported message type", "from", from)
		return
	}

	s.mu.Lock()
	lastButtons := s.lastButtons[from]
	s.mu.Unlock()

	s.emit(parseInbound(from, body, lastButtons, ts))
}

// emit forwards an event without blocking the whatsmeow callback. The mutex
// is held across the send so Stop cannot close the channel mid-emit.
func (s *WhatsAppService) emit(ev models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		slog.Warn("WhatsAppService dropping event (service stopped)", "from", ev.From)
		return
	}

	select {
	case s.events <- ev:
		slog.Debug("WhatsAppService event forwarded", "from", ev.From, "kind", ev.Kind)
	case <-time.After(DefaultChannelTimeout):
		slog.Warn("WhatsAppService event channel blocked, dropping event", "from", ev.From)
	}
}
