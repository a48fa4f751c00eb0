package flow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/RomaniumSSS/My-first-project/internal/genai"
	"github.com/RomaniumSSS/My-first-project/internal/models"
	"github.com/RomaniumSSS/My-first-project/internal/store"
)

// sentMessage records one outbound message for assertions.
type sentMessage struct {
	To      string
	Text    string
	Buttons []models.Button
}

// fakeMessenger records everything the engine sends.
type fakeMessenger struct {
	mu         sync.Mutex
	messages   []sentMessage
	animations []string
	edits      []string
	mediaByRef map[string]string
	mediaErr   error
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{mediaByRef: make(map[string]string)}
}

func (m *fakeMessenger) SendText(ctx context.Context, to, text string, buttons ...models.Button) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, sentMessage{To: to, Text: text, Buttons: buttons})
	return nil
}

func (m *fakeMessenger) SendAnimation(ctx context.Context, to, ref, caption string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.animations = append(m.animations, ref)
	return nil
}

func (m *fakeMessenger) EditLast(ctx context.Context, to, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edits = append(m.edits, text)
	return nil
}

func (m *fakeMessenger) FetchImageBase64(ctx context.Context, ref string) (string, error) {
	if m.mediaErr != nil {
		return "", m.mediaErr
	}
	data, ok := m.mediaByRef[ref]
	if !ok {
		return "", errors.New("media not found")
	}
	return data, nil
}

func (m *fakeMessenger) lastMessage(t *testing.T) sentMessage {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) == 0 {
		t.Fatal("no messages sent")
	}
	return m.messages[len(m.messages)-1]
}

func (m *fakeMessenger) containsText(substr string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.messages {
		if strings.Contains(msg.Text, substr) {
			return true
		}
	}
	return false
}

func (m *fakeMessenger) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
	m.animations = nil
	m.edits = nil
}

// fakeAI returns a scripted response or error for every completion.
type fakeAI struct {
	response     string
	err          error
	calls        int
	lastOpts     genai.Options
	lastMessages []genai.Message
}

func (f *fakeAI) Complete(ctx context.Context, messages []genai.Message, opts genai.Options) (string, error) {
	f.calls++
	f.lastOpts = opts
	f.lastMessages = messages
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeAI) CompleteOrFallback(ctx context.Context, messages []genai.Message, opts genai.Options) string {
	text, err := f.Complete(ctx, messages, opts)
	if err != nil {
		return genai.FallbackText
	}
	return text
}

// testEnv bundles a fully wired engine with instant sleeps.
type testEnv struct {
	engine *Engine
	store  *store.InMemoryStore
	msg    *fakeMessenger
	ai     *fakeAI
	sleeps []time.Duration
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		store: store.NewInMemoryStore(),
		msg:   newFakeMessenger(),
		ai:    &fakeAI{response: "ответ коуча"},
	}
	env.engine = NewEngine(Config{
		Store:     env.store,
		AI:        env.ai,
		Messenger: env.msg,
		Sleep: func(ctx context.Context, d time.Duration) error {
			env.sleeps = append(env.sleeps, d)
			return nil
		},
	})
	return env
}

func (env *testEnv) handle(t *testing.T, ev models.Event) {
	t.Helper()
	if err := env.engine.HandleEvent(context.Background(), ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func (env *testEnv) command(t *testing.T, from, cmd string) {
	env.handle(t, models.Event{From: from, Kind: models.EventCommand, Command: cmd})
}

func (env *testEnv) text(t *testing.T, from, text string) {
	env.handle(t, models.Event{From: from, Kind: models.EventText, Text: text})
}

func (env *testEnv) button(t *testing.T, from, tag string) {
	env.handle(t, models.Event{From: from, Kind: models.EventButton, Button: tag})
}

func (env *testEnv) buttonPayload(t *testing.T, from, tag, payload string) {
	env.handle(t, models.Event{From: from, Kind: models.EventButton, Button: tag, Payload: payload})
}

func (env *testEnv) photo(t *testing.T, from, ref, caption string) {
	env.handle(t, models.Event{From: from, Kind: models.EventPhoto, PhotoRef: ref, Caption: caption})
}

// onboard registers a user named name and creates their first goal.
func (env *testEnv) onboard(t *testing.T, chatID, name, goalTitle string) *models.User {
	t.Helper()
	env.command(t, chatID, "start")
	env.text(t, chatID, name)
	env.text(t, chatID, goalTitle)

	user, err := env.store.GetUserByChatID(chatID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user == nil {
		t.Fatal("expected user to exist after onboarding")
	}
	return user
}

func (env *testEnv) stage(chatID string) models.Stage {
	return env.engine.Sessions().Get(chatID).Stage
}
