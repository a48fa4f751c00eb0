package messaging

import (
	"context"
	"log/slog"
	"sync"

	"github.com/RomaniumSSS/My-first-project/internal/models"
)

// textAccessDenied is the fixed reply for senders outside the allowlist.
const textAccessDenied = "Извини, этот бот доступен только по приглашению."

// defaultWorkerBufferSize bounds each per-user event queue.
const defaultWorkerBufferSize = 16

// Handler processes one inbound event to completion. Implemented by the
// flow engine.
type Handler interface {
	HandleEvent(ctx context.Context, ev models.Event) error
}

// Dispatcher routes inbound transport events to the handler. Events from the
// same user run strictly in order on a dedicated worker; events from
// different users run concurrently, so one user's slow interaction (a timed
// breathing cycle) never delays anyone else.
type Dispatcher struct {
	svc       Service
	handler   Handler
	allowlist map[string]bool

	mu      sync.Mutex
	workers map[string]chan models.Event
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher. An empty allowlist admits everyone;
// entries are canonicalized through the service so formatting differences
// do not lock users out.
func NewDispatcher(svc Service, handler Handler, allowlist []string) *Dispatcher {
	allowed := make(map[string]bool, len(allowlist))
	for _, entry := range allowlist {
		canonical, err := svc.ValidateAndCanonicalizeRecipient(entry)
		if err != nil {
			slog.Warn("Dispatcher skipping invalid allowlist entry", "entry", entry, "error", err)
			continue
		}
		allowed[canonical] = true
	}
	return &Dispatcher{
		svc:       svc,
		handler:   handler,
		allowlist: allowed,
		workers:   make(map[string]chan models.Event),
	}
}

// Run consumes transport events until the context is cancelled or the event
// channel closes, then drains in-flight work before returning.
func (d *Dispatcher) Run(ctx context.Context) error {
	slog.Info("Dispatcher started", "allowlist_size", len(d.allowlist))

	events := d.svc.Events()
loop:
	for {
		select {
		case <-ctx.Done():
			slog.Info("Dispatcher stopping due to context cancellation")
			break loop
		case ev, ok := <-events:
			if !ok {
				slog.Info("Dispatcher stopping: event channel closed")
				break loop
			}
			d.dispatch(ctx, ev)
		}
	}

	d.shutdown()
	return nil
}

// dispatch gates the sender and hands the event to its worker.
func (d *Dispatcher) dispatch(ctx context.Context, ev models.Event) {
	if !d.allowed(ev.From) {
		slog.Warn("Dispatcher rejecting sender outside allowlist", "from", ev.From)
		if err := d.svc.SendText(ctx, ev.From, textAccessDenied); err != nil {
			slog.Error("Dispatcher failed to send denial message", "to", ev.From, "error", err)
		}
		return
	}

	d.mu.Lock()
	ch, ok := d.workers[ev.From]
	if !ok {
		ch = make(chan models.Event, defaultWorkerBufferSize)
		d.workers[ev.From] = ch
		d.wg.Add(1)
		go d.worker(ctx, ev.From, ch)
	}
	d.mu.Unlock()

	select {
	case ch <- ev:
	default:
		// A full queue means the user is flooding faster than their worker
		// drains; dropping is safer than blocking every other user.
		slog.Warn("Dispatcher dropping event: worker queue full", "from", ev.From, "kind", ev.Kind)
	}
}

// worker processes one user's events in arrival order.
func (d *Dispatcher) worker(ctx context.Context, userKey string, ch chan models.Event) {
	defer d.wg.Done()
	slog.Debug("Dispatcher worker started", "user", userKey)

	for ev := range ch {
		if err := d.handler.HandleEvent(ctx, ev); err != nil {
			slog.Error("Dispatcher handler error", "user", userKey, "kind", ev.Kind, "error", err)
		}
	}
	slog.Debug("Dispatcher worker stopped", "user", userKey)
}

// allowed reports whether the sender passes the allowlist gate.
func (d *Dispatcher) allowed(from string) bool {
	if len(d.allowlist) == 0 {
		return true
	}
	canonical, err := d.svc.ValidateAndCanonicalizeRecipient(from)
	if err != nil {
		return false
	}
	return d.allowlist[canonical]
}

// shutdown closes all worker queues and waits for in-flight events to
// finish, so a deploy never cuts a user off mid-reply.
func (d *Dispatcher) shutdown() {
	d.mu.Lock()
	for _, ch := range d.workers {
		close(ch)
	}
	d.workers = make(map[string]chan models.Event)
	d.mu.Unlock()

	d.wg.Wait()
	slog.Info("Dispatcher drained all workers")
}
