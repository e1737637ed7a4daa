package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/careroute/concierge/pkg/observability"
	"github.com/careroute/concierge/pkg/storage"
	"github.com/careroute/concierge/pkg/tools"
)

// Persister records finished turns as journey history. Its operations
// have no result: every failure is logged, counted and dropped so a
// missing history row never fails a chat request.
type Persister struct {
	store   storage.HistoryStore
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewPersister creates a Persister. A zero timeout means 5s. A nil store
// makes Record a no-op.
func NewPersister(store storage.HistoryStore, timeout time.Duration, logger *slog.Logger) *Persister {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Persister{store: store, timeout: timeout, logger: logger, now: time.Now}
}

// Record appends the user utterance and the assistant reply to the
// journey's history. It runs detached from request cancellation so a
// client hanging up right after the reply still gets its turn stored.
func (p *Persister) Record(ctx context.Context, journeyID, userText, assistantText string, payload tools.Payload) {
	if p.store == nil || journeyID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	now := p.now().UTC()
	assistant := storage.ConversationTurn{Role: storage.TurnRoleAssistant, Text: assistantText, CreatedAt: now}
	if payload != nil {
		raw, err := tools.MarshalPayload(payload)
		if err != nil {
			p.Discard("turn_payload", fmt.Errorf("journey %s: %w", journeyID, err))
		} else {
			assistant.Payload = raw
		}
	}

	err := p.store.AppendTurns(ctx, journeyID,
		storage.ConversationTurn{Role: storage.TurnRoleUser, Text: userText, CreatedAt: now},
		assistant,
	)
	if err != nil {
		p.Discard("turn", fmt.Errorf("journey %s: %w", journeyID, err))
	}
}

// Discard is the log-and-drop sink for best-effort writes.
func (p *Persister) Discard(kind string, err error) {
	observability.PersistFailuresTotal.WithLabelValues(kind).Inc()
	p.logger.Warn("best-effort write dropped", "kind", kind, "error", err)
}
