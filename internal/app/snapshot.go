package service

import (
	"time"

	"github.com/okian/livebattle/internal/domain/model"
)

// Snapshot is an immutable copy of the listener state for readers outside
// the loop.
type Snapshot struct {
	Status     string           `json:"status"`
	Channel    string           `json:"channel"`
	SessionID  string           `json:"sessionId,omitempty"`
	Backoff    time.Duration    `json:"-"`
	BackoffSec float64          `json:"backoffSeconds"`
	Active     bool             `json:"battleActive"`
	LastStart  time.Time        `json:"lastStart,omitzero"`
	LastEnd    time.Time        `json:"lastEnd,omitzero"`
	SlotOne    string           `json:"slotOne"`
	SlotTwo    string           `json:"slotTwo"`
	ScoreOne   int64            `json:"scoreOne"`
	ScoreTwo   int64            `json:"scoreTwo"`
	Ledger     map[string]int64 `json:"ledger"`
	Events     int64            `json:"events"`
	Duplicates int64            `json:"duplicates"`
	Reconnects int64            `json:"reconnects"`
	DedupeSize int64            `json:"dedupeSize"`
	QueueLen   int              `json:"queueLength"`
	Pending    int              `json:"pendingGifts"`
}

// Snapshot returns the most recently published state.
func (l *Listener) Snapshot() Snapshot {
	return *l.snapshot.Load()
}

func (l *Listener) publish() {
	one, two := l.scoreboard.Binding()
	s := &Snapshot{
		Status:     l.Status().String(),
		Channel:    l.channel,
		SessionID:  l.sessionID,
		Backoff:    l.policy.Last(),
		BackoffSec: l.policy.Last().Seconds(),
		Active:     l.lifecycle.Active(),
		LastStart:  l.lifecycle.LastStart(),
		LastEnd:    l.lifecycle.LastEnd(),
		SlotOne:    one,
		SlotTwo:    two,
		ScoreOne:   l.scoreboard.Score(model.SlotOne),
		ScoreTwo:   l.scoreboard.Score(model.SlotTwo),
		Ledger:     l.scoreboard.Ledger(),
		Events:     l.events,
		Duplicates: l.duplicates,
		Reconnects: l.reconnects,
		DedupeSize: l.deduper.Size(),
		QueueLen:   l.commands.Len(),
		Pending:    len(l.pending),
	}
	l.snapshot.Store(s)
}
