package service

import (
	"context"

	"github.com/okian/livebattle/internal/domain/battle"
	"github.com/okian/livebattle/internal/domain/classify"
	"github.com/okian/livebattle/internal/domain/dedupe"
	"github.com/okian/livebattle/internal/domain/model"
	"github.com/okian/livebattle/pkg/logger"
	"github.com/okian/livebattle/pkg/metrics"
)

// Handle runs one event through dedupe, classification and execution.
// The dedupe check and record happen before any blocking call.
func (l *Listener) Handle(ctx context.Context, ev model.Event) { //nolint:gocritic // hugeParam: events are passed by value
	defer l.publish()
	l.settleSynced(ctx)

	l.events++
	metrics.RecordEventReceived(ev.Kind.String())
	l.logger.Debug(ctx, "event received",
		logger.String("kind", ev.Kind.String()),
		logger.String("type", ev.Type),
		logger.String("payload", ev.Payload.Raw()),
	)

	key := dedupe.Key(ev)
	if l.deduper.SeenAndRecord(ctx, key) {
		l.duplicates++
		metrics.RecordEventDuplicate()
		l.logger.Debug(ctx, "duplicate event skipped", logger.String("key", key))
		return
	}
	metrics.UpdateDedupeSize(l.deduper.Size())

	d := l.classifier.Classify(ev)
	metrics.RecordDecision(d.Action.String(), d.Rule)

	switch d.Action {
	case classify.ActionStart, classify.ActionEnd:
		l.transition(ctx, d.Action, d.Fallback, d.Reason, d.Gated)
	case classify.ActionTally:
		l.tally(ctx, ev)
	case classify.ActionImportSlots:
		l.importSlots(ctx, d.One, d.Two)
	case classify.ActionGift:
		l.gift(ctx, ev, d)
	case classify.ActionIgnore:
	}
}

// transition applies a start or end. When a start is suppressed by the
// cooldown, fallback is tried instead.
func (l *Listener) transition(ctx context.Context, action, fallback classify.Action, reason string, gated bool) {
	switch action {
	case classify.ActionStart:
		if l.start(ctx, reason, gated) || fallback != classify.ActionEnd {
			return
		}
		l.end(ctx, reason, gated)
	case classify.ActionEnd:
		l.end(ctx, reason, gated)
	default:
	}
}

func (l *Listener) start(ctx context.Context, reason string, gated bool) bool {
	if !l.lifecycle.TryStart(l.now(), gated) {
		metrics.RecordLifecycle("start", "suppressed")
		l.logger.Debug(ctx, "battle start suppressed by cooldown", logger.String("reason", reason))
		return false
	}
	metrics.RecordLifecycle("start", "triggered")

	l.scoreboard.Reset()
	l.recordScores()
	l.enqueue(ctx, model.Command{Kind: model.CommandStart, Reason: reason})
	l.logger.Info(ctx, "battle start", logger.String("reason", reason), logger.Bool("gated", gated))
	return true
}

func (l *Listener) end(ctx context.Context, reason string, gated bool) bool {
	if !l.lifecycle.TryEnd(l.now(), gated) {
		metrics.RecordLifecycle("end", "suppressed")
		l.logger.Debug(ctx, "battle end suppressed by cooldown", logger.String("reason", reason))
		return false
	}
	metrics.RecordLifecycle("end", "triggered")

	l.enqueue(ctx, model.Command{Kind: model.CommandEnd, Reason: reason})
	l.logger.Info(ctx, "battle end", logger.String("reason", reason), logger.Bool("gated", gated))
	return true
}

func (l *Listener) tally(ctx context.Context, ev model.Event) { //nolint:gocritic // hugeParam: events are passed by value
	t := battle.ParseTally(ev.Payload)
	if !t.HasOne && !t.HasTwo {
		l.logger.Debug(ctx, "tally without scores", logger.String("payload", ev.Payload.Raw()))
		return
	}

	if l.lifecycle.NeedsImplicitStart(l.now()) {
		l.start(ctx, classify.ReasonTally, true)
	}

	for _, delta := range l.scoreboard.ApplyTally(t) {
		l.enqueue(ctx, model.Command{Kind: model.CommandAddScore, Slot: delta.Slot, Amount: delta.Amount})
		l.logger.Info(ctx, "tally delta",
			logger.String("slot", string(delta.Slot)),
			logger.Int64("amount", delta.Amount),
		)
	}
	l.recordScores()
}

func (l *Listener) importSlots(ctx context.Context, one, two string) {
	l.scoreboard.Bind(one, two)
	l.enqueue(ctx, model.Command{Kind: model.CommandImportSlots, One: one, Two: two})
	l.logger.Info(ctx, "slots imported", logger.String("slot_one", one), logger.String("slot_two", two))
}

// gift asks for a fresh slot binding and parks the gift until the answer
// comes back on the loop. The loop keeps reading events meanwhile.
func (l *Listener) gift(ctx context.Context, ev model.Event, d classify.Decision) { //nolint:gocritic // hugeParam: events are passed by value
	if len(l.pending) >= maxPendingGifts {
		l.logger.Warn(ctx, "slot sync backlog full, scoring against last binding",
			logger.Int("pending", len(l.pending)),
		)
		l.scoreGift(ctx, ev, d)
		return
	}

	l.syncSeq++
	if !l.enqueue(ctx, model.Command{Kind: model.CommandSyncSlots, Seq: l.syncSeq, Reply: l.synced}) {
		l.scoreGift(ctx, ev, d)
		return
	}
	l.pending = append(l.pending, pendingGift{
		seq:      l.syncSeq,
		ev:       ev,
		decision: d,
		deadline: l.now().Add(l.syncTimeout),
	})
	l.settleSynced(ctx)
}

// scoreGift runs the gift name heuristic and credits the gift's value
// against the current binding.
func (l *Listener) scoreGift(ctx context.Context, ev model.Event, d classify.Decision) { //nolint:gocritic // hugeParam: events are passed by value
	l.transition(ctx, d.Heuristic, d.Fallback, d.Reason, d.Gated)

	g := battle.GiftFromEvent(ev)
	value, ok := g.Value()
	if !ok {
		l.logger.Debug(ctx, "gift without value", logger.String("gift", g.Name))
		return
	}

	slot := l.scoreboard.ApplyGift(g.Recipient, value)
	metrics.RecordGiftValue(string(slot), value)
	l.recordScores()
	l.enqueue(ctx, model.Command{Kind: model.CommandAddScore, Slot: slot, Amount: value})
	l.logger.Info(ctx, "gift scored",
		logger.String("gift", g.Name),
		logger.String("recipient", g.Recipient),
		logger.String("slot", string(slot)),
		logger.Int64("value", value),
	)
}

// settleSynced applies every sync reply already delivered and scores gifts
// whose sync has outlived the timeout. It never blocks.
func (l *Listener) settleSynced(ctx context.Context) bool {
	settled := false
	for {
		select {
		case res := <-l.synced:
			l.onSynced(ctx, res)
			settled = true
		default:
			return l.expirePending(ctx) || settled
		}
	}
}

// onSynced refreshes the binding and releases the gifts waiting on res or on
// an earlier request. A failed sync keeps the previous binding.
func (l *Listener) onSynced(ctx context.Context, res model.SlotNames) {
	if res.OK {
		l.scoreboard.Bind(res.One, res.Two)
	}
	for len(l.pending) > 0 && l.pending[0].seq <= res.Seq {
		p := l.pending[0]
		l.pending = l.pending[1:]
		l.scoreGift(ctx, p.ev, p.decision)
	}
}

func (l *Listener) expirePending(ctx context.Context) bool {
	now := l.now()
	expired := false
	for len(l.pending) > 0 && !now.Before(l.pending[0].deadline) {
		p := l.pending[0]
		l.pending = l.pending[1:]
		l.logger.Warn(ctx, "slot sync timed out, scoring against last binding",
			logger.Duration("timeout", l.syncTimeout),
			logger.String("gift", p.decision.GiftName),
		)
		l.scoreGift(ctx, p.ev, p.decision)
		expired = true
	}
	return expired
}

// flushPending scores every parked gift against the current binding.
func (l *Listener) flushPending(ctx context.Context) {
	if len(l.pending) == 0 {
		return
	}
	pending := l.pending
	l.pending = nil
	for _, p := range pending {
		l.scoreGift(ctx, p.ev, p.decision)
	}
	l.publish()
}

func (l *Listener) enqueue(ctx context.Context, cmd model.Command) bool { //nolint:gocritic // hugeParam: commands are passed by value
	if l.commands.Enqueue(ctx, cmd) {
		return true
	}
	l.logger.Warn(ctx, "command dropped", logger.String("command", cmd.Kind.String()))
	return false
}

func (l *Listener) recordScores() {
	metrics.UpdateSlotScore(string(model.SlotOne), l.scoreboard.Score(model.SlotOne))
	metrics.UpdateSlotScore(string(model.SlotTwo), l.scoreboard.Score(model.SlotTwo))
}
