package dedupe

import (
	"strings"

	"github.com/okian/livebattle/internal/domain/model"
)

// snippetRunes bounds the comment text folded into a key.
const snippetRunes = 64

// Key derives the idempotency key of ev, in priority order:
//  1. explicit identifier: "{kind}:{id}"
//  2. comment sender and text snippet: "{kind}:{sender}:{snippet}"
//  3. timestamp and sender: "{kind}:{ts}:{sender}"
//
// It returns "" when none applies; such events are never treated as duplicates.
func Key(ev model.Event) string {
	kind := ev.Kind.String()

	if id := ev.ID(); id != "" {
		return kind + ":" + id
	}

	sender := ev.Sender()

	if ev.Kind == model.KindComment && sender != "" {
		if text := strings.TrimSpace(ev.Text()); text != "" {
			return kind + ":" + sender + ":" + snippet(text)
		}
	}

	if ts := ev.Timestamp(); ts != "" && sender != "" {
		return kind + ":" + ts + ":" + sender
	}

	return ""
}

func snippet(text string) string {
	r := []rune(text)
	if len(r) > snippetRunes {
		r = r[:snippetRunes]
	}
	return string(r)
}
