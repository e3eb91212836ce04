// Package classify maps feed events onto battle lifecycle actions through an
// ordered rule table. The first matching rule decides.
package classify

import (
	"github.com/okian/livebattle/internal/domain/model"
)

// Action is what the listener should do with an event.
type Action int

// Actions.
const (
	ActionIgnore Action = iota
	ActionStart
	ActionEnd
	ActionTally
	ActionImportSlots
	ActionGift
)

// String returns a short label for logs and metrics.
func (a Action) String() string {
	switch a {
	case ActionIgnore:
		return "ignore"
	case ActionStart:
		return "start"
	case ActionEnd:
		return "end"
	case ActionTally:
		return "tally"
	case ActionImportSlots:
		return "import_slots"
	case ActionGift:
		return "gift"
	default:
		return "unknown"
	}
}

// Reasons forwarded with start/end triggers.
const (
	ReasonBattleNotice = "battle_notice"
	ReasonLinkState    = "link_state"
	ReasonControl      = "control"
	ReasonCommand      = "command"
	ReasonHeuristic    = "heuristic"
	ReasonTally        = "tally"
)

// Decision is the outcome of classifying one event.
type Decision struct {
	Action Action
	Rule   string // name of the rule that matched
	Reason string // start/end reason

	// Gated marks start/end decisions that the cooldown may suppress.
	// Operator commands and explicit battle notices are never gated.
	Gated bool

	// One and Two carry "!slots" names, defaults already applied.
	One string
	Two string

	// GiftName and Heuristic are set for gifts: Heuristic is ActionStart,
	// ActionEnd or ActionIgnore depending on the gift name.
	GiftName  string
	Heuristic Action

	// Fallback is ActionEnd when a heuristic start also looks like an end:
	// the end is tried if the cooldown suppresses the start.
	Fallback Action
}

// Rule is one row of the classification table.
type Rule struct {
	Name   string
	Match  func(ev model.Event) bool
	Decide func(ev model.Event) Decision
}

// Classifier evaluates a rule table.
type Classifier struct {
	rules      []Rule
	defaultOne string
	defaultTwo string
}

// DefaultSlotOne and DefaultSlotTwo fill blank "!slots" sides.
const (
	DefaultSlotOne = "Performer One"
	DefaultSlotTwo = "Performer Two"
)

// New creates a classifier using the standard rule table.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		defaultOne: DefaultSlotOne,
		defaultTwo: DefaultSlotTwo,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rules == nil {
		c.rules = c.standardRules()
	}
	return c
}

// Classify returns the decision of the first matching rule, or an ignore
// decision named "unmatched".
func (c *Classifier) Classify(ev model.Event) Decision {
	for _, r := range c.rules {
		if !r.Match(ev) {
			continue
		}
		d := r.Decide(ev)
		d.Rule = r.Name
		return d
	}
	return Decision{Action: ActionIgnore, Rule: "unmatched"}
}

// Rules returns a copy of the table in evaluation order.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}
