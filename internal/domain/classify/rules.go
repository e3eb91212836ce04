package classify

import (
	"strings"
	"unicode"

	"github.com/okian/livebattle/internal/domain/model"
)

// Operator commands recognised at the start of a comment.
const (
	cmdBattle = "!battle"
	cmdEnd    = "!end"
	cmdSlots  = "!slots"
)

//nolint:gochecknoglobals // rule vocabulary
var (
	linkStartVerbs    = []string{"start", "enter", "begin"}
	linkEndVerbs      = []string{"end", "finish", "exit"}
	controlStartVerbs = []string{"start", "begin"}
	controlEndVerbs   = []string{"end", "finish", "stop"}
	noticeEndWords    = map[string]bool{
		"end": true, "ended": true, "finish": true, "finished": true,
		"stop": true, "stopped": true, "over": true,
	}
)

func is(kind model.Kind) func(model.Event) bool {
	return func(ev model.Event) bool { return ev.Kind == kind }
}

// noticeEnded reports whether a battle notice announces the end of a battle.
func noticeEnded(ev model.Event) bool {
	if ended, ok := ev.Payload.Bool("ended", "finished", "is_end", "isEnd"); ok && ended {
		return true
	}
	words := strings.FieldsFunc(strings.ToLower(ev.Status()), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, w := range words {
		if noticeEndWords[w] {
			return true
		}
	}
	return false
}

// heuristic checks start before end. A start that also looks like an end
// carries the end as its fallback.
func heuristic(text, giftName string) (Action, Action) {
	start, end := LooksLikeStart(text, giftName), LooksLikeEnd(text, giftName)
	switch {
	case start && end:
		return ActionStart, ActionEnd
	case start:
		return ActionStart, ActionIgnore
	case end:
		return ActionEnd, ActionIgnore
	}
	return ActionIgnore, ActionIgnore
}

func decide(d Decision) func(model.Event) Decision {
	return func(model.Event) Decision { return d }
}

// standardRules builds the classification table. Order is the precedence contract.
func (c *Classifier) standardRules() []Rule { //nolint:funlen // the table reads best in one place
	return []Rule{
		{
			Name:   "battle_notice_start",
			Match:  func(ev model.Event) bool { return ev.Kind == model.KindBattle && !noticeEnded(ev) },
			Decide: decide(Decision{Action: ActionStart, Reason: ReasonBattleNotice}),
		},
		{
			Name:   "battle_notice_end",
			Match:  is(model.KindBattle),
			Decide: decide(Decision{Action: ActionEnd, Reason: ReasonBattleNotice}),
		},
		{
			Name:   "tally",
			Match:  is(model.KindArmies),
			Decide: decide(Decision{Action: ActionTally, Reason: ReasonTally, Gated: true}),
		},
		{
			Name: "link_state_start",
			Match: func(ev model.Event) bool {
				return ev.Kind == model.KindLinkState && mentionsBattle(ev.Description(), linkStartVerbs...)
			},
			Decide: decide(Decision{Action: ActionStart, Reason: ReasonLinkState, Gated: true}),
		},
		{
			Name: "link_state_end",
			Match: func(ev model.Event) bool {
				return ev.Kind == model.KindLinkState && mentionsBattle(ev.Description(), linkEndVerbs...)
			},
			Decide: decide(Decision{Action: ActionEnd, Reason: ReasonLinkState, Gated: true}),
		},
		{
			Name: "control_start",
			Match: func(ev model.Event) bool {
				return ev.Kind == model.KindControl && mentionsBattle(ev.Description(), controlStartVerbs...)
			},
			Decide: decide(Decision{Action: ActionStart, Reason: ReasonControl, Gated: true}),
		},
		{
			Name: "control_end",
			Match: func(ev model.Event) bool {
				return ev.Kind == model.KindControl && mentionsBattle(ev.Description(), controlEndVerbs...)
			},
			Decide: decide(Decision{Action: ActionEnd, Reason: ReasonControl, Gated: true}),
		},
		{
			Name:  "gift",
			Match: is(model.KindGift),
			Decide: func(ev model.Event) Decision {
				name := ev.GiftName()
				d := Decision{Action: ActionGift, Reason: ReasonHeuristic, Gated: true, GiftName: name}
				d.Heuristic, d.Fallback = heuristic("", name)
				return d
			},
		},
		{
			Name:   "command_battle",
			Match:  func(ev model.Event) bool { return ev.Kind == model.KindComment && hasCommand(ev.Text(), cmdBattle) },
			Decide: decide(Decision{Action: ActionStart, Reason: ReasonCommand}),
		},
		{
			Name:   "command_end",
			Match:  func(ev model.Event) bool { return ev.Kind == model.KindComment && hasCommand(ev.Text(), cmdEnd) },
			Decide: decide(Decision{Action: ActionEnd, Reason: ReasonCommand}),
		},
		{
			Name:  "command_slots",
			Match: func(ev model.Event) bool { return ev.Kind == model.KindComment && hasCommand(ev.Text(), cmdSlots) },
			Decide: func(ev model.Event) Decision {
				one, two := ParseSlots(ev.Text(), c.defaultOne, c.defaultTwo)
				return Decision{Action: ActionImportSlots, Reason: ReasonCommand, One: one, Two: two}
			},
		},
		{
			Name:  "comment_heuristic",
			Match: is(model.KindComment),
			Decide: func(ev model.Event) Decision {
				action, fallback := heuristic(ev.Text(), "")
				if action == ActionIgnore {
					return Decision{Action: ActionIgnore}
				}
				return Decision{Action: action, Reason: ReasonHeuristic, Gated: true, Fallback: fallback}
			},
		},
		{
			Name:   "like",
			Match:  is(model.KindLike),
			Decide: decide(Decision{Action: ActionIgnore}),
		},
	}
}
