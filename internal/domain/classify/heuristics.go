package classify

import "strings"

// LooksLikeStart reports whether free text or a gift name hints at a battle start.
func LooksLikeStart(text, giftName string) bool {
	t := strings.ToLower(text)
	if strings.Contains(t, "!battle") || strings.Contains(t, "start battle") {
		return true
	}
	return giftName != "" && strings.Contains(strings.ToLower(giftName), "battle")
}

// LooksLikeEnd reports whether free text or a gift name hints at a battle end.
func LooksLikeEnd(text, giftName string) bool {
	t := strings.ToLower(text)
	if strings.Contains(t, "!end") || strings.Contains(t, "end battle") || strings.TrimSpace(t) == "gg" {
		return true
	}
	return giftName != "" && strings.Contains(strings.ToLower(giftName), "whistle")
}

// ParseSlots splits the argument of "!slots a|b". Blank sides get the defaults.
func ParseSlots(text, defaultOne, defaultTwo string) (string, string) {
	rest := strings.TrimSpace(text)
	if hasCommand(rest, cmdSlots) {
		rest = rest[len(cmdSlots):]
	}
	parts := strings.Split(strings.TrimSpace(rest), "|")

	one, two := defaultOne, defaultTwo
	if s := strings.TrimSpace(parts[0]); s != "" {
		one = s
	}
	if len(parts) > 1 {
		if s := strings.TrimSpace(parts[1]); s != "" {
			two = s
		}
	}
	return one, two
}

// mentionsBattle reports whether desc contains "battle" and any of verbs.
func mentionsBattle(desc string, verbs ...string) bool {
	d := strings.ToLower(desc)
	if !strings.Contains(d, "battle") {
		return false
	}
	for _, v := range verbs {
		if strings.Contains(d, v) {
			return true
		}
	}
	return false
}

// hasCommand reports whether the trimmed text starts with cmd, ignoring case.
func hasCommand(text, cmd string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(text)), cmd)
}
