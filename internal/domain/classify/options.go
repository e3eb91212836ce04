package classify

import "strings"

// Option configures a Classifier.
type Option func(*Classifier)

// WithDefaultSlots sets the names used when a "!slots" side is blank.
// Blank arguments keep the built-in defaults.
func WithDefaultSlots(one, two string) Option {
	return func(c *Classifier) {
		if s := strings.TrimSpace(one); s != "" {
			c.defaultOne = s
		}
		if s := strings.TrimSpace(two); s != "" {
			c.defaultTwo = s
		}
	}
}

// WithRules replaces the standard table.
func WithRules(rules ...Rule) Option {
	return func(c *Classifier) {
		c.rules = append([]Rule(nil), rules...)
	}
}
