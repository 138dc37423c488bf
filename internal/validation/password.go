package validation

import (
	"strings"
	"unicode/utf8"
)

const (
	MinPasswordLength = 8
	SpecialCharacters = "!@#$%^&*"
)

// Rule names one requirement of the password policy.
type Rule string

const (
	RuleMinLength Rule = "min_length"
	RuleUppercase Rule = "uppercase"
	RuleLowercase Rule = "lowercase"
	RuleDigit     Rule = "digit"
	RuleSpecial   Rule = "special"
)

var ruleLabels = map[Rule]string{
	RuleMinLength: "At least 8 characters",
	RuleUppercase: "One uppercase letter",
	RuleLowercase: "One lowercase letter",
	RuleDigit:     "One digit",
	RuleSpecial:   "One special character (!@#$%^&*)",
}

// PasswordCriteria is the outcome of each policy rule for one password draft.
type PasswordCriteria struct {
	MinLength bool
	Uppercase bool
	Lowercase bool
	Digit     bool
	Special   bool
}

// EvaluatePassword checks value against every rule independently. Letters and
// digits are ASCII classes; length counts runes.
func EvaluatePassword(value string) PasswordCriteria {
	c := PasswordCriteria{
		MinLength: utf8.RuneCountInString(value) >= MinPasswordLength,
		Special:   strings.ContainsAny(value, SpecialCharacters),
	}

	for _, r := range value {
		switch {
		case r >= 'A' && r <= 'Z':
			c.Uppercase = true
		case r >= 'a' && r <= 'z':
			c.Lowercase = true
		case r >= '0' && r <= '9':
			c.Digit = true
		}
	}

	return c
}

func (c PasswordCriteria) IsValid() bool {
	return c.MinLength && c.Uppercase && c.Lowercase && c.Digit && c.Special
}

// Unmet lists failing rules in display order.
func (c PasswordCriteria) Unmet() []Rule {
	var rules []Rule
	if !c.MinLength {
		rules = append(rules, RuleMinLength)
	}
	if !c.Uppercase {
		rules = append(rules, RuleUppercase)
	}
	if !c.Lowercase {
		rules = append(rules, RuleLowercase)
	}
	if !c.Digit {
		rules = append(rules, RuleDigit)
	}
	if !c.Special {
		rules = append(rules, RuleSpecial)
	}
	return rules
}

// Label is the checklist text shown next to a rule.
func (r Rule) Label() string {
	return ruleLabels[r]
}
