package services

import "strings"

// ModerationPolicy is the rule set of the automatic reviewer.
type ModerationPolicy struct {
	terms []string
}

func NewModerationPolicy(terms []string) ModerationPolicy {
	p := ModerationPolicy{}
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			p.terms = append(p.terms, t)
		}
	}
	return p
}

// Evaluate rejects body when it mentions any banned term, matching case-insensitively.
func (p ModerationPolicy) Evaluate(body string) (passed bool, reason string) {
	body = strings.ToLower(body)
	for _, t := range p.terms {
		if strings.Contains(body, t) {
			return false, "contains banned term: " + t
		}
	}
	return true, ""
}
