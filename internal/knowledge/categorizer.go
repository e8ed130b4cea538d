package knowledge

import "strings"

// Rule assigns Category to documents of Section carrying any of AnyTag.
type Rule struct {
	Section  string
	AnyTag   []string
	Category string
}

// Categorizer derives a category for documents that do not set one.
type Categorizer struct {
	Rules     []Rule
	Fallbacks map[string]string // section -> category
}

// DefaultCategorizer classifies projects by their tech tags.
func DefaultCategorizer() *Categorizer {
	return &Categorizer{
		Rules: []Rule{
			{Section: "Projects", AnyTag: []string{"React", "JavaScript"}, Category: "Frontend"},
		},
		Fallbacks: map[string]string{
			"Projects": "Webentwicklung",
		},
	}
}

// Categorize returns explicit when set, then the first matching rule, then
// the section fallback, and "" otherwise.
func (c *Categorizer) Categorize(section, explicit string, tags []string) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit
	}
	if c == nil {
		return ""
	}

	for _, rule := range c.Rules {
		if !strings.EqualFold(rule.Section, section) {
			continue
		}
		if hasAnyTag(tags, rule.AnyTag) {
			return rule.Category
		}
	}

	for s, category := range c.Fallbacks {
		if strings.EqualFold(s, section) {
			return category
		}
	}
	return ""
}

func hasAnyTag(tags, want []string) bool {
	for _, t := range tags {
		for _, w := range want {
			if strings.EqualFold(strings.TrimSpace(t), w) {
				return true
			}
		}
	}
	return false
}
