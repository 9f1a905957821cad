package transcript

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ErrNoPattern is returned when a locale has no registered label pattern.
// Lookups never fall back to a default pair silently.
var ErrNoPattern = fmt.Errorf("no label pattern for locale")

// LabelPattern is the compiled cue pair for one locale. Each pattern matches
// its cue at a line start, tolerating case, full-width or half-width colons,
// and surrounding whitespace.
type LabelPattern struct {
	Locale  string
	Learner *regexp.Regexp
	Bot     *regexp.Regexp
}

// Registry maps locale tags to speaker cue pairs. New locales are added as
// data; segmentation logic never branches on specific locales.
type Registry struct {
	patterns map[string]LabelPattern
}

// NewRegistry returns a registry preloaded with the built-in locales.
func NewRegistry() *Registry {
	r := &Registry{patterns: make(map[string]LabelPattern)}
	r.Register("en", "You said", "English Conversational Partner said")
	r.Register("pt-BR", "Você disse", "English Conversational Partner disse")
	return r
}

// Register adds or replaces the cue pair for a locale. Cues are given as
// literal label text without the trailing separator; formatting tolerance is
// applied when the patterns are compiled.
func (r *Registry) Register(locale, learnerCue, botCue string) {
	r.patterns[locale] = LabelPattern{
		Locale:  locale,
		Learner: compileCue(learnerCue),
		Bot:     compileCue(botCue),
	}
}

// Lookup returns the cue pair for a locale. An unregistered locale is a
// distinct error condition, never a silent default.
func (r *Registry) Lookup(locale string) (LabelPattern, error) {
	pat, ok := r.patterns[locale]
	if !ok {
		return LabelPattern{}, fmt.Errorf("%w: %q", ErrNoPattern, locale)
	}
	return pat, nil
}

// All returns every registered pattern in a deterministic order.
func (r *Registry) All() []LabelPattern {
	locales := make([]string, 0, len(r.patterns))
	for locale := range r.patterns {
		locales = append(locales, locale)
	}
	sort.Strings(locales)
	patterns := make([]LabelPattern, 0, len(locales))
	for _, locale := range locales {
		patterns = append(patterns, r.patterns[locale])
	}
	return patterns
}

// compileCue turns a literal cue into a tolerant pattern: case-insensitive,
// any run of whitespace between words, and a half-width or full-width colon
// separator with optional trailing whitespace.
func compileCue(cue string) *regexp.Regexp {
	cue = strings.TrimRight(strings.TrimSpace(cue), ":： \t")
	words := strings.Fields(cue)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)` + strings.Join(words, `\s+`) + `\s*[:：][ \t]*`)
}
