package transcript

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()

	pat, err := r.Lookup("en")
	require.NoError(t, err)
	assert.Equal(t, "en", pat.Locale)

	_, err = r.Lookup("fr")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoPattern), "unregistered locale must surface ErrNoPattern")
}

func TestRegistryRegisterOverrides(t *testing.T) {
	r := NewRegistry()
	r.Register("en", "Student said", "Tutor said")

	pat, err := r.Lookup("en")
	require.NoError(t, err)
	assert.True(t, pat.Learner.MatchString("Student said: hello"))
	assert.False(t, pat.Learner.MatchString("You said: hello"))
}

func TestRegistryAllDeterministicOrder(t *testing.T) {
	r := NewRegistry()
	r.Register("de", "Du sagtest", "Partner sagte")

	locales := []string{}
	for _, pat := range r.All() {
		locales = append(locales, pat.Locale)
	}
	assert.Equal(t, []string{"de", "en", "pt-BR"}, locales)
}

func TestCuePatternTolerance(t *testing.T) {
	r := NewRegistry()
	pat, err := r.Lookup("en")
	require.NoError(t, err)

	tests := []struct {
		name  string
		line  string
		match bool
	}{
		{"plain", "You said: hello", true},
		{"uppercase", "YOU SAID: hello", true},
		{"fullwidth_colon", "You said：hello", true},
		{"space_before_colon", "You said : hello", true},
		{"extra_internal_spaces", "You   said: hello", true},
		{"no_separator", "You said hello", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.match, pat.Learner.MatchString(tt.line))
		})
	}
}

func TestPortugueseCues(t *testing.T) {
	r := NewRegistry()
	pat, err := r.Lookup("pt-BR")
	require.NoError(t, err)

	assert.True(t, pat.Learner.MatchString("Você disse: Oi, tudo bem?"))
	assert.True(t, pat.Bot.MatchString("English Conversational Partner disse: Olá!"))
}
