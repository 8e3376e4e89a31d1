package icons

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInit(t *testing.T) {
	tests := []struct {
		name  string
		style string
		want  Icons
	}{
		{"nerd style", "nerd", nerdIcons},
		{"unicode style", "unicode", unicodeIcons},
		{"none style", "none", noneIcons},
		{"empty string defaults to unicode", "", unicodeIcons},
		{"unknown style defaults to unicode", "invalid", unicodeIcons},
		{"case sensitive - NERD defaults to unicode", "NERD", unicodeIcons},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Init(tt.style)
			assert.Equal(t, tt.want, current)
		})
	}

	// Reset to default
	Init("unicode")
}

func TestAccessors(t *testing.T) {
	Init("none")
	defer Init("unicode")

	assert.Equal(t, ">", Play())
	assert.Equal(t, "||", Pause())
	assert.Equal(t, "<>", Seek())
	assert.Equal(t, "...", Loading())
	assert.Equal(t, "x", Error())
	assert.Equal(t, "-", Idle())
}

func TestIconSetsAreDistinct(t *testing.T) {
	for _, set := range []Icons{nerdIcons, unicodeIcons, noneIcons} {
		seen := map[string]bool{}
		for _, s := range []string{set.Play, set.Pause, set.Seek, set.Loading, set.Error, set.Idle} {
			assert.NotEmpty(t, s)
			assert.False(t, seen[s], "duplicate icon %q", s)
			seen[s] = true
		}
	}
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("nerd"))
	assert.True(t, Valid("none"))
	assert.False(t, Valid("emoji"))
}
