package main

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/ripple/internal/config"
	"github.com/llehouerou/ripple/internal/player"
)

func TestOpenBackend(t *testing.T) {
	tests := []struct {
		kind    string
		want    any
		wantErr bool
	}{
		{kind: config.BackendBeep, want: &player.Beep{}},
		{kind: config.BackendMPV, want: &player.MPV{}},
		{kind: "vlc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			cfg := &config.Config{Backend: config.BackendConfig{Kind: tt.kind}}
			b, closeFn, err := openBackend(cfg, zerolog.Nop())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, b)
			closeFn()
		})
	}
}

func TestTrackFor_RemoteURIKeepsURIOnly(t *testing.T) {
	track := trackFor("https://cdn.example.com/a.mp3", zerolog.Nop())
	assert.Equal(t, "https://cdn.example.com/a.mp3", track.URI)
	assert.Empty(t, track.Title)
}

func TestPlayCommandArgs(t *testing.T) {
	assert.Error(t, playCmd.Args(playCmd, nil))
	assert.NoError(t, playCmd.Args(playCmd, []string{"a.mp3"}))
}
