package playback

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKind(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("wrapped: %w", &Error{Kind: LoadError, Op: "load", Err: cause})

	assert.ErrorIs(t, err, ErrLoad)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrPlayback)
	assert.NotErrorIs(t, err, ErrNotReady)
}

func TestError_Message(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{&Error{Kind: SeekError}, "SeekError"},
		{&Error{Kind: NotReady, Op: "play"}, "play: NotReady"},
		{&Error{Kind: LoadError, Op: "load", Err: errors.New("404")}, "load: LoadError: 404"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Error())
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, NotReady, KindOf(notReady("seek", StatusIdle)))
	assert.Equal(t, SeekError, KindOf(fmt.Errorf("x: %w", &Error{Kind: SeekError})))
	assert.Equal(t, ErrorKind(0), KindOf(errors.New("plain")))
	assert.Equal(t, ErrorKind(0), KindOf(ErrSuperseded))
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "LoadError", LoadError.String())
	assert.Equal(t, "PlaybackError", PlaybackError.String())
	assert.Equal(t, "SeekError", SeekError.String())
	assert.Equal(t, "NotReady", NotReady.String())
	assert.Equal(t, "Unknown", ErrorKind(0).String())
}
