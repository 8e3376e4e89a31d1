package player

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
)

// createMinimalMP3 creates a minimal valid MP3 file for testing.
// Returns MP3 frame header + padding (417 bytes total for 128kbps frame).
func createMinimalMP3(t *testing.T, path string) {
	t.Helper()
	mp3Frame := make([]byte, 417)
	mp3Frame[0] = 0xff
	mp3Frame[1] = 0xfb
	mp3Frame[2] = 0x90
	mp3Frame[3] = 0x00

	if err := os.WriteFile(path, mp3Frame, 0o600); err != nil {
		t.Fatalf("failed to create test MP3: %v", err)
	}
}

func tagMP3(t *testing.T, path string, enc id3v2.Encoding, frames map[string]string) {
	t.Helper()
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("failed to open MP3 for tagging: %v", err)
	}
	defer tag.Close()
	for id, text := range frames {
		tag.AddTextFrame(id, enc, text)
	}
	if err := tag.Save(); err != nil {
		t.Fatalf("failed to save ID3 tags: %v", err)
	}
}

func TestReadTrackInfo_UTF8Tags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mp3")
	createMinimalMP3(t, path)
	tagMP3(t, path, id3v2.EncodingUTF8, map[string]string{
		"TIT2": "Blue Monday",
		"TPE1": "New Order",
		"TALB": "Power, Corruption & Lies",
	})

	info, err := ReadTrackInfo("file://" + path)
	if err != nil {
		t.Fatalf("ReadTrackInfo failed: %v", err)
	}
	if info.Path != path {
		t.Errorf("Path = %q, want %q", info.Path, path)
	}
	if info.Title != "Blue Monday" {
		t.Errorf("Title = %q, want Blue Monday", info.Title)
	}
	if info.Artist != "New Order" {
		t.Errorf("Artist = %q, want New Order", info.Artist)
	}
	if info.Album != "Power, Corruption & Lies" {
		t.Errorf("Album = %q", info.Album)
	}
}

func TestReadTrackInfo_FallbackOnMalformedUTF16(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.mp3")
	createMinimalMP3(t, path)
	// UTF-16 frames trigger a parsing bug in dhowden/tag
	tagMP3(t, path, id3v2.EncodingUTF16, map[string]string{
		"TIT2": "Test Title UTF16",
		"TPE1": "Test Artist UTF16",
		"TALB": "Test Album UTF16",
		"TYER": "2024",
	})

	info, err := ReadTrackInfo(path)
	if err != nil {
		t.Fatalf("ReadTrackInfo failed: %v", err)
	}
	if info.Artist == "" {
		t.Error("Artist should not be empty")
	}
	if info.Album == "" {
		t.Error("Album should not be empty")
	}
	if info.Title == "" {
		t.Error("Title should not be empty")
	}
}

func TestReadTrackInfo_UntaggedUsesFileName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "untitled.mp3")
	createMinimalMP3(t, path)

	info, err := ReadTrackInfo(path)
	if err != nil {
		t.Fatalf("ReadTrackInfo failed: %v", err)
	}
	if info.Title != "untitled.mp3" {
		t.Errorf("Title = %q, want untitled.mp3", info.Title)
	}
}

func TestReadTrackInfo_UnreadableOpus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.opus")
	if err := os.WriteFile(path, []byte("not an ogg stream"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadTrackInfo(path); err == nil {
		t.Error("expected an error for a file neither tag reader can parse")
	}
}

func TestReadTrackInfo_RemoteURI(t *testing.T) {
	_, err := ReadTrackInfo("https://cdn.example.com/a.mp3")
	if !errors.Is(err, ErrUnsupportedURI) {
		t.Errorf("err = %v, want ErrUnsupportedURI", err)
	}
}

func TestLeadingInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"2024", 2024},
		{"2024-05-01", 2024},
		{"5/12", 5},
		{"track", 0},
	}
	for _, tt := range tests {
		if got := leadingInt(tt.in); got != tt.want {
			t.Errorf("leadingInt(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
