package player

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/dhowden/tag"
	"github.com/go-flac/flacvorbis"
	goflac "github.com/go-flac/go-flac"
	"go.senan.xyz/taglib"
)

// TrackInfo is the display metadata read from a local file's tags.
type TrackInfo struct {
	Path   string
	Title  string
	Artist string
	Album  string
	Year   int
	Track  int
}

// ReadTrackInfo reads tag metadata for a local path or file:// URI.
// The title falls back to the file name.
func ReadTrackInfo(uri string) (*TrackInfo, error) {
	path, err := LocalPath(uri)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		switch strings.ToLower(filepath.Ext(path)) {
		case extMP3:
			// dhowden/tag has issues with some UTF-16 encoded ID3 tags
			return readID3(path)
		case extFLAC:
			return readVorbisComments(path)
		}
		// Opus, Ogg and MP4 variants dhowden/tag cannot parse
		return readTaglib(path)
	}

	artist := m.Artist()
	if artist == "" {
		artist = m.AlbumArtist()
	}
	track, _ := m.Track()

	return withFallbackTitle(&TrackInfo{
		Path:   path,
		Title:  m.Title(),
		Artist: artist,
		Album:  m.Album(),
		Year:   m.Year(),
		Track:  track,
	}), nil
}

func withFallbackTitle(info *TrackInfo) *TrackInfo {
	if info.Title == "" {
		info.Title = filepath.Base(info.Path)
	}
	return info
}

func readID3(path string) (*TrackInfo, error) {
	id3tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, err
	}
	defer id3tag.Close()

	artist := id3tag.Artist()
	if artist == "" {
		artist = id3TextFrame(id3tag, "TPE2")
	}

	return withFallbackTitle(&TrackInfo{
		Path:   path,
		Title:  id3tag.Title(),
		Artist: artist,
		Album:  id3tag.Album(),
		Year:   leadingInt(id3tag.Year()),
		Track:  leadingInt(id3TextFrame(id3tag, "TRCK")),
	}), nil
}

func id3TextFrame(id3tag *id3v2.Tag, frameID string) string {
	frames := id3tag.GetFrames(frameID)
	if len(frames) == 0 {
		return ""
	}
	if tf, ok := frames[0].(id3v2.TextFrame); ok {
		return tf.Text
	}
	return ""
}

func readVorbisComments(path string) (*TrackInfo, error) {
	f, err := goflac.ParseFile(path)
	if err != nil {
		return nil, err
	}

	info := &TrackInfo{Path: path}
	for _, meta := range f.Meta {
		if meta.Type != goflac.VorbisComment {
			continue
		}
		cmts, err := flacvorbis.ParseFromMetaDataBlock(*meta)
		if err != nil {
			return nil, err
		}
		get := func(key string) string {
			if v, err := cmts.Get(key); err == nil && len(v) > 0 {
				return v[0]
			}
			return ""
		}
		info.Title = get(flacvorbis.FIELD_TITLE)
		info.Artist = get(flacvorbis.FIELD_ARTIST)
		info.Album = get(flacvorbis.FIELD_ALBUM)
		info.Year = leadingInt(get(flacvorbis.FIELD_DATE))
		info.Track = leadingInt(get(flacvorbis.FIELD_TRACKNUMBER))
		break
	}
	return withFallbackTitle(info), nil
}

func readTaglib(path string) (*TrackInfo, error) {
	tags, err := taglib.ReadTags(path)
	if err != nil {
		return nil, err
	}
	get := func(keys ...string) string {
		for _, key := range keys {
			if v := tags[key]; len(v) > 0 {
				return v[0]
			}
		}
		return ""
	}

	return withFallbackTitle(&TrackInfo{
		Path:   path,
		Title:  get(taglib.Title),
		Artist: get(taglib.Artist, taglib.AlbumArtist),
		Album:  get(taglib.Album),
		Year:   leadingInt(get(taglib.Date)),
		Track:  leadingInt(get(taglib.TrackNumber)),
	}), nil
}

// leadingInt parses the number at the start of s, as in "2024-05-01" or
// "5/12". It returns 0 when there is none.
func leadingInt(s string) int {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, _ := strconv.Atoi(s[:end])
	return n
}
