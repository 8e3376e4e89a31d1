package playback

// Track is a single playable audio item. URI is its identity.
// A loaded Track is never modified; replacing it requires a new Load.
type Track struct {
	URI        string
	Title      string
	Artist     string
	Album      string
	ArtworkURL string
}
