// package snapshot defines the portable on-disk representation of a Spotify
// library and the codec that reads and writes it.
//
// The format is plain JSON so exported data stays inspectable and editable by
// hand. Identity fields (id, uri) drive replay into another account; the
// remaining fields are display metadata carried for human readers of the file.
package snapshot

import "time"

// ArtistRef is a track artist as captured at export time.
type ArtistRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// AlbumRef is a track album as captured at export time.
type AlbumRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// TrackRef is one track in a snapshot.
type TrackRef struct {
	ID      string      `json:"id"`
	Name    string      `json:"name,omitempty"`
	URI     string      `json:"uri"`
	Artists []ArtistRef `json:"artists,omitempty"`
	Album   *AlbumRef   `json:"album,omitempty"`
}

// Replayable reports whether the track carries enough identity to be written
// back into an account. Local files and catalog-removed tracks do not.
func (t TrackRef) Replayable() bool {
	return t.ID != "" || t.URI != ""
}

// PlaylistRecord is one playlist in a snapshot.
//
// SourceID is the playlist's id in the account it was exported from. It is
// never reused on import; replay always creates a fresh playlist.
type PlaylistRecord struct {
	SourceID    string     `json:"id"`
	Name        string     `json:"name"`
	Public      bool       `json:"public"`
	Description string     `json:"description,omitempty"`
	Tracks      []TrackRef `json:"tracks"`
}

// TrackCount returns the number of tracks recorded for the playlist.
func (p PlaylistRecord) TrackCount() int {
	return len(p.Tracks)
}

// Snapshot is a full captured library: every playlist plus the liked songs
// collection, in the order the source account returned them.
type Snapshot struct {
	OwnerID    string           `json:"owner_id,omitempty"`
	ExportedAt time.Time        `json:"exported_at,omitempty"`
	Playlists  []PlaylistRecord `json:"playlists"`
	LikedSongs []TrackRef       `json:"liked_songs"`
}

// New returns an empty snapshot stamped with the owner and the current time.
func New(ownerID string) *Snapshot {
	return &Snapshot{
		OwnerID:    ownerID,
		ExportedAt: time.Now().UTC(),
		Playlists:  []PlaylistRecord{},
		LikedSongs: []TrackRef{},
	}
}

// TotalTracks returns the number of playlist tracks across all playlists.
func (s *Snapshot) TotalTracks() int {
	total := 0
	for _, p := range s.Playlists {
		total += len(p.Tracks)
	}
	return total
}

// Empty reports whether the snapshot holds no playlists and no liked songs.
func (s *Snapshot) Empty() bool {
	return len(s.Playlists) == 0 && len(s.LikedSongs) == 0
}
