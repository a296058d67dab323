package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	FetchProfile Phase = iota
	FetchPlaylists
	FetchTracks
	FetchLiked
	WriteSnapshot
	ReadSnapshot
	ReplayPlaylists
	ReplayLiked
	RemovePlaylists
	RemoveLiked
)

func (p Phase) String() string {
	switch p {
	case FetchProfile:
		return "fetch_profile"
	case FetchPlaylists:
		return "fetch_playlists"
	case FetchTracks:
		return "fetch_tracks"
	case FetchLiked:
		return "fetch_liked"
	case WriteSnapshot:
		return "write_snapshot"
	case ReadSnapshot:
		return "read_snapshot"
	case ReplayPlaylists:
		return "replay_playlists"
	case ReplayLiked:
		return "replay_liked"
	case RemovePlaylists:
		return "remove_playlists"
	case RemoveLiked:
		return "remove_liked"
	default:
		return ""
	}
}

func fetchProfileUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchProfile,
		Step:    1,
		Total:   1,
		Message: "Fetching account profile...",
	}
}

func fetchPlaylistsUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylists,
		Step:    1,
		Total:   1,
		Message: "Listing playlists...",
	}
}

func fetchTracksUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching tracks (%s)...", name),
	}
}

func fetchLikedUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLiked,
		Step:    1,
		Total:   1,
		Message: "Fetching liked songs...",
	}
}

func writeSnapshotUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteSnapshot,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Writing snapshot (%s)...", path),
	}
}

func readSnapshotUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadSnapshot,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Reading snapshot (%s)...", path),
	}
}

func replayPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReplayPlaylists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Creating playlist (%s)...", name),
	}
}

func replayLikedUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReplayLiked,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Saving %d liked songs...", count),
	}
}

func removePlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RemovePlaylists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Removing playlist (%s)...", name),
	}
}

func removeLikedUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RemoveLiked,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Removing %d liked songs...", count),
	}
}
