package activity

import (
	"sort"
	"sync"
	"time"
)

// SnapshotLimit caps how many owner comments one snapshot considers.
const SnapshotLimit = 200

// CommentEvent is one comment as delivered by a live snapshot. CreatedAt is
// kept loosely typed and normalized with NormalizeMillis.
type CommentEvent struct {
	ID          string `json:"id"`
	NoteID      string `json:"note_id"`
	NoteOwnerID string `json:"note_owner_id"`
	NoteTitle   string `json:"note_title"`
	Text        string `json:"text"`
	CreatedAt   any    `json:"created_at"`
}

// Notification is the one-shot banner for the newest comment.
type Notification struct {
	CommentID string `json:"comment_id"`
	NoteID    string `json:"note_id"`
	NoteTitle string `json:"note_title"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"created_at"`
}

// Title is the banner headline.
func (n Notification) Title() string {
	title := n.NoteTitle
	if title == "" {
		title = "your note"
	}
	return "New comment on: " + title
}

type Result struct {
	Unseen       []string      `json:"unseen"`
	Notification *Notification `json:"notification,omitempty"`
}

// UnseenNotes returns, sorted, the notes whose newest comment is strictly
// newer than the note's last-viewed instant (0 when absent).
func UnseenNotes(comments []CommentEvent, lastViewed map[string]int64) []string {
	newest := make(map[string]int64)
	for _, c := range comments {
		ms := NormalizeMillis(c.CreatedAt)
		if cur, ok := newest[c.NoteID]; !ok || ms > cur {
			newest[c.NoteID] = ms
		}
	}

	out := make([]string, 0)
	for noteID, ms := range newest {
		if ms > lastViewed[noteID] {
			out = append(out, noteID)
		}
	}
	sort.Strings(out)
	return out
}

// Tracker follows one user's comment activity for the lifetime of a single
// subscription. It is safe for concurrent use.
type Tracker struct {
	userID    string
	startedAt int64

	mu          sync.Mutex
	lastViewed  map[string]int64
	unseen      map[string]struct{}
	lastShownID string
}

// NewTracker captures listeningStartedAt once; comments at or before it never
// produce a notification.
func NewTracker(userID string, listeningStartedAt time.Time) *Tracker {
	return &Tracker{
		userID:     userID,
		startedAt:  NormalizeMillis(listeningStartedAt),
		lastViewed: make(map[string]int64),
		unseen:     make(map[string]struct{}),
	}
}

func (t *Tracker) UserID() string {
	return t.userID
}

// SetLastViewed merges stored last-viewed instants. Entries never move backwards.
func (t *Tracker) SetLastViewed(views map[string]time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for noteID, at := range views {
		t.advance(noteID, NormalizeMillis(at))
	}
}

func (t *Tracker) advance(noteID string, ms int64) int64 {
	if cur := t.lastViewed[noteID]; ms > cur {
		t.lastViewed[noteID] = ms
		return ms
	}
	return t.lastViewed[noteID]
}

// Apply recomputes the unseen set from a newest-first snapshot and decides
// whether its newest comment deserves a notification.
func (t *Tracker) Apply(snapshot []CommentEvent) Result {
	owned := make([]CommentEvent, 0, len(snapshot))
	for _, c := range snapshot {
		if c.NoteOwnerID != t.userID {
			continue
		}
		owned = append(owned, c)
		if len(owned) == SnapshotLimit {
			break
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	ids := UnseenNotes(owned, t.lastViewed)
	t.unseen = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		t.unseen[id] = struct{}{}
	}

	res := Result{Unseen: ids}
	if newest, ms, ok := newestOf(owned); ok && newest.ID != t.lastShownID && ms > t.startedAt {
		t.lastShownID = newest.ID
		res.Notification = &Notification{
			CommentID: newest.ID,
			NoteID:    newest.NoteID,
			NoteTitle: newest.NoteTitle,
			Text:      newest.Text,
			CreatedAt: ms,
		}
	}
	return res
}

// newestOf returns the comment with the greatest createdAt; ties keep the
// earlier element, which is the newer one in a newest-first snapshot.
func newestOf(comments []CommentEvent) (CommentEvent, int64, bool) {
	if len(comments) == 0 {
		return CommentEvent{}, 0, false
	}
	best, bestMs := comments[0], NormalizeMillis(comments[0].CreatedAt)
	for _, c := range comments[1:] {
		if ms := NormalizeMillis(c.CreatedAt); ms > bestMs {
			best, bestMs = c, ms
		}
	}
	return best, bestMs, true
}

// MarkViewed records that the user opened noteID's thread at at and drops the
// note from the unseen set right away. It returns the stored instant.
func (t *Tracker) MarkViewed(noteID string, at time.Time) time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	ms := t.advance(noteID, NormalizeMillis(at))
	delete(t.unseen, noteID)
	return time.UnixMilli(ms)
}

// Unseen returns the current unseen note ids, sorted.
func (t *Tracker) Unseen() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.unseen))
	for id := range t.unseen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// IsUnseen reports whether noteID currently has unread activity.
func (t *Tracker) IsUnseen(noteID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.unseen[noteID]
	return ok
}
