package session

import (
	"slices"
	"time"

	"github.com/poiesic/advisor/core"
)

// Session is a point-in-time copy of one conversation's state.
type Session struct {
	ID string

	// Messages holds the remembered turns, oldest first.
	Messages []core.Turn

	LastAccess time.Time

	// MentionedCourses is ordered by most recent mention, last element newest.
	MentionedCourses []core.CourseID

	StudentLevel core.Level

	// TranscriptCourses and CompletedCourses are sorted.
	TranscriptCourses []core.CourseID
	CompletedCourses  []core.CourseID
}

// LastMentioned returns the most recently mentioned course.
func (s *Session) LastMentioned() (core.CourseID, bool) {
	if s == nil || len(s.MentionedCourses) == 0 {
		return "", false
	}
	return s.MentionedCourses[len(s.MentionedCourses)-1], true
}

// Level returns the session's student level, undergraduate for a nil session.
func (s *Session) Level() core.Level {
	if s == nil || s.StudentLevel == 0 {
		return core.LevelUndergraduate
	}
	return s.StudentLevel
}

// state is the mutable record held in the cache.
type state struct {
	id         string
	history    *history
	mentioned  []core.CourseID
	level      core.Level
	transcript map[core.CourseID]struct{}
	completed  map[core.CourseID]struct{}
	lastAccess time.Time
}

func newState(id string, historyLimit int, now time.Time) *state {
	return &state{
		id:         id,
		history:    newHistory(historyLimit),
		level:      core.LevelUndergraduate,
		transcript: make(map[core.CourseID]struct{}),
		completed:  make(map[core.CourseID]struct{}),
		lastAccess: now,
	}
}

// mention moves each course to the end of the mentioned list, appending new ones.
func (s *state) mention(courses []core.CourseID) {
	for _, c := range courses {
		if i := slices.Index(s.mentioned, c); i >= 0 {
			s.mentioned = slices.Delete(s.mentioned, i, i+1)
		}
		s.mentioned = append(s.mentioned, c)
	}
}

func (s *state) snapshot() *Session {
	return &Session{
		ID:                s.id,
		Messages:          s.history.turns(),
		LastAccess:        s.lastAccess,
		MentionedCourses:  slices.Clone(s.mentioned),
		StudentLevel:      s.level,
		TranscriptCourses: sortedCourses(s.transcript),
		CompletedCourses:  sortedCourses(s.completed),
	}
}

func sortedCourses(set map[core.CourseID]struct{}) []core.CourseID {
	if len(set) == 0 {
		return nil
	}
	out := make([]core.CourseID, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// history is a fixed-capacity ring of turns; appending to a full ring
// overwrites the oldest turn.
type history struct {
	buf   []core.Turn
	start int
	count int
}

func newHistory(limit int) *history {
	return &history{buf: make([]core.Turn, limit)}
}

func (h *history) append(t core.Turn) {
	if len(h.buf) == 0 {
		return
	}
	if h.count < len(h.buf) {
		h.buf[(h.start+h.count)%len(h.buf)] = t
		h.count++
		return
	}
	h.buf[h.start] = t
	h.start = (h.start + 1) % len(h.buf)
}

func (h *history) turns() []core.Turn {
	if h.count == 0 {
		return nil
	}
	out := make([]core.Turn, h.count)
	for i := range out {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}
