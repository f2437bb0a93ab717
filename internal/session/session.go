package session

import (
	"sync"
	"time"

	"github.com/code-100-precent/LingMeme/internal/editor"
)

// Session is one live editor. All access goes through Do, which serializes HTTP
// handlers and WebSocket pumps working on the same editor.
type Session struct {
	ID        string
	CreatedAt time.Time

	// touch 刷新注册表中的滑动过期时间
	touch func()

	mu       sync.Mutex
	editor   *editor.Editor
	lastSeen time.Time
}

func newSession(id string, ed *editor.Editor, now time.Time) *Session {
	return &Session{ID: id, CreatedAt: now, editor: ed, lastSeen: now}
}

// Do runs fn with exclusive access to the editor. Every call counts as activity
// and extends the session's idle timeout.
func (s *Session) Do(fn func(ed *editor.Editor) error) error {
	if s.touch != nil {
		s.touch()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	return fn(s.editor)
}

// LastSeen 最近一次访问时间
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Snapshot returns the editor state under the lock
func (s *Session) Snapshot() editor.State {
	var st editor.State
	_ = s.Do(func(ed *editor.Editor) error {
		st = ed.Snapshot()
		return nil
	})
	return st
}
