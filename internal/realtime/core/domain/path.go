package domain

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidPath = errors.New("invalid realtime path")

const (
	sessionsRoot = "sessions"
	messagesRoot = "messages"
)

// Path is a slash separated location in the realtime tree, e.g.
// "sessions/<apiKey>" or "messages/<apiKey>/<sessionId>".
type Path string

// SessionsPath is the subtree of session records of one app.
func SessionsPath(apiKey string) (Path, error) {
	return Join(sessionsRoot, apiKey)
}

// AppMessagesPath is the subtree sessionId -> messageId -> message of one app.
func AppMessagesPath(apiKey string) (Path, error) {
	return Join(messagesRoot, apiKey)
}

// SessionMessagesPath is the subtree messageId -> message of one session.
func SessionMessagesPath(apiKey, sessionID string) (Path, error) {
	return Join(messagesRoot, apiKey, sessionID)
}

// Join builds a path from segments. Segments must be non-empty and must not
// contain '/'.
func Join(segments ...string) (Path, error) {
	if len(segments) == 0 {
		return "", ErrInvalidPath
	}
	for _, s := range segments {
		if s == "" || strings.Contains(s, "/") {
			return "", fmt.Errorf("%w: segment %q", ErrInvalidPath, s)
		}
	}
	return Path(strings.Join(segments, "/")), nil
}

// Parse validates an already joined path.
func Parse(raw string) (Path, error) {
	return Join(strings.Split(strings.Trim(raw, "/"), "/")...)
}

func (p Path) Segments() []string {
	if p == "" {
		return nil
	}
	return strings.Split(string(p), "/")
}

func (p Path) String() string { return string(p) }

// Child appends one segment.
func (p Path) Child(segment string) (Path, error) {
	return Join(append(p.Segments(), segment)...)
}

// Parent returns the enclosing path and false for a root segment.
func (p Path) Parent() (Path, bool) {
	i := strings.LastIndexByte(string(p), '/')
	if i < 0 {
		return "", false
	}
	return p[:i], true
}

// Last is the final segment, i.e. the key of the node inside its parent.
func (p Path) Last() string {
	segs := p.Segments()
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}

// IsWithin reports whether p equals other or lies below it.
func (p Path) IsWithin(other Path) bool {
	if p == other {
		return true
	}
	return strings.HasPrefix(string(p), string(other)+"/")
}

// Related reports whether a write at p can change the value seen at other:
// either one contains the other.
func (p Path) Related(other Path) bool {
	return p.IsWithin(other) || other.IsWithin(p)
}
