package domain

import (
	"errors"
	"testing"
)

func TestPathConstructors(t *testing.T) {
	p, err := SessionMessagesPath("key1", "sess1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != "messages/key1/sess1" {
		t.Fatalf("unexpected path %s", p)
	}
	parent, ok := p.Parent()
	if !ok || parent != "messages/key1" {
		t.Fatalf("unexpected parent %s", parent)
	}
	if p.Last() != "sess1" {
		t.Fatalf("unexpected last segment %s", p.Last())
	}
}

func TestPathRejectsBadSegments(t *testing.T) {
	for _, segs := range [][]string{{"sessions", ""}, {"sessions", "a/b"}, {}} {
		if _, err := Join(segs...); !errors.Is(err, ErrInvalidPath) {
			t.Fatalf("expected ErrInvalidPath for %q, got %v", segs, err)
		}
	}
}

func TestPathRelated(t *testing.T) {
	app := Path("messages/key1")
	sess := Path("messages/key1/s1")
	other := Path("messages/key10")

	if !sess.Related(app) || !app.Related(sess) {
		t.Fatalf("ancestor and descendant must be related")
	}
	if other.Related(app) {
		t.Fatalf("sibling with shared prefix must not be related")
	}
}

func TestFlatten(t *testing.T) {
	children, err := Flatten([]byte(`{"b":{"x":1},"a":{"x":2}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(children) != 2 || children[0].ID != "a" || children[1].ID != "b" {
		t.Fatalf("unexpected order: %+v", children)
	}

	for _, raw := range []string{"", "null", "  "} {
		children, err := Flatten([]byte(raw))
		if err != nil || children == nil || len(children) != 0 {
			t.Fatalf("expected empty for %q, got %+v, %v", raw, children, err)
		}
	}

	if _, err := Flatten([]byte(`[1,2]`)); !errors.Is(err, ErrMalformedSubtree) {
		t.Fatalf("expected ErrMalformedSubtree, got %v", err)
	}
}
