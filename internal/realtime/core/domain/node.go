package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

var ErrMalformedSubtree = errors.New("malformed subtree")

// Child is one keyed entry of a subtree, value left undecoded.
type Child struct {
	ID    string
	Value json.RawMessage
}

// Fields decodes the child as an object. A non-object value yields nil.
func (c Child) Fields() map[string]any {
	var m map[string]any
	if err := json.Unmarshal(c.Value, &m); err != nil {
		return nil
	}
	return m
}

// Flatten turns a subtree value into its keyed children ordered by key.
// Push ids sort in creation order, so key order is the store's natural order.
// An empty or null value is zero children.
func Flatten(raw []byte) ([]Child, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []Child{}, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSubtree, err)
	}

	children := make([]Child, 0, len(obj))
	for id, v := range obj {
		children = append(children, Child{ID: id, Value: v})
	}
	sort.Slice(children, func(i, j int) bool { return children[i].ID < children[j].ID })
	return children, nil
}
