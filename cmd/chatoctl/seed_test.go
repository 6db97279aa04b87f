package main

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	convDomain "chato-dashboard/internal/conversations/core/domain"
	"chato-dashboard/internal/realtime/adapters/memory"
	rtDomain "chato-dashboard/internal/realtime/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureYAML = `
apps:
  - apiKey: shop
    sessions:
      - id: s1
        status: open
        updatedAt: 200
        unreadOwner: 2
        lastMessageText: hi
        messages:
          - {id: m1, from: customer, text: hi, at: 100}
          - {from: owner, text: hello, at: 150}
      - id: s2
        status: closed
        updatedAt: 100
`

func TestParseFixture(t *testing.T) {
	fx, err := parseFixture([]byte(fixtureYAML))
	require.NoError(t, err)
	require.Len(t, fx.Apps, 1)
	assert.Equal(t, "shop", fx.Apps[0].APIKey)
	assert.Len(t, fx.Apps[0].Sessions, 2)
	assert.Equal(t, "hello", fx.Apps[0].Sessions[0].Messages[1].Text)
}

func TestParseFixture_RejectsMissingKeys(t *testing.T) {
	_, err := parseFixture([]byte("apps:\n  - sessions: []\n"))
	assert.Error(t, err)

	_, err = parseFixture([]byte("apps:\n  - apiKey: a\n    sessions:\n      - status: open\n"))
	assert.Error(t, err)
}

func TestSeed_WritesSessionsAndMessages(t *testing.T) {
	fx, err := parseFixture([]byte(fixtureYAML))
	require.NoError(t, err)

	store := memory.NewStore()
	res, err := seed(context.Background(), store, fx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Sessions)
	assert.Equal(t, 2, res.Messages)

	raw, err := store.Get(rtDomain.Path("sessions/shop/s1"))
	require.NoError(t, err)
	var sess map[string]any
	require.NoError(t, json.Unmarshal(raw, &sess))
	assert.Equal(t, "hi", sess["lastMessageText"])
	assert.EqualValues(t, 2, sess["unreadOwner"])

	raw, err = store.Get(rtDomain.Path("messages/shop/s1"))
	require.NoError(t, err)
	var msgs map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &msgs))
	assert.Contains(t, msgs, "m1")
	assert.Contains(t, msgs, "m001")
}

func TestRenderSnapshot(t *testing.T) {
	out := renderSnapshot(convDomain.Snapshot{
		APIKey:        "shop",
		SessionsCount: 1,
		Sessions:      []convDomain.Session{{ID: "s1", Status: "closed"}},
	}, time.Unix(0, 0))

	assert.Contains(t, out, "shop")
	assert.Contains(t, out, "s1")
	assert.Contains(t, out, "(closed)")
}
