package main

import (
	"context"
	"fmt"
	"os"

	rtRedis "chato-dashboard/internal/realtime/adapters/redis"
	rtDomain "chato-dashboard/internal/realtime/core/domain"
	rtPorts "chato-dashboard/internal/realtime/core/ports"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var seedFile string

// Fixture is the YAML layout read by seed.
//
//	apps:
//	  - apiKey: shop
//	    sessions:
//	      - id: s1
//	        status: open
//	        updatedAt: 1760000000000
//	        unreadOwner: 1
//	        lastMessageText: hi
//	        messages:
//	          - {id: m1, from: customer, text: hi, at: 1760000000000}
type Fixture struct {
	Apps []FixtureApp `yaml:"apps"`
}

type FixtureApp struct {
	APIKey   string           `yaml:"apiKey"`
	Sessions []FixtureSession `yaml:"sessions"`
}

type FixtureSession struct {
	ID              string           `yaml:"id"`
	Status          string           `yaml:"status"`
	UpdatedAt       int64            `yaml:"updatedAt"`
	UnreadOwner     int              `yaml:"unreadOwner"`
	LastMessageText string           `yaml:"lastMessageText"`
	LastMessageAt   int64            `yaml:"lastMessageAt"`
	Messages        []FixtureMessage `yaml:"messages"`
}

type FixtureMessage struct {
	ID   string `yaml:"id"`
	From string `yaml:"from"`
	Text string `yaml:"text"`
	At   int64  `yaml:"at"`
}

type seedResult struct {
	Sessions int
	Messages int
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write sessions and messages from a YAML fixture",
	RunE: func(cmd *cobra.Command, args []string) error {
		if seedFile == "" {
			return fmt.Errorf("--file is required")
		}
		raw, err := os.ReadFile(seedFile)
		if err != nil {
			return fmt.Errorf("read fixture: %w", err)
		}
		fx, err := parseFixture(raw)
		if err != nil {
			return err
		}

		store, err := rtRedis.NewStore(redisURL, keyPrefix)
		if err != nil {
			return err
		}
		defer store.Close()

		res, err := seed(cmd.Context(), store, fx)
		if err != nil {
			return err
		}
		fmt.Println(okStyle.Render(fmt.Sprintf("seeded %d sessions, %d messages across %d apps", res.Sessions, res.Messages, len(fx.Apps))))
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML fixture to load")
}

func parseFixture(raw []byte) (Fixture, error) {
	var fx Fixture
	if err := yaml.Unmarshal(raw, &fx); err != nil {
		return Fixture{}, fmt.Errorf("parse fixture: %w", err)
	}
	for _, app := range fx.Apps {
		if app.APIKey == "" {
			return Fixture{}, fmt.Errorf("parse fixture: app without apiKey")
		}
		for _, s := range app.Sessions {
			if s.ID == "" {
				return Fixture{}, fmt.Errorf("parse fixture: session without id in %s", app.APIKey)
			}
		}
	}
	return fx, nil
}

// seed writes each session to sessions/<apiKey>/<id> and each message to
// messages/<apiKey>/<sessionId>/<id>.
func seed(ctx context.Context, w rtPorts.WriterPort, fx Fixture) (seedResult, error) {
	var res seedResult
	for _, app := range fx.Apps {
		for _, s := range app.Sessions {
			path, err := rtDomain.Join("sessions", app.APIKey, s.ID)
			if err != nil {
				return res, err
			}
			if err := w.Set(ctx, path, sessionRecord(s)); err != nil {
				return res, fmt.Errorf("write session %s: %w", path, err)
			}
			res.Sessions++

			if len(s.Messages) == 0 {
				continue
			}
			msgs, err := rtDomain.SessionMessagesPath(app.APIKey, s.ID)
			if err != nil {
				return res, err
			}
			fields := make(map[string]any, len(s.Messages))
			for i, m := range s.Messages {
				id := m.ID
				if id == "" {
					id = fmt.Sprintf("m%03d", i)
				}
				fields[id] = map[string]any{"from": m.From, "text": m.Text, "at": m.At}
			}
			if err := w.Update(ctx, msgs, fields); err != nil {
				return res, fmt.Errorf("write messages %s: %w", msgs, err)
			}
			res.Messages += len(fields)
		}
	}
	return res, nil
}

func sessionRecord(s FixtureSession) map[string]any {
	rec := map[string]any{
		"updatedAt":   s.UpdatedAt,
		"unreadOwner": s.UnreadOwner,
	}
	if s.Status != "" {
		rec["status"] = s.Status
	}
	if s.LastMessageText != "" {
		rec["lastMessageText"] = s.LastMessageText
	}
	if s.LastMessageAt != 0 {
		rec["lastMessageAt"] = s.LastMessageAt
	}
	return rec
}
