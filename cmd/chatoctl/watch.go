package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	convDomain "chato-dashboard/internal/conversations/core/domain"
	convUsecase "chato-dashboard/internal/conversations/core/usecase"
	"chato-dashboard/internal/identity/adapters/anonjwt"
	identityUsecase "chato-dashboard/internal/identity/core/usecase"
	"chato-dashboard/internal/platform/logger"
	rtRedis "chato-dashboard/internal/realtime/adapters/redis"
	rtPorts "chato-dashboard/internal/realtime/core/ports"
	rtUsecase "chato-dashboard/internal/realtime/core/usecase"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	closedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42")).
		Bold(true)
)

var watchCmd = &cobra.Command{
	Use:   "watch <apiKey>...",
	Short: "Print aggregate snapshots of applications as they change",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := rtRedis.NewStore(redisURL, keyPrefix)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		bootstrapper := identityUsecase.NewBootstrapper(
			anonjwt.NewIssuer(cfg.Identity.Secret, cfg.Identity.TTL),
			logger.Component(root, "identity"),
		)
		if _, err := bootstrapper.EnsureReady(ctx); err != nil {
			return err
		}

		subscriber := rtUsecase.NewSubscriber(store, bootstrapper, logger.Component(root, "realtime"))
		aggregator := convUsecase.NewAggregator(subscriber, convUsecase.SystemClock(), cfg.Realtime.Debounce, logger.Component(root, "aggregator"))

		snaps := make(chan convDomain.Snapshot, 16)
		var unsubs []rtPorts.Unsubscribe
		defer func() {
			for _, u := range unsubs {
				u()
			}
		}()
		for _, apiKey := range args {
			unsub, err := aggregator.Open(ctx, apiKey, func(s convDomain.Snapshot) {
				select {
				case snaps <- s:
				case <-ctx.Done():
				}
			})
			if err != nil {
				return fmt.Errorf("watch %s: %w", apiKey, err)
			}
			unsubs = append(unsubs, unsub)
		}

		for {
			select {
			case <-ctx.Done():
				return nil
			case s := <-snaps:
				fmt.Println(renderSnapshot(s, time.Now()))
			}
		}
	},
}

func renderSnapshot(s convDomain.Snapshot, now time.Time) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(s.APIKey))
	fmt.Fprintf(&b, " %s sessions, %s active, %s unread  %s\n",
		countStyle.Render(fmt.Sprint(s.SessionsCount)),
		countStyle.Render(fmt.Sprint(s.ActiveCount)),
		countStyle.Render(fmt.Sprint(s.Unread)),
		idStyle.Render(now.Format(time.TimeOnly)),
	)
	fmt.Fprintf(&b, "  last 7 days: %v\n", s.MessagesByDay)
	for _, sess := range s.Sessions {
		line := fmt.Sprintf("  %s unread=%d %q", idStyle.Render(sess.ID), sess.UnreadOwner, sess.LastText)
		if !sess.IsActive() {
			line = closedStyle.Render(line + " (closed)")
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
