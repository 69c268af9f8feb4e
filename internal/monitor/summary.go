package monitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ThePeze/BershkaStockMonitor/internal/notify"
	logx "github.com/ThePeze/BershkaStockMonitor/pkg/logx"
)

// Summary renders the last confirmed picture of every tracked size plus
// any products currently in error backoff. It runs on the cron goroutine,
// so it reads under the scheduler's lock and only uses the non-creating
// Lookup accessors: the polling loop marshals the document outside the
// lock and must never see the maps change underneath it.
func (s *Scheduler) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return "📋 Stock monitor status: starting up, no state yet"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 Stock monitor status — %s\n", s.clock.Now().Format(messageTimeFormat))

	for _, p := range s.products {
		ps := s.doc.Lookup(p.ProductID)
		fmt.Fprintf(&b, "\n%s", p.Title)
		if ps != nil && ps.ErrorCount > 0 {
			fmt.Fprintf(&b, " (fetch errors: %d)", ps.ErrorCount)
		}
		b.WriteString("\n")
		for _, c := range p.Checks {
			rec := ps.Lookup(c.SizeID)
			switch {
			case rec == nil:
				fmt.Fprintf(&b, "  ⏳ %s: no data yet\n", c.SizeLabel)
			case rec.LastEmitted != nil:
				emoji, label := banner(*rec.LastEmitted)
				fmt.Fprintf(&b, "  %s %s: %s\n", emoji, c.SizeLabel, label)
			case rec.LastSeen != nil:
				fmt.Fprintf(&b, "  ⏳ %s: unconfirmed (%s, streak %d)\n", c.SizeLabel, rec.LastSeen.Status, rec.SeenStreak)
			default:
				fmt.Fprintf(&b, "  ⏳ %s: no data yet\n", c.SizeLabel)
			}
		}
	}
	return b.String()
}

// StartSummary schedules a periodic status summary over the notifier.
// The returned cron is already started; stop it on shutdown.
func StartSummary(ctx context.Context, s *Scheduler, n notify.Notifier, log logx.Logger, spec string) (*cron.Cron, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		sctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := n.Send(sctx, s.Summary()); err != nil {
			log.Warn("summary delivery failed", logx.Err(err))
		} else {
			log.Info("summary sent")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("summary schedule %q: %w", spec, err)
	}
	c.Start()
	return c, nil
}
