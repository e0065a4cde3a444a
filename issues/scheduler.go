package issues

import (
	"context"
	"time"

	"github.com/discordplays/nationstates/helpers"
	"github.com/discordplays/nationstates/metrics"
	"github.com/getsentry/raven-go"
)

// WaitUntilNextIssue computes the time remaining until the next
// fixed-phase cycle slot: the schedule is anchored to UTC midnight
// plus the configured offset and repeats every BetweenIssues. Each
// wait is derived from the wall clock, so a slow cycle delays at most
// itself and drift never accumulates.
func (a *Answerer) WaitUntilNextIssue(now time.Time) time.Duration {
	now = now.UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	sinceFirst := now.Sub(midnight.Add(a.config.FirstIssueOffset))
	sinceLast := sinceFirst % a.config.BetweenIssues
	if sinceLast < 0 {
		sinceLast += a.config.BetweenIssues
	}
	return a.config.BetweenIssues - sinceLast
}

// Run executes issue cycles on the fixed schedule until ctx is
// cancelled. A failing cycle is logged and reported in-channel, never
// propagated; the loop outlives any single bad cycle.
func (a *Answerer) Run(ctx context.Context) {
	log := a.log()
	for {
		wait := a.WaitUntilNextIssue(a.now())
		log.Debugf("sleeping %s until the next issue cycle", wait)

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		if err := a.Cycle(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			metrics.CycleErrors.Add(1)
			log.WithError(err).Error("issue cycle failed")
			raven.CaptureError(err, map[string]string{"nation": a.config.Nation})
			a.reportCycleError(ctx, err)
		}
	}
}

func (a *Answerer) reportCycleError(ctx context.Context, cycleErr error) {
	content := "Issue cycle error: `" + cycleErr.Error() + "` " + helpers.MentionUser(a.config.OwnerID)
	if _, err := a.channel.Send(ctx, content, nil); err != nil {
		a.log().WithError(err).Warn("failed to report the cycle error in-channel")
	}
}
