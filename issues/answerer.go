// Package issues implements the issue-answering job: posting open
// NationStates issues to a discord channel, collecting votes via
// reactions and answering issues with the winning option.
//
// All durable state lives in the game and in the channel's own
// message history; a cycle re-derives its intent from both on every
// run, which makes re-running after a partial failure safe.
package issues

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/discordplays/nationstates/cache"
	"github.com/discordplays/nationstates/emojis"
	"github.com/discordplays/nationstates/helpers"
	"github.com/discordplays/nationstates/metrics"
	"github.com/discordplays/nationstates/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// backlogThreshold is the queued-issue count at or above which a
	// posted issue is closed eagerly instead of collecting more votes
	backlogThreshold = 4

	// historyLimit bounds the channel scan per cycle
	historyLimit = 50

	// recencyWindow keeps the scan from acting on ancient stale posts
	recencyWindow = 48 * time.Hour
)

// Answerer runs the issue cycle for one nation in one channel.
// Cycles are serialized internally, so command handlers may force a
// cycle while the scheduled Run loop is active.
type Answerer struct {
	config  models.JobConfig
	game    GameClient
	channel Channel
	rng     *rand.Rand
	now     func() time.Time

	// cycleMu ensures no two reconciliation passes interleave; it
	// also guards rng, which is only used while closing an issue
	cycleMu sync.Mutex
}

// NewAnswerer builds a job from its immutable configuration and the
// external collaborators it drives
func NewAnswerer(config models.JobConfig, game GameClient, channel Channel) *Answerer {
	return &Answerer{
		config:  config,
		game:    game,
		channel: channel,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		now:     time.Now,
	}
}

// Config returns the job's immutable configuration
func (a *Answerer) Config() models.JobConfig {
	return a.config
}

// Info returns the nation's display blurb
func (a *Answerer) Info(ctx context.Context) (string, error) {
	return a.game.Description(ctx)
}

// Countdown renders the time remaining until the next scheduled cycle
func (a *Answerer) Countdown() string {
	return helpers.CountdownString(a.WaitUntilNextIssue(a.now()))
}

func (a *Answerer) log() *logrus.Entry {
	return cache.GetLogger().WithField("module", "issues").WithField("nation", a.config.Nation)
}

// Cycle reconciles the channel against the nation's live issue set:
// stale posts are replaced, over-queued issues are closed with the
// winning option, unposted issues are posted, and exactly one issue
// is left open as the next one to vote on.
func (a *Answerer) Cycle(ctx context.Context) error {
	a.cycleMu.Lock()
	defer a.cycleMu.Unlock()

	log := a.log()

	live, err := a.game.Issues(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to fetch issues")
	}
	if len(live) == 0 {
		_, err = a.channel.Send(ctx, "Nation has no issues.", nil)
		return err
	}

	// pending doubles as "issues not yet accounted for" during the scan
	pending := pendingByMarker(live)
	handled := make(map[string]bool)

	history, err := a.channel.History(ctx, historyLimit)
	if err != nil {
		return errors.Wrap(err, "failed to read channel history")
	}

	cutoff := a.now().Add(-recencyWindow)
	botID := a.channel.BotUserID()

	var next *models.Issue
	var nextMessage *discordgo.Message

	for _, message := range history {
		// history is newest first, everything from here on is older still
		if message.Timestamp.Before(cutoff) {
			break
		}
		if message.Author == nil || message.Author.ID != botID {
			continue
		}
		issue, ok := pending[message.Content]
		if !ok || handled[message.Content] {
			continue
		}
		handled[message.Content] = true
		delete(pending, message.Content)

		if !reactionsMatchBallot(message, issue) {
			// The option set changed upstream. The post and every vote
			// on it are void; the issue falls through to the posting
			// phase as if it was never posted.
			log.Infof("options of issue #%d changed, replacing the stale post", issue.ID)
			metrics.StaleIssuePosts.Add(1)
			if err := a.channel.Delete(ctx, message.ID); err != nil {
				return errors.Wrapf(err, "failed to delete stale post of issue #%d", issue.ID)
			}
			notice := fmt.Sprintf("The options of issue #%d changed, starting its vote over.", issue.ID)
			if _, err := a.channel.Send(ctx, notice, nil); err != nil {
				return err
			}
			handled[message.Content] = false
			pending[message.Content] = issue
			continue
		}

		if len(pending) >= backlogThreshold {
			if err := a.closeIssue(ctx, message, issue); err != nil {
				return err
			}
			// Closing an issue changes the live set; rebuild the
			// bookkeeping and keep scanning from where we are.
			live, err = a.game.Issues(ctx)
			if err != nil {
				return errors.Wrap(err, "failed to refresh issues after closing")
			}
			pending = pendingByMarker(live)
			for marker, done := range handled {
				if done {
					delete(pending, marker)
				}
			}
			continue
		}

		if next == nil {
			issueCopy := issue
			next = &issueCopy
			nextMessage = message
		}
	}

	// Anything still pending has no valid post. The nation flag is
	// fetched lazily, once, only when something must be posted.
	var flagURL string
	for _, issue := range live {
		if _, ok := pending[issue.Marker()]; !ok {
			continue
		}
		if flagURL == "" {
			flagURL, err = a.game.Flag(ctx)
			if err != nil {
				return errors.Wrap(err, "failed to fetch the nation flag")
			}
		}
		if err := a.openIssue(ctx, issue, flagURL); err != nil {
			return err
		}
		delete(pending, issue.Marker())
		if next == nil {
			issueCopy := issue
			next = &issueCopy
		}
	}

	wait := a.WaitUntilNextIssue(a.now())
	var nextEmbed *discordgo.MessageEmbed
	if next != nil {
		nextEmbed = &discordgo.MessageEmbed{
			Title:       next.Title,
			Description: helpers.HTMLToMarkdown(next.Text),
			Color:       issueOpenColour,
		}
	}
	if _, err := a.channel.Send(ctx, helpers.CountdownString(wait), nextEmbed); err != nil {
		return err
	}
	metrics.CyclesRun.Add(1)

	if next == nil {
		log.Error("no next issue could be established after posting")
		_, err := a.channel.Send(ctx,
			"Could not line up a next issue to vote on "+helpers.MentionUser(a.config.OwnerID)+"!", nil)
		return err
	}

	if nextMessage != nil && !hasHumanVotes(nextMessage) {
		_, err := a.channel.Send(ctx,
			"There are no votes yet "+helpers.MentionUser(a.config.OwnerID)+"!", nil)
		return err
	}
	return nil
}

// closeIssue tallies the vote on a posted issue, resolves ties and
// accepts the winning option on the nation
func (a *Answerer) closeIssue(ctx context.Context, message *discordgo.Message, issue models.Issue) error {
	counts, err := Tally(message, issue)
	if err != nil {
		return err
	}
	tied := WinningOptions(counts)

	votersByEmoji := make(map[string][]string, len(tied))
	if len(tied) > 1 {
		for _, candidate := range tied {
			voters, err := a.channel.ReactionUsers(ctx, message.ID, candidate.Emoji)
			if err != nil {
				return errors.Wrapf(err, "failed to fetch voters of %s on issue #%d", candidate.Emoji, issue.ID)
			}
			votersByEmoji[candidate.Emoji] = voters
		}
	}
	winner := ResolveTie(tied, votersByEmoji, a.config.OwnerID, a.rng)

	a.log().Infof("closing issue #%d with option %d (%d votes)",
		issue.ID, winner.Option.Index, winner.Count)
	result, err := a.game.AcceptOption(ctx, issue.ID, winner.Option)
	if err != nil {
		return errors.Wrapf(err, "failed to accept option %d of issue #%d", winner.Option.Index, issue.ID)
	}
	metrics.IssuesClosed.Add(1)

	return a.postResult(ctx, issue, winner.Option, result)
}

func pendingByMarker(live []models.Issue) map[string]models.Issue {
	pending := make(map[string]models.Issue, len(live))
	for _, issue := range live {
		pending[issue.Marker()] = issue
	}
	return pending
}

// reactionsMatchBallot reports whether the bot's own reactions on a
// posted message cover the issue's current ballot exactly. A set
// mismatch means the option set changed upstream; duplicate reactions
// are corruption, left for the tally to reject as a hard failure.
func reactionsMatchBallot(message *discordgo.Message, issue models.Issue) bool {
	required := emojis.ForIssue(len(issue.Options))
	mine := make(map[string]bool)
	for _, reaction := range message.Reactions {
		if reaction.Me {
			mine[reaction.Emoji.Name] = true
		}
	}
	if len(mine) != len(required) {
		return false
	}
	for _, emoji := range required {
		if !mine[emoji] {
			return false
		}
	}
	return true
}

// hasHumanVotes reports whether anyone besides the bot reacted
func hasHumanVotes(message *discordgo.Message) bool {
	for _, reaction := range message.Reactions {
		if reaction.Me && reaction.Count > 1 {
			return true
		}
	}
	return false
}
