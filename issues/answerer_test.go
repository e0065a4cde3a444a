package issues

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/discordplays/nationstates/cache"
	"github.com/discordplays/nationstates/models"
	"github.com/sirupsen/logrus"
)

func TestMain(m *testing.M) {
	log := logrus.New()
	log.Out = io.Discard
	cache.SetLogger(log)
	m.Run()
}

// fakeGame is an in-memory nation whose issue set shrinks as issues
// are accepted. Safe for concurrent use so tests exercising multiple
// callers only race in production code, never in the fake.
type fakeGame struct {
	mu       sync.Mutex
	issues   []models.Issue
	fetches  int
	accepted []acceptedCall
}

type acceptedCall struct {
	issueID int
	option  models.Option
}

func (g *fakeGame) Issues(ctx context.Context) ([]models.Issue, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.fetches++
	issues := make([]models.Issue, len(g.issues))
	copy(issues, g.issues)
	return issues, nil
}

func (g *fakeGame) Flag(ctx context.Context) (string, error) {
	return "https://example.org/flag.png", nil
}

func (g *fakeGame) Description(ctx context.Context) (string, error) {
	return "Testlandia is a Inoffensive Centrist Democracy.", nil
}

func (g *fakeGame) AcceptOption(ctx context.Context, issueID int, option models.Option) (*models.IssueResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.accepted = append(g.accepted, acceptedCall{issueID: issueID, option: option})
	kept := g.issues[:0]
	for _, issue := range g.issues {
		if issue.ID != issueID {
			kept = append(kept, issue)
		}
	}
	g.issues = kept
	return &models.IssueResult{EffectLine: "something changed"}, nil
}

// fakeChannel is an in-memory discord channel, newest message first
type fakeChannel struct {
	mu       sync.Mutex
	messages []*discordgo.Message
	deleted  []string
	voters   map[string]map[string][]string // messageID -> emoji -> user ids
	nextID   int
}

func (c *fakeChannel) Send(ctx context.Context, content string, embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	message := &discordgo.Message{
		ID:        fmt.Sprintf("m%d", c.nextID),
		Content:   content,
		Author:    &discordgo.User{ID: "bot"},
		Timestamp: time.Now(),
	}
	c.messages = append([]*discordgo.Message{message}, c.messages...)
	return message, nil
}

func (c *fakeChannel) History(ctx context.Context, limit int) ([]*discordgo.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.messages) > limit {
		return c.messages[:limit], nil
	}
	history := make([]*discordgo.Message, len(c.messages))
	copy(history, c.messages)
	return history, nil
}

func (c *fakeChannel) Delete(ctx context.Context, messageID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.messages[:0]
	for _, message := range c.messages {
		if message.ID != messageID {
			kept = append(kept, message)
		}
	}
	c.messages = kept
	c.deleted = append(c.deleted, messageID)
	return nil
}

func (c *fakeChannel) React(ctx context.Context, messageID string, emoji string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, message := range c.messages {
		if message.ID == messageID {
			message.Reactions = append(message.Reactions, &discordgo.MessageReactions{
				Emoji: &discordgo.Emoji{Name: emoji},
				Count: 1,
				Me:    true,
			})
			return nil
		}
	}
	return fmt.Errorf("no message %s", messageID)
}

func (c *fakeChannel) ReactionUsers(ctx context.Context, messageID string, emoji string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.voters[messageID][emoji], nil
}

func (c *fakeChannel) BotUserID() string {
	return "bot"
}

// seedPost plants a previously posted issue message with the given
// per-slot reaction counts
func (c *fakeChannel) seedPost(issue models.Issue, counts ...int) *discordgo.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	message := &discordgo.Message{
		ID:        fmt.Sprintf("seed%d", c.nextID),
		Content:   issue.Marker(),
		Author:    &discordgo.User{ID: "bot"},
		Timestamp: time.Now().Add(-time.Hour),
	}
	for slot, count := range counts {
		message.Reactions = append(message.Reactions, botReaction(testEmoji(slot), count))
	}
	c.messages = append([]*discordgo.Message{message}, c.messages...)
	return message
}

func testEmoji(slot int) string {
	return []string{`0⃣`, `1⃣`, `2⃣`, `3⃣`, `4⃣`, `5⃣`}[slot]
}

func newTestAnswerer(t *testing.T, game *fakeGame, channel *fakeChannel) *Answerer {
	t.Helper()
	config, err := models.NewJobConfig("testlandia", "chan", ownerID, 4, 2)
	if err != nil {
		t.Fatalf("NewJobConfig() failed: %v", err)
	}
	answerer := NewAnswerer(config, game, channel)
	answerer.rng = rand.New(rand.NewSource(1))
	answerer.now = func() time.Time {
		return time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	}
	return answerer
}

func issueWithOptions(id, optionCount int) models.Issue {
	issue := models.Issue{
		ID:    id,
		Title: fmt.Sprintf("Issue %d", id),
		Text:  "Something must be done.",
	}
	for i := 0; i < optionCount; i++ {
		issue.Options = append(issue.Options, models.Option{Index: i, Text: "Do the thing."})
	}
	return issue
}

func markerMessages(channel *fakeChannel) []*discordgo.Message {
	var markers []*discordgo.Message
	for _, message := range channel.messages {
		if strings.HasPrefix(message.Content, "Issue #") {
			markers = append(markers, message)
		}
	}
	return markers
}

func findContent(channel *fakeChannel, substring string) *discordgo.Message {
	for _, message := range channel.messages {
		if strings.Contains(message.Content, substring) {
			return message
		}
	}
	return nil
}

func TestCycleNoIssues(t *testing.T) {
	game := &fakeGame{}
	channel := &fakeChannel{}
	answerer := newTestAnswerer(t, game, channel)

	if err := answerer.Cycle(context.Background()); err != nil {
		t.Fatalf("Cycle() failed: %v", err)
	}
	if findContent(channel, "Nation has no issues.") == nil {
		t.Fatalf("Cycle() with no issues did not report that")
	}
	if len(channel.messages) != 1 {
		t.Fatalf("Cycle() with no issues sent %d messages, want 1", len(channel.messages))
	}
}

func TestCyclePostsNewIssues(t *testing.T) {
	game := &fakeGame{issues: []models.Issue{issueWithOptions(1, 2), issueWithOptions(2, 1)}}
	channel := &fakeChannel{}
	answerer := newTestAnswerer(t, game, channel)

	if err := answerer.Cycle(context.Background()); err != nil {
		t.Fatalf("Cycle() failed: %v", err)
	}

	markers := markerMessages(channel)
	if len(markers) != 2 {
		t.Fatalf("Cycle() posted %d issues, want 2", len(markers))
	}
	// newest first: issue 2 was posted after issue 1
	if markers[0].Content != "Issue #2:" || markers[1].Content != "Issue #1:" {
		t.Fatalf("Cycle() posted markers %q and %q", markers[0].Content, markers[1].Content)
	}
	if len(markers[1].Reactions) != 3 {
		t.Fatalf("issue with 2 options got %d reaction slots, want 3", len(markers[1].Reactions))
	}
	if len(markers[0].Reactions) != 2 {
		t.Fatalf("issue with 1 option got %d reaction slots, want 2", len(markers[0].Reactions))
	}

	// at 09:00 UTC with slots every 6h offset by 2h the next slot is 14:00
	if findContent(channel, "sleep 5 hours, 0 minutes, and 0 seconds") == nil {
		t.Fatalf("Cycle() did not report the 5h countdown")
	}
}

func TestCycleIdempotent(t *testing.T) {
	game := &fakeGame{issues: []models.Issue{issueWithOptions(1, 2), issueWithOptions(2, 1)}}
	channel := &fakeChannel{}
	answerer := newTestAnswerer(t, game, channel)

	if err := answerer.Cycle(context.Background()); err != nil {
		t.Fatalf("first Cycle() failed: %v", err)
	}
	if err := answerer.Cycle(context.Background()); err != nil {
		t.Fatalf("second Cycle() failed: %v", err)
	}

	if markers := markerMessages(channel); len(markers) != 2 {
		t.Fatalf("re-running the cycle left %d issue posts, want 2", len(markers))
	}
	if len(game.accepted) != 0 {
		t.Fatalf("re-running the cycle closed %d issues, want 0", len(game.accepted))
	}
	if len(channel.deleted) != 0 {
		t.Fatalf("re-running the cycle deleted %d messages, want 0", len(channel.deleted))
	}
}

func TestCycleReplacesStalePost(t *testing.T) {
	issue := issueWithOptions(1, 2) // ballot needs slots 0, 1, 2
	game := &fakeGame{issues: []models.Issue{issue}}
	channel := &fakeChannel{}
	// posted before the second option appeared upstream; carries votes
	stale := channel.seedPost(issue, 1, 6)
	answerer := newTestAnswerer(t, game, channel)

	if err := answerer.Cycle(context.Background()); err != nil {
		t.Fatalf("Cycle() failed: %v", err)
	}

	if len(channel.deleted) != 1 || channel.deleted[0] != stale.ID {
		t.Fatalf("Cycle() deleted %v, want exactly the stale post %s", channel.deleted, stale.ID)
	}
	if findContent(channel, "starting its vote over") == nil {
		t.Fatalf("Cycle() did not announce the replacement")
	}

	markers := markerMessages(channel)
	if len(markers) != 1 {
		t.Fatalf("Cycle() left %d issue posts, want 1 replacement", len(markers))
	}
	if len(markers[0].Reactions) != 3 {
		t.Fatalf("replacement post got %d reaction slots, want 3", len(markers[0].Reactions))
	}
	for _, reaction := range markers[0].Reactions {
		if reaction.Count != 1 {
			t.Fatalf("replacement post inherited votes: %s has count %d", reaction.Emoji.Name, reaction.Count)
		}
	}
	if len(game.accepted) != 0 {
		t.Fatalf("Cycle() closed the stale issue instead of reposting it")
	}
}

func TestCycleClosesOverdueIssue(t *testing.T) {
	var live []models.Issue
	for id := 1; id <= 5; id++ {
		live = append(live, issueWithOptions(id, 2))
	}
	game := &fakeGame{issues: live}
	channel := &fakeChannel{}
	// oldest first so history ends up newest first
	var posts []*discordgo.Message
	for id := 1; id <= 5; id++ {
		// option slot id%3 carries the single winning vote
		counts := []int{1, 1, 1}
		counts[id%3] = 2
		posts = append(posts, channel.seedPost(live[id-1], counts...))
	}
	answerer := newTestAnswerer(t, game, channel)

	if err := answerer.Cycle(context.Background()); err != nil {
		t.Fatalf("Cycle() failed: %v", err)
	}

	// issue 5 is scanned first with 4 issues still queued behind it
	if len(game.accepted) != 1 {
		t.Fatalf("Cycle() closed %d issues, want 1", len(game.accepted))
	}
	if game.accepted[0].issueID != 5 {
		t.Fatalf("Cycle() closed issue %d, want 5", game.accepted[0].issueID)
	}
	// slot 5%3=2 maps to real option index 1
	if game.accepted[0].option.Index != 1 {
		t.Fatalf("Cycle() accepted option %d, want the 2-vote winner 1", game.accepted[0].option.Index)
	}
	if findContent(channel, "Legislation Passed:") == nil {
		t.Fatalf("Cycle() did not announce the passed legislation")
	}
	if len(game.issues) != 4 {
		t.Fatalf("game still has %d issues, want 4", len(game.issues))
	}
	if len(channel.deleted) != 0 {
		t.Fatalf("Cycle() deleted %d messages, want 0", len(channel.deleted))
	}
	_ = posts
}

func TestCycleTieBreakPrefersOwner(t *testing.T) {
	var live []models.Issue
	for id := 1; id <= 5; id++ {
		live = append(live, issueWithOptions(id, 2))
	}
	game := &fakeGame{issues: live}
	channel := &fakeChannel{voters: map[string]map[string][]string{}}
	var newest *discordgo.Message
	for id := 1; id <= 5; id++ {
		newest = channel.seedPost(live[id-1], 1, 2, 2) // slots 1 and 2 tied
	}
	// the owner voted for slot 2 on the issue about to be closed
	channel.voters[newest.ID] = map[string][]string{
		testEmoji(1): {"7"},
		testEmoji(2): {"8", ownerID},
	}
	answerer := newTestAnswerer(t, game, channel)

	if err := answerer.Cycle(context.Background()); err != nil {
		t.Fatalf("Cycle() failed: %v", err)
	}

	if len(game.accepted) != 1 {
		t.Fatalf("Cycle() closed %d issues, want 1", len(game.accepted))
	}
	if game.accepted[0].option.Index != 1 {
		t.Fatalf("tie-break accepted option %d, want the owner's pick 1", game.accepted[0].option.Index)
	}
}

func TestCycleNudgesWithoutVotes(t *testing.T) {
	issue := issueWithOptions(1, 1)
	game := &fakeGame{issues: []models.Issue{issue}}
	channel := &fakeChannel{}
	channel.seedPost(issue, 1, 1) // only the bot's own reactions
	answerer := newTestAnswerer(t, game, channel)

	if err := answerer.Cycle(context.Background()); err != nil {
		t.Fatalf("Cycle() failed: %v", err)
	}
	nudge := findContent(channel, "There are no votes yet")
	if nudge == nil {
		t.Fatalf("Cycle() did not nudge the channel about the missing votes")
	}
	if !strings.Contains(nudge.Content, "<@"+ownerID+">") {
		t.Fatalf("nudge %q does not mention the owner", nudge.Content)
	}
}

func TestCycleSkipsNudgeWithVotes(t *testing.T) {
	issue := issueWithOptions(1, 1)
	game := &fakeGame{issues: []models.Issue{issue}}
	channel := &fakeChannel{}
	channel.seedPost(issue, 1, 3)
	answerer := newTestAnswerer(t, game, channel)

	if err := answerer.Cycle(context.Background()); err != nil {
		t.Fatalf("Cycle() failed: %v", err)
	}
	if findContent(channel, "There are no votes yet") != nil {
		t.Fatalf("Cycle() nudged although votes exist")
	}
}

func TestCycleAbortsOnCorruptedVotes(t *testing.T) {
	var live []models.Issue
	for id := 1; id <= 5; id++ {
		live = append(live, issueWithOptions(id, 2))
	}
	game := &fakeGame{issues: live}
	channel := &fakeChannel{}
	for id := 1; id <= 4; id++ {
		channel.seedPost(live[id-1], 1, 1, 2)
	}
	// the post about to be closed carries a duplicate bot reaction
	corrupted := channel.seedPost(live[4], 1, 1, 2)
	corrupted.Reactions = append(corrupted.Reactions, botReaction(testEmoji(1), 1))
	answerer := newTestAnswerer(t, game, channel)

	err := answerer.Cycle(context.Background())
	if err == nil {
		t.Fatalf("Cycle() tallied a corrupted post instead of failing")
	}
	if !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("Cycle() error %q does not name the duplicate reaction", err)
	}
	if len(game.accepted) != 0 {
		t.Fatalf("Cycle() closed %d issues off a corrupted post, want 0", len(game.accepted))
	}
	if len(channel.messages) != 5 {
		t.Fatalf("Cycle() sent messages after the hard failure, channel has %d", len(channel.messages))
	}
	if len(channel.deleted) != 0 {
		t.Fatalf("Cycle() deleted the corrupted post as if it were stale")
	}
}

func TestConcurrentCyclesCloseOnce(t *testing.T) {
	var live []models.Issue
	for id := 1; id <= 5; id++ {
		live = append(live, issueWithOptions(id, 2))
	}
	game := &fakeGame{issues: live}
	channel := &fakeChannel{}
	for id := 1; id <= 5; id++ {
		counts := []int{1, 1, 1}
		counts[id%3] = 2
		channel.seedPost(live[id-1], counts...)
	}
	answerer := newTestAnswerer(t, game, channel)

	// a forced cycle from a command handler must not interleave with
	// the scheduled one; serialized, the second pass sees only 4 open
	// issues and closes nothing
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := answerer.Cycle(context.Background()); err != nil {
				t.Errorf("Cycle() failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if len(game.accepted) != 1 {
		t.Fatalf("concurrent cycles closed %d issues, want 1", len(game.accepted))
	}
	if game.accepted[0].issueID != 5 {
		t.Fatalf("concurrent cycles closed issue %d, want 5", game.accepted[0].issueID)
	}
}

func TestCycleRepostsExpiredPost(t *testing.T) {
	issue := issueWithOptions(1, 1)
	game := &fakeGame{issues: []models.Issue{issue}}
	channel := &fakeChannel{}
	old := channel.seedPost(issue, 1, 5)
	old.Timestamp = time.Now().Add(-3 * 24 * time.Hour)
	answerer := newTestAnswerer(t, game, channel)
	answerer.now = time.Now

	if err := answerer.Cycle(context.Background()); err != nil {
		t.Fatalf("Cycle() failed: %v", err)
	}

	// a post outside the recency window is never trusted again
	markers := markerMessages(channel)
	if len(markers) != 2 {
		t.Fatalf("Cycle() left %d issue posts, want the old one plus a fresh one", len(markers))
	}
	if len(game.accepted) != 0 {
		t.Fatalf("Cycle() closed an issue based on an expired post")
	}
}
