package issues

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/discordplays/nationstates/emojis"
	"github.com/discordplays/nationstates/helpers"
	"github.com/discordplays/nationstates/metrics"
	"github.com/discordplays/nationstates/models"
	"github.com/pkg/errors"
)

const (
	issueOpenColour   = 0xfdc82f
	issueResultColour = 0xde3831
	bannerColour      = 0x36393e
)

const embedFieldLimit = 1024

// openIssue posts a new issue message with one reaction slot per
// ballot option. The message content is the bare marker; everything
// readable lives in the embed.
func (a *Answerer) openIssue(ctx context.Context, issue models.Issue, flagURL string) error {
	embed := &discordgo.MessageEmbed{
		Title:       issue.Title,
		Description: helpers.HTMLToMarkdown(issue.Text),
		Color:       issueOpenColour,
		Timestamp:   a.now().UTC().Format(time.RFC3339),
	}
	if len(issue.Banners) > 0 {
		embed.Image = &discordgo.MessageEmbedImage{URL: issue.Banners[0]}
	}
	if flagURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: flagURL}
	}

	var reactions []string
	for slot, option := range issue.Ballot() {
		emoji := emojis.ForOption(slot)
		if emoji == "" {
			return errors.Errorf("issue #%d has more options than reaction slots", issue.ID)
		}
		addFragmentFields(embed, emoji+":", helpers.HTMLToMarkdown(option.Text))
		reactions = append(reactions, emoji)
	}

	message, err := a.channel.Send(ctx, issue.Marker(), embed)
	if err != nil {
		return errors.Wrapf(err, "failed to post issue #%d", issue.ID)
	}
	for _, emoji := range reactions {
		if err := a.channel.React(ctx, message.ID, emoji); err != nil {
			return errors.Wrapf(err, "failed to react with %s on issue #%d", emoji, issue.ID)
		}
	}
	metrics.IssuesPosted.Add(1)
	return nil
}

// postResult announces the accepted option and everything it changed
func (a *Answerer) postResult(ctx context.Context, issue models.Issue, option models.Option, result *models.IssueResult) error {
	embed := &discordgo.MessageEmbed{
		Title:       issue.Title,
		Description: helpers.HTMLToMarkdown(issue.Text),
		Color:       issueResultColour,
	}
	addFragmentFields(embed, ":white_check_mark::", helpers.HTMLToMarkdown(option.Text))

	effectLine := result.EffectLine
	if effectLine == "" {
		effectLine = "issue was dismissed"
	}
	effect := capitalize(effectLine) + "."
	if len(result.Reclassifications) > 0 {
		effect += "\n\n" + strings.Join(result.Reclassifications, ";\n") + "."
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  ":pencil::",
		Value: helpers.HTMLToMarkdown(effect),
	})

	if len(result.Headlines) > 0 {
		headlines := make([]string, 0, len(result.Headlines))
		for _, headline := range result.Headlines {
			headlines = append(headlines, helpers.HTMLToMarkdown(headline))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  ":newspaper::",
			Value: strings.Join(headlines, ";\n") + ".",
		})
	}

	if len(result.Census) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  ":chart_with_upwards_trend::",
			Value: "```diff\n" + strings.Join(censusDifference(result.Census), "\n") + "\n```",
		})
	}

	if _, err := a.channel.Send(ctx, "Legislation Passed:", embed); err != nil {
		return errors.Wrapf(err, "failed to announce the result of issue #%d", issue.ID)
	}

	for _, banner := range result.Banners {
		bannerEmbed := &discordgo.MessageEmbed{
			Title:       banner.Name,
			Description: banner.Validity,
			Color:       bannerColour,
			Image:       &discordgo.MessageEmbedImage{URL: banner.URL},
		}
		if _, err := a.channel.Send(ctx, "New banner unlocked:", bannerEmbed); err != nil {
			return err
		}
	}
	for _, policy := range result.NewPolicies {
		if _, err := a.channel.Send(ctx, "New policy introduced:", policyEmbed(policy)); err != nil {
			return err
		}
	}
	for _, policy := range result.RemovedPolicies {
		if _, err := a.channel.Send(ctx, "Removed policy:", policyEmbed(policy)); err != nil {
			return err
		}
	}
	return nil
}

func policyEmbed(policy models.Policy) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       policy.Name,
		Description: policy.Description,
		Color:       bannerColour,
		Image:       &discordgo.MessageEmbedImage{URL: policy.Banner},
	}
}

// addFragmentFields adds one embed field per text fragment, numbering
// continuation fields after the first
func addFragmentFields(embed *discordgo.MessageEmbed, name, text string) {
	for index, partial := range helpers.TextFragments(text, ". ", embedFieldLimit) {
		fieldName := name
		if index > 0 {
			fieldName = fmt.Sprintf("%s-%d", name, index)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fieldName,
			Value: partial,
		})
	}
}

// censusDifference renders census deltas as diff-highlighted lines,
// keeping the 11 scales that moved the most
func censusDifference(census []models.CensusScaleChange) []string {
	sorted := make([]models.CensusScaleChange, len(census))
	copy(sorted, census)
	sort.SliceStable(sorted, func(i, j int) bool {
		return abs(sorted[i].PercentChange) > abs(sorted[j].PercentChange)
	})
	if len(sorted) > 11 {
		sorted = sorted[:11]
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PercentChange > sorted[j].PercentChange
	})

	lines := make([]string, 0, len(sorted))
	for _, scale := range sorted {
		highlight, arrow := " ", " "
		if scale.PercentChange > 0 {
			highlight, arrow = "+", "↑"
		} else if scale.PercentChange < 0 {
			highlight, arrow = "-", "↓"
		}
		lines = append(lines, fmt.Sprintf("%s%-35s %s%.2f%%",
			highlight, scale.Title, arrow, abs(scale.PercentChange)))
	}
	return lines
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
