package issues

import (
	"github.com/bwmarrin/discordgo"
	"github.com/discordplays/nationstates/emojis"
	"github.com/discordplays/nationstates/models"
	"github.com/pkg/errors"
)

// VoteCount is the reaction count accrued under one option's emoji
type VoteCount struct {
	Option models.Option
	Emoji  string
	Count  int
}

// Tally maps the bot-authored reactions on a posted issue message to
// the issue's ballot. The reaction set must cover the ballot exactly,
// one bot reaction per option; anything else means the post is stale
// or corrupted and must not be tallied.
func Tally(message *discordgo.Message, issue models.Issue) ([]VoteCount, error) {
	ballot := issue.Ballot()
	counts := make([]VoteCount, len(ballot))
	seen := make([]bool, len(ballot))

	for _, reaction := range message.Reactions {
		if !reaction.Me {
			continue
		}
		slot := emojis.ToSlot(reaction.Emoji.Name)
		if slot < 0 || slot >= len(ballot) {
			return nil, errors.Errorf(
				"reaction %s on message %s matches no option of issue #%d",
				reaction.Emoji.Name, message.ID, issue.ID)
		}
		if seen[slot] {
			return nil, errors.Errorf(
				"duplicate bot reaction %s on message %s for issue #%d",
				reaction.Emoji.Name, message.ID, issue.ID)
		}
		seen[slot] = true
		counts[slot] = VoteCount{
			Option: ballot[slot],
			Emoji:  reaction.Emoji.Name,
			Count:  reaction.Count,
		}
	}

	for slot, ok := range seen {
		if !ok {
			return nil, errors.Errorf(
				"option %d of issue #%d lacks a bot reaction on message %s",
				ballot[slot].Index, issue.ID, message.ID)
		}
	}
	return counts, nil
}

// WinningOptions returns every option tied at the maximum vote count.
// The result is never empty for a non-empty tally.
func WinningOptions(counts []VoteCount) []VoteCount {
	var winners []VoteCount
	maxCount := -1
	for _, count := range counts {
		if count.Count > maxCount {
			maxCount = count.Count
			winners = winners[:0]
		}
		if count.Count == maxCount {
			winners = append(winners, count)
		}
	}
	return winners
}
