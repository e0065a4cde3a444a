package issues

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/discordplays/nationstates/models"
)

// GameClient is the slice of the NationStates API the issue cycle
// depends on. Implementations must query fresh state on every call.
type GameClient interface {
	Issues(ctx context.Context) ([]models.Issue, error)
	Flag(ctx context.Context) (string, error)
	Description(ctx context.Context) (string, error)
	AcceptOption(ctx context.Context, issueID int, option models.Option) (*models.IssueResult, error)
}

// Channel is the single discord channel a job owns exclusively for
// its marker messages
type Channel interface {
	Send(ctx context.Context, content string, embed *discordgo.MessageEmbed) (*discordgo.Message, error)
	// History returns up to limit recent messages, newest first
	History(ctx context.Context, limit int) ([]*discordgo.Message, error)
	Delete(ctx context.Context, messageID string) error
	React(ctx context.Context, messageID string, emoji string) error
	ReactionUsers(ctx context.Context, messageID string, emoji string) ([]string, error)
	BotUserID() string
}
