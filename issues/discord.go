package issues

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// DiscordChannel adapts one discord text channel to the Channel
// interface the reconciler consumes
type DiscordChannel struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordChannel(session *discordgo.Session, channelID string) *DiscordChannel {
	return &DiscordChannel{
		session:   session,
		channelID: channelID,
	}
}

// ChannelID returns the discord channel this adapter posts into
func (c *DiscordChannel) ChannelID() string {
	return c.channelID
}

func (c *DiscordChannel) Send(ctx context.Context, content string, embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	return c.session.ChannelMessageSendComplex(c.channelID, &discordgo.MessageSend{
		Content: content,
		Embed:   embed,
	}, discordgo.WithContext(ctx))
}

func (c *DiscordChannel) History(ctx context.Context, limit int) ([]*discordgo.Message, error) {
	return c.session.ChannelMessages(c.channelID, limit, "", "", "", discordgo.WithContext(ctx))
}

func (c *DiscordChannel) Delete(ctx context.Context, messageID string) error {
	return c.session.ChannelMessageDelete(c.channelID, messageID, discordgo.WithContext(ctx))
}

func (c *DiscordChannel) React(ctx context.Context, messageID string, emoji string) error {
	return c.session.MessageReactionAdd(c.channelID, messageID, emoji, discordgo.WithContext(ctx))
}

func (c *DiscordChannel) ReactionUsers(ctx context.Context, messageID string, emoji string) ([]string, error) {
	users, err := c.session.MessageReactions(c.channelID, messageID, emoji, 100, "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(users))
	for _, user := range users {
		ids = append(ids, user.ID)
	}
	return ids, nil
}

func (c *DiscordChannel) BotUserID() string {
	return c.session.State.User.ID
}
