package helpers

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/discordplays/nationstates/cache"
	"github.com/pkg/errors"
)

// SendMessage sends a message to the given channel
func SendMessage(channelID, content string) (*discordgo.Message, error) {
	return cache.GetSession().ChannelMessageSend(channelID, content)
}

// SendEmbed sends an embed with optional plain-text content to the given channel
func SendEmbed(channelID, content string, embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	return cache.GetSession().ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: content,
		Embed:   embed,
	})
}

// GetChannel returns the channel, preferring the state cache
func GetChannel(channelID string) (*discordgo.Channel, error) {
	channel, err := cache.GetSession().State.Channel(channelID)
	if err == nil {
		return channel, nil
	}
	channel, err = cache.GetSession().Channel(channelID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve channel #"+channelID)
	}
	return channel, nil
}

// IsBotOwner returns true when the user is the bot application owner
func IsBotOwner(userID string) bool {
	return userID != "" && userID == cache.GetOwnerID()
}

// MentionUser builds an @mention for the given user id
func MentionUser(userID string) string {
	return "<@" + userID + ">"
}

// CommandAndContent splits a prefixed command message into the command
// word and the remaining content
func CommandAndContent(prefix, message string) (command, content string, ok bool) {
	if !strings.HasPrefix(message, prefix) {
		return "", "", false
	}
	fields := strings.Fields(strings.TrimPrefix(message, prefix))
	if len(fields) == 0 {
		return "", "", false
	}
	return fields[0], strings.TrimSpace(strings.Join(fields[1:], " ")), true
}
