// Except.go: Contains functions to make handling panics less PITA

package helpers

import (
	"fmt"
	"runtime"

	"github.com/bwmarrin/discordgo"
	"github.com/discordplays/nationstates/cache"
	"github.com/getsentry/raven-go"
)

var DEBUG_MODE = false

// RecoverDiscord recover()s and sends a message to discord
func RecoverDiscord(msg *discordgo.Message) {
	err := recover()
	if err != nil {
		SendError(msg, err)
	}
}

// Relax is a helper to reduce if-checks if panicking is allowed
// If $err is nil this is a no-op. Panics otherwise.
func Relax(err error) {
	if err != nil {
		if DEBUG_MODE == true {
			fmt.Printf("%#v\n", err)
		}
		panic(err)
	}
}

// RelaxMessage does nothing if $err is nil or if the error is a
// missing-permissions REST error, else sends it to Relax()
func RelaxMessage(err error, channelID string) {
	if err != nil {
		if errD, ok := err.(*discordgo.RESTError); ok && errD.Message != nil {
			if errD.Message.Code == discordgo.ErrCodeMissingPermissions {
				cache.GetLogger().WithField("module", "helpers").Warn(
					"no permission to send message to channel #" + channelID)
				return
			}
		}
		Relax(err)
	}
}

// SendError Takes an error and sends it to discord and sentry.io
func SendError(msg *discordgo.Message, err interface{}) {
	if DEBUG_MODE == true {
		buf := make([]byte, 1<<16)
		stackSize := runtime.Stack(buf, false)

		cache.GetSession().ChannelMessageSend(
			msg.ChannelID,
			"Error :frowning:\n```\n"+fmt.Sprintf("%#v\n", err)+fmt.Sprintf("%s\n", string(buf[0:stackSize]))+"\n```",
		)
	} else {
		if errR, ok := err.(*discordgo.RESTError); ok && errR != nil && errR.Message != nil {
			cache.GetSession().ChannelMessageSend(
				msg.ChannelID,
				"Error :frowning:\n```\n"+fmt.Sprintf("%#v", errR.Message.Message)+"\n```",
			)
		} else {
			cache.GetSession().ChannelMessageSend(
				msg.ChannelID,
				"Error :frowning:\n```\n"+fmt.Sprintf("%#v", err)+"\n```",
			)
		}
	}

	raven.SetUserContext(&raven.User{
		ID:       msg.ID,
		Username: msg.Author.Username + "#" + msg.Author.Discriminator,
	})

	raven.CaptureError(fmt.Errorf("%#v", err), map[string]string{
		"ChannelID": msg.ChannelID,
		"Content":   msg.Content,
	})
}
