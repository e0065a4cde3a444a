package main

import (
	"github.com/bwmarrin/discordgo"
	"github.com/discordplays/nationstates/helpers"
	"github.com/discordplays/nationstates/metrics"
	"github.com/discordplays/nationstates/modules"
)

// BotOnMessageCreate gets called after a new message was sent
// This will be called after *every* message on *every* server so it
// should die as soon as possible or spawn costly work inside of
// goroutines.
func BotOnMessageCreate(session *discordgo.Session, message *discordgo.MessageCreate) {
	// Ignore other bots and @everyone/@here
	if message.Author == nil || message.Author.Bot || message.MentionEveryone {
		return
	}

	metrics.MessagesReceived.Add(1)

	command, content, ok := helpers.CommandAndContent(helpers.GetPrefix(), message.Content)
	if !ok {
		return
	}

	modules.CallBotPlugin(command, content, message.Message)
}
