package plugins

import (
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/discordplays/nationstates/helpers"
)

type Ping struct{}

func (p *Ping) Commands() []string {
	return []string{
		"ping",
	}
}

func (p *Ping) Init(session *discordgo.Session) {
}

func (p *Ping) Action(command string, content string, msg *discordgo.Message, session *discordgo.Session) {
	started := time.Now()
	pong, err := helpers.SendMessage(msg.ChannelID, ":ping_pong:")
	helpers.RelaxMessage(err, msg.ChannelID)
	if pong == nil {
		return
	}

	taken := time.Since(started)
	_, err = session.ChannelMessageEdit(msg.ChannelID, pong.ID,
		":ping_pong: HTTP API Latency: "+strconv.FormatInt(taken.Milliseconds(), 10)+"ms")
	helpers.RelaxMessage(err, msg.ChannelID)
}
