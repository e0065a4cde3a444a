package plugins

import (
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/discordplays/nationstates/helpers"
	"github.com/discordplays/nationstates/metrics"
	"github.com/discordplays/nationstates/version"
	humanize "github.com/dustin/go-humanize"
)

type Stats struct{}

func (s *Stats) Commands() []string {
	return []string{
		"stats",
		"uptime",
	}
}

func (s *Stats) Init(session *discordgo.Session) {
}

func (s *Stats) Action(command string, content string, msg *discordgo.Message, session *discordgo.Session) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	bootTime := time.Unix(metrics.Uptime.Value(), 0)

	embed := &discordgo.MessageEmbed{
		Title: "Stats",
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Version", Value: version.BOT_VERSION, Inline: true},
			{Name: "Uptime", Value: humanize.Time(bootTime), Inline: true},
			{Name: "Goroutines", Value: strconv.Itoa(runtime.NumGoroutine()), Inline: true},
			{Name: "Memory", Value: humanize.Bytes(memStats.Alloc), Inline: true},
			{Name: "Cycles run", Value: fmt.Sprintf("%d (%d failed)",
				metrics.CyclesRun.Value(), metrics.CycleErrors.Value()), Inline: true},
			{Name: "Issues", Value: fmt.Sprintf("%d posted, %d closed",
				metrics.IssuesPosted.Value(), metrics.IssuesClosed.Value()), Inline: true},
		},
	}

	_, err := helpers.SendEmbed(msg.ChannelID, "", embed)
	helpers.RelaxMessage(err, msg.ChannelID)
}
