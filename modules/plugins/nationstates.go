package plugins

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/discordplays/nationstates/cache"
	"github.com/discordplays/nationstates/helpers"
	"github.com/discordplays/nationstates/issues"
)

// NationStates exposes the issue-answering jobs as chat commands.
// It is a thin dispatch layer over the job registry.
type NationStates struct {
	Registry *issues.Registry
	Shutdown func()
}

func (n *NationStates) Commands() []string {
	return []string{
		"issues",
		"countdown",
		"scroll",
		"shutdown",
	}
}

func (n *NationStates) Init(session *discordgo.Session) {
}

func (n *NationStates) Action(command string, content string, msg *discordgo.Message, session *discordgo.Session) {
	switch command {
	case "issues":
		n.actionIssues(content, msg)
	case "countdown":
		n.actionCountdown(content, msg)
	case "scroll":
		n.actionScroll(content, msg)
	case "shutdown":
		n.actionShutdown(msg)
	}
}

// actionIssues reports what nation(s) this guild is playing
func (n *NationStates) actionIssues(content string, msg *discordgo.Message) {
	jobs := n.guildJobs(content, msg)
	if len(jobs) == 0 {
		_, err := helpers.SendMessage(msg.ChannelID, "No nation is answering issues on this server.")
		helpers.RelaxMessage(err, msg.ChannelID)
		return
	}
	for _, job := range jobs {
		info, err := job.Info(context.Background())
		helpers.Relax(err)
		_, err = helpers.SendMessage(msg.ChannelID, info)
		helpers.RelaxMessage(err, msg.ChannelID)
	}
}

// actionCountdown reports the time to each job's next auto cycle
func (n *NationStates) actionCountdown(content string, msg *discordgo.Message) {
	jobs := n.guildJobs(content, msg)
	if len(jobs) == 0 {
		_, err := helpers.SendMessage(msg.ChannelID, "No nation is answering issues on this server.")
		helpers.RelaxMessage(err, msg.ChannelID)
		return
	}
	for _, job := range jobs {
		_, err := helpers.SendMessage(msg.ChannelID, job.Countdown())
		helpers.RelaxMessage(err, msg.ChannelID)
	}
}

// actionScroll forces one issue cycle right now. Owner only.
func (n *NationStates) actionScroll(content string, msg *discordgo.Message) {
	if !helpers.IsBotOwner(msg.Author.ID) {
		return
	}

	var job *issues.Answerer
	if nation := strings.TrimSpace(content); nation != "" {
		job = n.Registry.ByNation(nation)
	} else if jobs := n.Registry.Jobs(); len(jobs) == 1 {
		job = jobs[0]
	}
	if job == nil {
		cache.GetLogger().WithField("module", "plugins").Errorf(
			"scroll failed, nation not specified and found %d jobs", len(n.Registry.Jobs()))
		return
	}

	helpers.Relax(job.Cycle(context.Background()))
}

// actionShutdown stops all jobs and disconnects. Owner only.
func (n *NationStates) actionShutdown(msg *discordgo.Message) {
	if !helpers.IsBotOwner(msg.Author.ID) {
		return
	}
	if n.Shutdown != nil {
		n.Shutdown()
	}
}

// guildJobs returns the jobs posting into the guild the message came
// from, narrowed to a single nation when one is named in content
func (n *NationStates) guildJobs(content string, msg *discordgo.Message) []*issues.Answerer {
	channel, err := helpers.GetChannel(msg.ChannelID)
	if err != nil {
		return nil
	}

	if nation := strings.TrimSpace(content); nation != "" {
		if job := n.Registry.ByNation(nation); job != nil && jobInGuild(job, channel.GuildID) {
			return []*issues.Answerer{job}
		}
	}

	var jobs []*issues.Answerer
	for _, job := range n.Registry.Jobs() {
		if jobInGuild(job, channel.GuildID) {
			jobs = append(jobs, job)
		}
	}
	return jobs
}

func jobInGuild(job *issues.Answerer, guildID string) bool {
	jobChannel, err := helpers.GetChannel(job.Config().ChannelID)
	if err != nil {
		return false
	}
	return jobChannel.GuildID == guildID
}
