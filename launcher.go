package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/discordplays/nationstates/cache"
	"github.com/discordplays/nationstates/helpers"
	"github.com/discordplays/nationstates/issues"
	"github.com/discordplays/nationstates/logging"
	"github.com/discordplays/nationstates/metrics"
	"github.com/discordplays/nationstates/models"
	"github.com/discordplays/nationstates/modules"
	"github.com/discordplays/nationstates/modules/plugins"
	"github.com/discordplays/nationstates/nationstates"
	"github.com/discordplays/nationstates/version"
	"github.com/getsentry/raven-go"
	"github.com/sirupsen/logrus"
)

// Entrypoint
func main() {
	log := logrus.New()
	log.Out = os.Stdout
	log.Level = logrus.DebugLevel
	log.Formatter = &logrus.TextFormatter{ForceColors: true, FullTimestamp: true, TimestampFormat: time.RFC3339}
	log.Hooks = make(logrus.LevelHooks)
	cache.SetLogger(log)

	// Read config
	helpers.LoadConfig("config.json")
	config := helpers.GetConfig()

	// Check if the bot is being debugged
	if debug, ok := config.Path("debug").Data().(bool); ok && debug {
		helpers.DEBUG_MODE = true
	}

	if jsonfile, ok := config.Path("logging.jsonfile").Data().(string); ok && jsonfile != "" {
		fileHook, err := logging.NewLogrusFileHook(jsonfile, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0666)
		if err != nil {
			log.WithField("module", "launcher").Error("logrus file hook failed, err:", err.Error())
		} else {
			log.Hooks.Add(fileHook)
		}
	}

	if dsn, ok := config.Path("sentry_dsn").Data().(string); ok && dsn != "" {
		err := raven.SetDSN(dsn)
		if err != nil {
			log.WithField("module", "launcher").Error("failed to set sentry dsn: ", err.Error())
		}
	}

	log.WithField("module", "launcher").Info("Booting discord-plays-nationstates...")

	// Show version
	version.DumpInfo()

	// Start metric server
	metrics.Init()

	// Make the randomness more random
	rand.Seed(time.Now().UTC().UnixNano())

	// Connect to discord
	session, err := discordgo.New("Bot " + config.Path("discord.token").Data().(string))
	if err != nil {
		log.WithField("module", "launcher").Fatal("failed to create discord session: ", err.Error())
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsMessageContent
	session.State.MaxMessageCount = 100

	// The registry owns all running jobs; command handlers get it
	// handed to them explicitly
	registry := issues.NewRegistry()

	runCtx, cancel := context.WithCancel(context.Background())
	shutdown := make(chan struct{}, 1)

	session.AddHandler(func(s *discordgo.Session, event *discordgo.Ready) {
		BotOnReady(s, event, registry, runCtx, func() {
			shutdown <- struct{}{}
		})
	})
	session.AddHandler(BotOnMessageCreate)

	err = session.Open()
	if err != nil {
		log.WithField("module", "launcher").Fatal("failed to connect to discord: ", err.Error())
	}

	go metrics.CollectRuntimeMetrics()

	// Wait for a signal or a shutdown command
	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, os.Interrupt, syscall.SIGTERM)
	select {
	case <-signalChannel:
	case <-shutdown:
	}

	log.WithField("module", "launcher").Info("Shutting down...")
	cancel()
	session.Close()
}

// BotOnReady wires the configured jobs once the gateway is up
func BotOnReady(session *discordgo.Session, event *discordgo.Ready, registry *issues.Registry, runCtx context.Context, shutdown func()) {
	log := cache.GetLogger().WithField("module", "launcher")
	config := helpers.GetConfig()

	log.Info("Connected to discord!")
	cache.SetSession(session)

	// Resolve the application owner, the identity that breaks ties
	app, err := session.Application("@me")
	if err != nil {
		log.Fatal("failed to fetch application info: ", err.Error())
	}
	if app.Owner != nil {
		cache.SetOwnerID(app.Owner.ID)
	}

	if len(registry.Jobs()) > 0 {
		// the gateway reconnected, jobs are already running
		return
	}

	useragent, _ := config.Path("nationstates.useragent").Data().(string)
	if useragent == "" {
		log.Fatal("nationstates.useragent must be configured")
	}

	jobConfigs, err := config.Path("jobs").Children()
	if err != nil || len(jobConfigs) == 0 {
		log.Fatal("at least one job must be configured")
	}

	for _, jobConfig := range jobConfigs {
		nation := jobConfig.Path("nation").Data().(string)
		password := jobConfig.Path("password").Data().(string)
		channelID := jobConfig.Path("channel").Data().(string)
		issuesPerDay := 4
		if v, ok := jobConfig.Path("issues_per_day").Data().(float64); ok {
			issuesPerDay = int(v)
		}
		offsetHours := float64(0)
		if v, ok := jobConfig.Path("first_issue_offset").Data().(float64); ok {
			offsetHours = v
		}

		nationControl := nationstates.New(nation, password, useragent)
		jobCfg, err := models.NewJobConfig(
			nationControl.Name(), channelID, cache.GetOwnerID(), issuesPerDay, offsetHours)
		if err != nil {
			log.Fatal("invalid job config: ", err.Error())
		}

		job := issues.NewAnswerer(jobCfg, nationControl, issues.NewDiscordChannel(session, channelID))
		registry.Add(job)
		go job.Run(runCtx)

		log.Infof("answering issues of %s in channel #%s, every %s",
			jobCfg.Nation, jobCfg.ChannelID, jobCfg.BetweenIssues)
	}

	// Load and init all modules
	modules.Init(session,
		&plugins.NationStates{Registry: registry, Shutdown: shutdown},
		&plugins.Ping{},
		&plugins.Stats{},
	)
}
