package modules

import (
	"fmt"
	"os"

	"github.com/bwmarrin/discordgo"
	"github.com/discordplays/nationstates/cache"
	"github.com/discordplays/nationstates/helpers"
	"github.com/discordplays/nationstates/metrics"
)

var pluginCache map[string]*Plugin

// Init registers and initializes the given plugins. The plugin list
// is assembled by the launcher so every plugin gets its dependencies
// handed to it explicitly.
func Init(session *discordgo.Session, plugins ...Plugin) {
	checkDuplicateCommands(plugins)

	pluginCache = make(map[string]*Plugin)

	logTemplate := "[PLUG] %s reacts to [ %s]"
	for i := range plugins {
		ref := &plugins[i]

		listeners := ""
		for _, cmd := range (*ref).Commands() {
			pluginCache[cmd] = ref
			listeners += cmd + " "
		}

		cache.GetLogger().WithField("module", "modules").Info(fmt.Sprintf(
			logTemplate,
			helpers.Typeof(*ref),
			listeners,
		))

		(*ref).Init(session)
	}

	cache.GetLogger().WithField("module", "modules").Info(
		fmt.Sprintf("Initializer finished. Loaded %d plugins", len(plugins)))
}

// CallBotPlugin dispatches a parsed command to the plugin registered
// for it, recovering any panic into a discord error message
//
// command - The command that triggered this execution
// content - The content without command
// msg     - The message object
func CallBotPlugin(command string, content string, msg *discordgo.Message) {
	// Defer a recovery in case anything panics
	defer helpers.RecoverDiscord(msg)

	// Track metrics
	metrics.CommandsExecuted.Add(1)

	// Call the module
	if ref, ok := pluginCache[command]; ok {
		(*ref).Action(command, content, msg, cache.GetSession())
	}
}

func checkDuplicateCommands(plugins []Plugin) {
	cmds := make(map[string]string)

	for _, plug := range plugins {
		for _, cmd := range plug.Commands() {
			t := helpers.Typeof(plug)

			if occupant, ok := cmds[cmd]; ok {
				cache.GetLogger().WithField("module", "modules").Error(
					"Failed to load " + t + " because '" + cmd + "' was already registered by " + occupant)
				os.Exit(1)
			}

			cmds[cmd] = t
		}
	}
}
