package metrics

import (
	"expvar"
	"net/http"
	"runtime"
	"time"

	"github.com/discordplays/nationstates/cache"
	"github.com/discordplays/nationstates/helpers"
)

var (
	// MessagesReceived counts all ever received messages
	MessagesReceived = expvar.NewInt("messages_received")

	// CommandsExecuted increases after each command execution
	CommandsExecuted = expvar.NewInt("commands_executed")

	// CyclesRun counts every completed issue cycle
	CyclesRun = expvar.NewInt("cycles_run")

	// CycleErrors counts cycles that failed and were reported to the operator
	CycleErrors = expvar.NewInt("cycle_errors")

	// IssuesPosted counts issue messages posted to discord
	IssuesPosted = expvar.NewInt("issues_posted")

	// IssuesClosed counts issues answered on the nation
	IssuesClosed = expvar.NewInt("issues_closed")

	// StaleIssuePosts counts posted issues replaced because their options changed
	StaleIssuePosts = expvar.NewInt("stale_issue_posts")

	// CoroutineCount counts all running goroutines
	CoroutineCount = expvar.NewInt("coroutine_count")

	// Uptime stores the timestamp of the bot's boot
	Uptime = expvar.NewInt("uptime")
)

// Init starts a http server on metrics_ip:1337
func Init() {
	cache.GetLogger().WithField("module", "metrics").Info("Listening on TCP/1337")
	Uptime.Set(time.Now().Unix())
	go http.ListenAndServe(helpers.GetConfig().Path("metrics_ip").Data().(string)+":1337", nil)
}

// CollectRuntimeMetrics counts all running goroutines
func CollectRuntimeMetrics() {
	for {
		time.Sleep(15 * time.Second)
		CoroutineCount.Set(int64(runtime.NumGoroutine()))
	}
}
