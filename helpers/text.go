package helpers

import (
	"fmt"
	"strings"
	"time"
)

// HTMLToMarkdown converts the simple HTML markup the NationStates API
// embeds in issue and option texts into discord markdown
func HTMLToMarkdown(html string) string {
	replacer := strings.NewReplacer(
		"*", "\\*",
		"<i> ", " <i>",
		" </i>", "</i> ",
	)
	text := replacer.Replace(html)
	text = strings.Replace(text, "<i>", "*", -1)
	text = strings.Replace(text, "</i>", "*", -1)
	text = strings.Replace(text, "&quot;", "\"", -1)
	return text
}

// TextFragments splits text on sep into chunks of at most limit runes,
// never breaking inside a fragment. Embed field values max out at 1024.
func TextFragments(text string, sep string, limit int) []string {
	var result []string
	var fragmentList []string
	for _, fragment := range strings.Split(text, sep) {
		joined := strings.Join(append(fragmentList, fragment), sep)
		if len(fragmentList) > 0 && len(joined) > limit {
			result = append(result, strings.Join(fragmentList, sep))
			fragmentList = []string{fragment}
		} else {
			fragmentList = append(fragmentList, fragment)
		}
	}
	return append(result, strings.Join(fragmentList, sep))
}

// CountdownString renders the wait until the next issue cycle
func CountdownString(wait time.Duration) string {
	seconds := int(wait.Seconds())
	return fmt.Sprintf(
		"Issue cycle will sleep %d hours, %d minutes, and %d seconds until next issue.",
		seconds/3600, seconds%3600/60, seconds%60)
}
