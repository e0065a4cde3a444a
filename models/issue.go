package models

import "strconv"

// DismissIndex is the reserved option index for dismissing an issue
// without taking action. It matches the id the NationStates API expects.
const DismissIndex = -1

// Issue is a policy decision surfaced by NationStates, read-only from
// the bot's point of view. Issues are consumed exactly once by
// accepting one of their options.
type Issue struct {
	ID      int
	Title   string
	Text    string
	Banners []string
	Options []Option
}

// Option is one selectable resolution of an issue. The synthetic
// Dismiss variant carries DismissIndex.
type Option struct {
	Index int
	Text  string
}

// Dismiss returns the synthetic take-no-action option
func Dismiss() Option {
	return Option{
		Index: DismissIndex,
		Text:  "Dismiss issue.",
	}
}

// IsDismiss reports whether the option is the synthetic Dismiss variant
func (o Option) IsDismiss() bool {
	return o.Index == DismissIndex
}

// Ballot enumerates the selectable options of an issue in slot order:
// Dismiss always occupies slot 0, real options follow in API order.
func (i Issue) Ballot() []Option {
	return append([]Option{Dismiss()}, i.Options...)
}

// Marker is the canonical message content identifying this issue's
// discord post. Nothing else is permitted in that message's content.
func (i Issue) Marker() string {
	return IssueMarker(i.ID)
}

// IssueMarker builds the canonical marker string for an issue id
func IssueMarker(id int) string {
	return "Issue #" + strconv.Itoa(id) + ":"
}
