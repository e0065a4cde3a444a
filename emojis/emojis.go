// Package emojis maps issue option slots to the unicode digit emoji
// the bot reacts with. Slot 0 is always the synthetic Dismiss option.
package emojis

var table = []string{
	`0⃣`,
	`1⃣`,
	`2⃣`,
	`3⃣`,
	`4⃣`,
	`5⃣`,
	`6⃣`,
	`7⃣`,
	`8⃣`,
	`9⃣`,
	`🔟`,
}

// revtable is the reverse version of table
var revtable map[string]int

func init() {
	revtable = make(map[string]int, len(table))
	for i, v := range table {
		revtable[v] = i
	}
}

// Limit is the number of option slots a single message can carry
var Limit = len(table)

// ForOption returns the emoji bound to the given option slot,
// or an empty string when the slot is out of range
func ForOption(slot int) string {
	if slot < 0 || slot >= len(table) {
		return ""
	}
	return table[slot]
}

// ToSlot returns the option slot bound to the emoji, or -1
// when the emoji is not part of the table
func ToSlot(emoji string) int {
	slot, ok := revtable[emoji]
	if !ok {
		return -1
	}
	return slot
}

// ForIssue returns the ordered emoji set required on a posted issue
// with the given number of real options (Dismiss excluded)
func ForIssue(optionCount int) []string {
	required := make([]string, 0, optionCount+1)
	for slot := 0; slot <= optionCount && slot < len(table); slot++ {
		required = append(required, table[slot])
	}
	return required
}
