package issues

import "math/rand"

// ResolveTie picks a single winner from the options tied at the
// maximum vote count. If the bot owner voted for any tied option, the
// candidate pool shrinks to exactly the option(s) the owner picked;
// otherwise every tied option is a candidate. The pick is uniform
// over the pool, so a single tied option is returned as-is and an
// unambiguous owner vote always wins.
func ResolveTie(tied []VoteCount, votersByEmoji map[string][]string, ownerID string, rng *rand.Rand) VoteCount {
	if len(tied) == 1 {
		return tied[0]
	}

	var ownerPicks []VoteCount
	for _, candidate := range tied {
		for _, voter := range votersByEmoji[candidate.Emoji] {
			if voter == ownerID {
				ownerPicks = append(ownerPicks, candidate)
				break
			}
		}
	}

	pool := tied
	if len(ownerPicks) > 0 {
		pool = ownerPicks
	}
	return pool[rng.Intn(len(pool))]
}
