package intent

// DefaultTier is used for intent names missing from the configured tier map.
// Mid-priority: unknown intents neither preempt critical commands nor sink
// below chit-chat.
const DefaultTier = P2

// AssignTiers stamps each candidate with its configured priority tier.
// The classifier produces name+confidence only; tier assignment is a
// configuration concern.
func AssignTiers(candidates []CandidateIntent, tiers map[string]int) []CandidateIntent {
	out := make([]CandidateIntent, len(candidates))
	for i, c := range candidates {
		tier := DefaultTier
		if t, ok := tiers[c.Name]; ok && t >= int(P0) && t <= int(P4) {
			tier = Priority(t)
		}
		c.Tier = tier
		out[i] = c
	}
	return out
}
