package intent

// Router resolves one winning intent (or a clarification request) from the
// classifier's candidates. Pure: it never mutates session state.
type Router struct {
	cfg Config
}

func NewRouter(cfg Config) *Router {
	return &Router{cfg: cfg}
}

// Route picks the winner:
//  1. group by tier, evaluate only the lowest-numbered non-empty tier;
//  2. best confidence within that tier wins;
//  3. mid-flow sessions expecting a response bias toward the continuation
//     intent when it trails the top candidate by at most ContinuationMargin;
//  4. a critical-tier (P0) winner stands regardless of confidence;
//  5. otherwise, low confidence or a near-tie asks for clarification
//     instead of guessing.
func (r *Router) Route(candidates []CandidateIntent, fsmCtx Context) Decision {
	if len(candidates) == 0 {
		return Decision{NeedsClarification: true, Reason: "no candidates"}
	}

	tier := candidates[0].Tier
	for _, c := range candidates[1:] {
		if c.Tier < tier {
			tier = c.Tier
		}
	}

	var pool []CandidateIntent
	for _, c := range candidates {
		if c.Tier == tier {
			pool = append(pool, c)
		}
	}

	best := pool[0]
	runnerUp := -1.0
	for _, c := range pool[1:] {
		if c.Confidence > best.Confidence {
			runnerUp = best.Confidence
			best = c
		} else if c.Confidence > runnerUp {
			runnerUp = c.Confidence
		}
	}

	// When in doubt, continue the active flow rather than silently
	// switching topics.
	if r.midFlow(fsmCtx) {
		if cont := r.continuationCandidate(pool, fsmCtx, best); cont != nil {
			return Decision{Intent: cont, Reason: "continuation bias"}
		}
	}

	// The critical tier resolves on command keywords, not model certainty.
	// A weak cancel still cancels; it is never second-guessed.
	if tier == P0 {
		winner := best
		return Decision{Intent: &winner, Reason: "critical tier"}
	}

	if best.Confidence < r.cfg.MinConfidence {
		return Decision{NeedsClarification: true, Reason: "confidence below threshold"}
	}
	if runnerUp >= 0 && best.Confidence-runnerUp <= r.cfg.ClarifyEpsilon {
		return Decision{NeedsClarification: true, Reason: "ambiguous candidates"}
	}

	winner := best
	return Decision{Intent: &winner, Reason: "best in tier"}
}

func (r *Router) midFlow(fsmCtx Context) bool {
	switch fsmCtx.State {
	case "", "idle", "completed", "abandoned":
		return false
	}
	return fsmCtx.ExpectingResponse && fsmCtx.Age <= r.cfg.RecentActivityMax
}

func (r *Router) continuationCandidate(pool []CandidateIntent, fsmCtx Context, best CandidateIntent) *CandidateIntent {
	if fsmCtx.isContinuation(best.Name) {
		winner := best
		return &winner
	}
	for _, c := range pool {
		if !fsmCtx.isContinuation(c.Name) {
			continue
		}
		if best.Confidence-c.Confidence <= r.cfg.ContinuationMargin {
			winner := c
			return &winner
		}
	}
	return nil
}
