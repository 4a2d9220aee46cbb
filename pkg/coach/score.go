package coach

import (
	"fmt"
	"strings"
)

// ============================================================================
// SCORER
// ============================================================================
// Four-dimension score, recomputed from the full event history on every
// agent turn. Recomputation over incremental accumulation is deliberate:
// the brute-force pass is cheap at session scale and cannot drift from the
// history it summarizes.

// Near-miss pattern families. leak_risk is penalized only by the
// information-disclosure family; policy_adherence only by the bypass/trust
// family.
var (
	leakFamily = map[string]bool{
		PatternCredentialDisclosure:         true,
		PatternSensitiveInfoDisclosure:      true,
		PatternAccountExistenceConfirmation: true,
	}
	bypassFamily = map[string]bool{
		PatternVerificationBypassAgreement: true,
		PatternExcessiveTrust:              true,
	}
)

// Fixed penalties per severity.
var (
	leakPenalties   = map[Severity]int{SeverityHigh: 30, SeverityMedium: 15, SeverityLow: 5}
	bypassPenalties = map[Severity]int{SeverityHigh: 35, SeverityMedium: 15, SeverityLow: 5}
)

const recognitionPenalty = 25

// Positive-behavior phrases scanned in agent-turn text. Each bonus applies
// once per score computation, capped at 100.
var (
	verifyBonusPhrases   = []string{"verify", "confirm your"}
	escalateBonusPhrases = []string{"supervisor", "escalate", "manager"}
)

// highRiskTactics gates the recognition penalty.
var highRiskTactics = map[Tactic]bool{
	TacticCredentialHarvesting: true,
	TacticIdentityBypass:       true,
	TacticThreatIntimidation:   true,
}

// CalculateScore recomputes the four-dimension score from the full event
// history, accumulated near-misses, and the detected tactic set. All
// dimensions start at 100 and end clamped to [0,100]; overall is the fixed
// weighted blend 0.35*leak + 0.40*policy + 0.25*recognition, truncated.
// Deterministic; never fails.
func CalculateScore(events []Event, nearMisses []NearMiss, tactics []Tactic) Score {
	leak, policy, recognition := 100, 100, 100
	notes := newNoteList()

	for _, nm := range nearMisses {
		switch {
		case leakFamily[nm.Pattern]:
			leak -= leakPenalties[nm.Severity]
			notes.add(fmt.Sprintf("Information leak (%s, turn %d): %s.", nm.Severity, nm.TurnIndex, nm.Reason))
		case bypassFamily[nm.Pattern]:
			policy -= bypassPenalties[nm.Severity]
			notes.add(fmt.Sprintf("Policy slip (%s, turn %d): %s.", nm.Severity, nm.TurnIndex, nm.Reason))
		}
	}

	// Positive-behavior bonuses from trainee replies.
	verified, escalated := false, false
	for _, ev := range events {
		if ev.Type != EventAgentTurn {
			continue
		}
		normalized := normalizeText(ev.Text)
		if !verified && containsAny(normalized, verifyBonusPhrases) {
			verified = true
		}
		if !escalated && containsAny(normalized, escalateBonusPhrases) {
			escalated = true
		}
	}
	if verified {
		policy = capAt100(policy + 5)
		notes.add("Good practice: attempted to verify the caller's identity.")
	}
	if escalated {
		policy = capAt100(policy + 5)
		notes.add("Good practice: offered to escalate to a supervisor.")
	}

	if hasHighRiskTactic(tactics) && hasPattern(nearMisses, PatternVerificationBypassAgreement) {
		recognition -= recognitionPenalty
		notes.add("Missed recognition: agreed to bypass verification while a high-risk tactic was in play.")
	}

	leak = clampScore(leak)
	policy = clampScore(policy)
	recognition = clampScore(recognition)

	// Integer blend: equivalent to truncating 0.35*leak+0.40*policy+
	// 0.25*recognition without float rounding artifacts.
	overall := clampScore((35*leak + 40*policy + 25*recognition) / 100)

	return Score{
		Overall:         overall,
		LeakRisk:        leak,
		PolicyAdherence: policy,
		Recognition:     recognition,
		Notes:           notes.items,
	}
}

// noteList appends human-readable notes idempotently: an identical note
// string is recorded once.
type noteList struct {
	items []string
	seen  map[string]bool
}

func newNoteList() *noteList {
	return &noteList{seen: make(map[string]bool)}
}

func (n *noteList) add(note string) {
	if n.seen[note] {
		return
	}
	n.seen[note] = true
	n.items = append(n.items, note)
}

func containsAny(normalized string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(normalized, p) {
			return true
		}
	}
	return false
}

func hasHighRiskTactic(tactics []Tactic) bool {
	for _, t := range tactics {
		if highRiskTactics[t] {
			return true
		}
	}
	return false
}

func hasPattern(nearMisses []NearMiss, pattern string) bool {
	for _, nm := range nearMisses {
		if nm.Pattern == pattern {
			return true
		}
	}
	return false
}

func capAt100(v int) int {
	if v > 100 {
		return 100
	}
	return v
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
