package coach

import "sort"

// ============================================================================
// REPORT SYNTHESIS
// ============================================================================

// Overall-score bands for the leading coach note.
const (
	reportBandStrong   = 80
	reportBandAdequate = 60
)

// Letter-grade bands and the pass threshold.
const (
	gradeABand    = 90
	gradeBBand    = 80
	gradeCBand    = 70
	gradeDBand    = 60
	passThreshold = 60
)

// buildReport synthesizes the end-of-session report from the frozen
// aggregate. Called once per session under the entry lock; the result is
// immutable afterwards, which is what makes Finalize idempotent.
func buildReport(s *SessionState) *Report {
	return &Report{
		SessionID:       s.SessionID,
		ScenarioID:      s.ScenarioID,
		DurationSeconds: sessionDuration(s.Events),
		TurnsCompleted:  s.CurrentTurnIndex,
		TacticsUsed:     tacticSummary(s),
		NearMisses:      append([]NearMiss(nil), s.NearMisses...),
		Score:           s.LatestScore,
		CoachNotes:      coachNotes(s.LatestScore),
		Grade:           letterGrade(s.LatestScore.Overall),
		Passed:          s.LatestScore.Overall >= passThreshold,
		GeneratedAt:     s.UpdatedAt,
	}
}

// sessionDuration is the real elapsed time between the first and last
// event, from server-asserted receive times. Zero with fewer than two
// events.
func sessionDuration(events []Event) float64 {
	if len(events) < 2 {
		return 0
	}
	first := events[0].ReceivedAt
	last := events[len(events)-1].ReceivedAt
	return last.Sub(first).Seconds()
}

// tacticSummary lists tactic counts sorted by descending count. First-seen
// order breaks ties so repeated finalize output is byte-stable.
func tacticSummary(s *SessionState) []TacticCount {
	summary := make([]TacticCount, 0, len(s.TacticsDetected))
	for _, t := range s.TacticsDetected {
		summary = append(summary, TacticCount{Tactic: t, Count: s.TacticCounts[t]})
	}
	sort.SliceStable(summary, func(i, j int) bool {
		return summary[i].Count > summary[j].Count
	})
	return summary
}

// coachNotes leads with a summary note keyed by the overall-score band,
// followed by the score's own accumulated notes.
func coachNotes(score Score) []string {
	var lead string
	switch {
	case score.Overall >= reportBandStrong:
		lead = "Strong performance: the caller's pressure was handled without significant policy slips."
	case score.Overall >= reportBandAdequate:
		lead = "Adequate handling overall. Review the flagged moments below before the next drill."
	default:
		lead = "High-risk handling: core verification policy broke down under pressure. A repeat drill is recommended."
	}

	notes := make([]string, 0, len(score.Notes)+1)
	notes = append(notes, lead)
	notes = append(notes, score.Notes...)
	return notes
}

func letterGrade(overall int) string {
	switch {
	case overall >= gradeABand:
		return "A"
	case overall >= gradeBBand:
		return "B"
	case overall >= gradeCBand:
		return "C"
	case overall >= gradeDBand:
		return "D"
	default:
		return "F"
	}
}
