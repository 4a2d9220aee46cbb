package coach

import "fmt"

// ============================================================================
// RISK ASSESSOR
// ============================================================================
// Deterministic weighted sum over the accumulated tactic set and near-miss
// list, clamped to [0,1] and mapped to a label by fixed thresholds. This is
// recomputed from the full accumulated state on every caller and agent turn
// rather than maintained incrementally, so it can never drift from the
// tactic/near-miss sets it explains.

// Fixed severity tiers for the eight tactics.
var tacticTiers = map[Tactic]Severity{
	TacticCredentialHarvesting:   SeverityHigh,
	TacticIdentityBypass:         SeverityHigh,
	TacticThreatIntimidation:     SeverityHigh,
	TacticAuthorityImpersonation: SeverityMedium,
	TacticUrgencyPressure:        SeverityMedium,
	TacticInformationProbing:     SeverityMedium,
	TacticEmotionalManipulation:  SeverityLow,
	TacticCallbackEvasion:        SeverityLow,
}

// Fixed contribution weights.
const (
	riskWeightTacticHigh   = 0.25
	riskWeightTacticMedium = 0.15
	riskWeightTacticLow    = 0.05

	riskWeightNearMissHigh   = 0.20
	riskWeightNearMissMedium = 0.10
	// Low-severity near-misses never move the score.
)

// Label thresholds: < 0.25 low, < 0.50 medium, < 0.75 high, else critical.
const (
	riskThresholdMedium   = 0.25
	riskThresholdHigh     = 0.50
	riskThresholdCritical = 0.75
)

// AssessRisk computes a point-in-time risk assessment from the full
// accumulated tactic set and near-miss list. Each detected tactic
// contributes its tier weight once, regardless of how often it recurred;
// counts appear in the explanation trail only. Deterministic; never fails.
func AssessRisk(tactics []Tactic, counts map[Tactic]int, nearMisses []NearMiss) RiskAssessment {
	score := 0.0
	var reasons []string

	for _, t := range tactics {
		tier := tacticTiers[t]
		var w float64
		switch tier {
		case SeverityHigh:
			w = riskWeightTacticHigh
		case SeverityMedium:
			w = riskWeightTacticMedium
		default:
			w = riskWeightTacticLow
		}
		score += w
		reasons = append(reasons, fmt.Sprintf("%s severity tactic: %s (seen %dx)", tier, t, counts[t]))
	}

	var highN, medN, lowN int
	for _, nm := range nearMisses {
		switch nm.Severity {
		case SeverityHigh:
			highN++
		case SeverityMedium:
			medN++
		default:
			lowN++
		}
	}
	if highN > 0 {
		score += float64(highN) * riskWeightNearMissHigh
		reasons = append(reasons, fmt.Sprintf("%d high severity near miss(es)", highN))
	}
	if medN > 0 {
		score += float64(medN) * riskWeightNearMissMedium
		reasons = append(reasons, fmt.Sprintf("%d medium severity near miss(es)", medN))
	}
	if lowN > 0 {
		reasons = append(reasons, fmt.Sprintf("%d low severity near miss(es), not scored", lowN))
	}

	if score > 1.0 {
		score = 1.0
	}

	return RiskAssessment{
		Level:           riskLabel(score),
		EscalationScore: score,
		Reasons:         reasons,
	}
}

func riskLabel(score float64) RiskLevel {
	switch {
	case score < riskThresholdMedium:
		return RiskLow
	case score < riskThresholdHigh:
		return RiskMedium
	case score < riskThresholdCritical:
		return RiskHigh
	default:
		return RiskCritical
	}
}
