package coach

import (
	"strings"
	"testing"
)

func TestAssessRisk_Empty(t *testing.T) {
	got := AssessRisk(nil, nil, nil)
	if got.EscalationScore != 0 {
		t.Errorf("empty escalation score = %v, want 0", got.EscalationScore)
	}
	if got.Level != RiskLow {
		t.Errorf("empty level = %s, want low", got.Level)
	}
	if len(got.Reasons) != 0 {
		t.Errorf("empty reasons = %v, want none", got.Reasons)
	}
}

func TestAssessRisk_TwoMediumTactics(t *testing.T) {
	tactics := []Tactic{TacticAuthorityImpersonation, TacticUrgencyPressure}
	counts := map[Tactic]int{TacticAuthorityImpersonation: 1, TacticUrgencyPressure: 2}

	got := AssessRisk(tactics, counts, nil)
	if got.EscalationScore != 0.30 {
		t.Errorf("escalation score = %v, want 0.30", got.EscalationScore)
	}
	if got.Level != RiskMedium {
		t.Errorf("level = %s, want medium", got.Level)
	}
	if len(got.Reasons) != 2 {
		t.Errorf("reasons = %v, want one per tactic", got.Reasons)
	}
}

func TestAssessRisk_NearMissBuckets(t *testing.T) {
	misses := []NearMiss{
		{Pattern: PatternCredentialDisclosure, Severity: SeverityHigh},
		{Pattern: PatternSensitiveInfoDisclosure, Severity: SeverityHigh},
		{Pattern: PatternAccountExistenceConfirmation, Severity: SeverityMedium},
		{Pattern: PatternExcessiveTrust, Severity: SeverityLow},
	}

	got := AssessRisk(nil, nil, misses)

	// 2 high * 0.20 + 1 medium * 0.10; the low bucket adds nothing.
	if got.EscalationScore != 0.50 {
		t.Errorf("escalation score = %v, want 0.50", got.EscalationScore)
	}
	if got.Level != RiskHigh {
		t.Errorf("level = %s, want high", got.Level)
	}

	// One summary reason per nonzero severity bucket, including low.
	if len(got.Reasons) != 3 {
		t.Errorf("reasons = %v, want 3 bucket summaries", got.Reasons)
	}
	joined := strings.Join(got.Reasons, " | ")
	for _, want := range []string{"2 high", "1 medium", "1 low"} {
		if !strings.Contains(joined, want) {
			t.Errorf("reasons %q missing %q", joined, want)
		}
	}
}

func TestAssessRisk_ClampedToOne(t *testing.T) {
	tactics := []Tactic{
		TacticCredentialHarvesting, TacticIdentityBypass, TacticThreatIntimidation,
		TacticAuthorityImpersonation, TacticUrgencyPressure, TacticInformationProbing,
	}
	misses := []NearMiss{
		{Pattern: PatternCredentialDisclosure, Severity: SeverityHigh},
		{Pattern: PatternVerificationBypassAgreement, Severity: SeverityHigh},
	}

	got := AssessRisk(tactics, map[Tactic]int{}, misses)
	if got.EscalationScore != 1.0 {
		t.Errorf("escalation score = %v, want clamp to 1.0", got.EscalationScore)
	}
	if got.Level != RiskCritical {
		t.Errorf("level = %s, want critical", got.Level)
	}
}

func TestRiskLabel_Thresholds(t *testing.T) {
	cases := []struct {
		score float64
		want  RiskLevel
	}{
		{0.0, RiskLow},
		{0.24, RiskLow},
		{0.25, RiskMedium},
		{0.49, RiskMedium},
		{0.50, RiskHigh},
		{0.74, RiskHigh},
		{0.75, RiskCritical},
		{1.0, RiskCritical},
	}
	for _, tc := range cases {
		if got := riskLabel(tc.score); got != tc.want {
			t.Errorf("riskLabel(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}
