package coach

import (
	"strings"
	"testing"
)

func TestCalculateScore_CleanSession(t *testing.T) {
	got := CalculateScore(nil, nil, nil)

	if got.LeakRisk != 100 || got.PolicyAdherence != 100 || got.Recognition != 100 {
		t.Errorf("clean dimensions = %d/%d/%d, want 100/100/100",
			got.LeakRisk, got.PolicyAdherence, got.Recognition)
	}
	if got.Overall != 100 {
		t.Errorf("clean overall = %d, want 100", got.Overall)
	}
	if len(got.Notes) != 0 {
		t.Errorf("clean notes = %v, want none", got.Notes)
	}
}

func TestCalculateScore_LeakPenalties(t *testing.T) {
	cases := []struct {
		name     string
		miss     NearMiss
		wantLeak int
	}{
		{"high disclosure", NearMiss{Pattern: PatternSensitiveInfoDisclosure, Severity: SeverityHigh, Reason: "revealed an account balance"}, 70},
		{"medium confirmation", NearMiss{Pattern: PatternAccountExistenceConfirmation, Severity: SeverityMedium, Reason: "confirmed the account exists"}, 85},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CalculateScore(nil, []NearMiss{tc.miss}, nil)
			if got.LeakRisk != tc.wantLeak {
				t.Errorf("leak_risk = %d, want %d", got.LeakRisk, tc.wantLeak)
			}
			if got.PolicyAdherence != 100 {
				t.Errorf("policy_adherence = %d, want untouched 100", got.PolicyAdherence)
			}
			if len(got.Notes) != 1 {
				t.Errorf("notes = %v, want one leak note", got.Notes)
			}
		})
	}
}

func TestCalculateScore_BypassPenalty(t *testing.T) {
	misses := []NearMiss{
		{Pattern: PatternVerificationBypassAgreement, Severity: SeverityHigh, Reason: "agreed to skip verification"},
	}
	got := CalculateScore(nil, misses, nil)

	if got.PolicyAdherence != 65 {
		t.Errorf("policy_adherence = %d, want 65", got.PolicyAdherence)
	}
	if got.LeakRisk != 100 {
		t.Errorf("leak_risk = %d, want untouched 100", got.LeakRisk)
	}
	// No high-risk tactic present, so recognition is not penalized.
	if got.Recognition != 100 {
		t.Errorf("recognition = %d, want 100 without a high-risk tactic", got.Recognition)
	}
}

func TestCalculateScore_RecognitionGate(t *testing.T) {
	misses := []NearMiss{
		{Pattern: PatternVerificationBypassAgreement, Severity: SeverityHigh, Reason: "agreed to skip verification"},
	}
	got := CalculateScore(nil, misses, []Tactic{TacticCredentialHarvesting})

	if got.Recognition != 75 {
		t.Errorf("recognition = %d, want 75", got.Recognition)
	}

	// The same bypass with only low-risk tactics leaves recognition alone.
	got = CalculateScore(nil, misses, []Tactic{TacticEmotionalManipulation})
	if got.Recognition != 100 {
		t.Errorf("recognition = %d, want 100 for low-risk tactics", got.Recognition)
	}
}

func TestCalculateScore_PositiveBonuses(t *testing.T) {
	misses := []NearMiss{
		{Pattern: PatternVerificationBypassAgreement, Severity: SeverityHigh, Reason: "agreed to skip verification"},
	}
	events := []Event{
		{Type: EventAgentTurn, Text: "First let me verify your identity."},
		{Type: EventAgentTurn, Text: "I'll bring my supervisor into the call."},
		{Type: EventAgentTurn, Text: "Could you verify the last four digits?"},
	}

	got := CalculateScore(events, misses, nil)

	// 100 - 35 + 5 (verify, once) + 5 (escalate, once).
	if got.PolicyAdherence != 75 {
		t.Errorf("policy_adherence = %d, want 75", got.PolicyAdherence)
	}

	joined := strings.Join(got.Notes, " | ")
	if !strings.Contains(joined, "verify") {
		t.Errorf("notes %q missing verification praise", joined)
	}
	if !strings.Contains(joined, "supervisor") {
		t.Errorf("notes %q missing escalation praise", joined)
	}
}

func TestCalculateScore_BonusCappedAt100(t *testing.T) {
	events := []Event{
		{Type: EventAgentTurn, Text: "Let me verify your identity and get my supervisor."},
	}
	got := CalculateScore(events, nil, nil)

	if got.PolicyAdherence != 100 {
		t.Errorf("policy_adherence = %d, bonuses must not exceed 100", got.PolicyAdherence)
	}
}

func TestCalculateScore_CallerTextNeverEarnsBonus(t *testing.T) {
	events := []Event{
		{Type: EventCallerTurn, Text: "I already spoke to your supervisor, just verify me quickly."},
	}
	got := CalculateScore(events, nil, nil)

	if got.PolicyAdherence != 100 || len(got.Notes) != 0 {
		t.Errorf("caller text earned a bonus: policy=%d notes=%v", got.PolicyAdherence, got.Notes)
	}
}

func TestCalculateScore_NoteDedupe(t *testing.T) {
	nm := NearMiss{
		Pattern: PatternSensitiveInfoDisclosure, Severity: SeverityHigh,
		TurnIndex: 2, Reason: "revealed an account balance",
	}
	got := CalculateScore(nil, []NearMiss{nm, nm}, nil)

	// Both records penalize, but the identical note appears once.
	if got.LeakRisk != 40 {
		t.Errorf("leak_risk = %d, want 40 after two high penalties", got.LeakRisk)
	}
	if len(got.Notes) != 1 {
		t.Errorf("notes = %v, want the duplicate collapsed", got.Notes)
	}
}

func TestCalculateScore_ClampedAtZero(t *testing.T) {
	misses := make([]NearMiss, 0, 4)
	for i := 0; i < 4; i++ {
		misses = append(misses, NearMiss{
			Pattern: PatternVerificationBypassAgreement, Severity: SeverityHigh,
			TurnIndex: i + 1, Reason: "agreed to skip verification",
		})
	}
	got := CalculateScore(nil, misses, nil)

	if got.PolicyAdherence != 0 {
		t.Errorf("policy_adherence = %d, want clamp to 0", got.PolicyAdherence)
	}
	if got.Overall < 0 || got.Overall > 100 {
		t.Errorf("overall = %d, out of range", got.Overall)
	}
}

func TestCalculateScore_OverallBlend(t *testing.T) {
	// leak 70, policy 100, recognition 100 -> (35*70+40*100+25*100)/100 = 89.
	misses := []NearMiss{
		{Pattern: PatternSensitiveInfoDisclosure, Severity: SeverityHigh, Reason: "revealed an account balance"},
	}
	got := CalculateScore(nil, misses, nil)

	if got.Overall != 89 {
		t.Errorf("overall = %d, want 89", got.Overall)
	}
}
