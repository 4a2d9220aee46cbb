package coach

import "strings"

// ============================================================================
// NEAR-MISS DETECTOR
// ============================================================================
// Pure phrase matching against an immutable table of named policy-violation
// patterns, each with a fixed severity and reason. Runs only on trainee
// (agent-turn) text. At most one NearMiss per pattern per invocation;
// distinct patterns on the same turn each produce their own record.

// Near-miss pattern names. The scorer groups these into two families:
// information disclosure (leak_risk penalties) and bypass/trust
// (policy_adherence penalties).
const (
	PatternCredentialDisclosure         = "credential_disclosure"
	PatternAccountExistenceConfirmation = "account_existence_confirmation"
	PatternVerificationBypassAgreement  = "verification_bypass_agreement"
	PatternSensitiveInfoDisclosure      = "sensitive_info_disclosure"
	PatternExcessiveTrust               = "excessive_trust"
)

// nearMissPatterns is the fixed violation table. Severity and reason are
// part of the contract; tests pin them.
var nearMissPatterns = []struct {
	Name     string
	Severity Severity
	Reason   string
	Phrases  []string
}{
	{
		Name:     PatternCredentialDisclosure,
		Severity: SeverityHigh,
		Reason:   "shared a credential or reset secret with an unverified caller",
		Phrases: []string{
			"your password is",
			"the password is",
			"your pin is",
			"the code is",
			"your code is",
			"temporary password",
			"i'll reset it to",
			"i will reset it to",
		},
	},
	{
		Name:     PatternAccountExistenceConfirmation,
		Severity: SeverityMedium,
		Reason:   "confirmed that an account exists to an unverified caller",
		Phrases: []string{
			"i see your account",
			"i can see your account",
			"found your account",
			"your account exists",
			"you do have an account",
			"pulling up your account",
		},
	},
	{
		Name:     PatternVerificationBypassAgreement,
		Severity: SeverityHigh,
		Reason:   "agreed to bypass identity verification",
		Phrases: []string{
			"skip the verification",
			"skip verification",
			"no need to verify",
			"won't need to verify",
			"we can skip",
			"without verifying you",
			"i'll make an exception",
			"just this once",
		},
	},
	{
		Name:     PatternSensitiveInfoDisclosure,
		Severity: SeverityHigh,
		Reason:   "disclosed sensitive account information",
		Phrases: []string{
			"your balance is",
			"your address is",
			"your ssn",
			"social security number",
			"card ending in",
			"your date of birth",
			"account number is",
			"last transaction was",
		},
	},
	{
		Name:     PatternExcessiveTrust,
		Severity: SeverityLow,
		Reason:   "complied unconditionally without any verification",
		Phrases: []string{
			"of course, right away",
			"anything you need",
			"no problem at all",
			"i trust you",
			"whatever you say",
			"you're the boss",
		},
	},
}

// DetectNearMisses returns the policy-violation candidates present in
// trainee text, stamped with the turn index and event id they occurred on.
// Multiple phrase hits for one pattern collapse to a single record.
// Deterministic; never fails.
func DetectNearMisses(text string, turnIndex int, eventID string) []NearMiss {
	if text == "" {
		return nil
	}
	normalized := normalizeText(text)

	var found []NearMiss
	for _, p := range nearMissPatterns {
		for _, phrase := range p.Phrases {
			if strings.Contains(normalized, phrase) {
				found = append(found, NearMiss{
					Pattern:   p.Name,
					Severity:  p.Severity,
					Reason:    p.Reason,
					TurnIndex: turnIndex,
					EventID:   eventID,
				})
				break
			}
		}
	}
	return found
}
