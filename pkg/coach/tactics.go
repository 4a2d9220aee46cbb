package coach

import "strings"

// ============================================================================
// TACTIC DETECTOR
// ============================================================================
// Pure phrase matching against an immutable table mapping each of the eight
// canonical tactics to its trigger phrases. Runs only on caller-turn text.
// The line source's tactic hints are never consulted here; detection always
// re-derives labels from the text itself.

// tacticPhrases maps each canonical tactic to its trigger phrases. Phrases
// are matched case-insensitively as substrings of the normalized text.
// Keep phrases specific: these tables are matched against attacker script
// lines, and an overbroad phrase here double-fires tactics downstream in
// risk and suggestion computation.
var tacticPhrases = []struct {
	Tactic  Tactic
	Phrases []string
}{
	{TacticAuthorityImpersonation, []string{
		"this is the ceo",
		"this is your ceo",
		"i'm the ceo",
		"im the ceo",
		"this is the cfo",
		"this is your manager",
		"i'm your supervisor",
		"calling from it",
		"from the it department",
		"from the help desk",
		"from head office",
		"from the compliance department",
		"head of security",
		"on behalf of the director",
	}},
	{TacticUrgencyPressure, []string{
		"right now",
		"right away",
		"immediately",
		"urgent",
		"asap",
		"can't wait",
		"cannot wait",
		"before it's too late",
		"in the next few minutes",
		"time is running out",
		"there's no time",
	}},
	{TacticCredentialHarvesting, []string{
		"your password",
		"the password for",
		"read me the code",
		"one-time code",
		"one time code",
		"verification code",
		"security code",
		"mfa code",
		"2fa code",
		"pin number",
		"login details",
	}},
	{TacticIdentityBypass, []string{
		"skip the verification",
		"skip verification",
		"no need to verify",
		"don't need to verify",
		"without verification",
		"without verifying",
		"make an exception",
		"just this once",
		"bypass the check",
	}},
	{TacticThreatIntimidation, []string{
		"you'll be fired",
		"you will be fired",
		"lose your job",
		"i'll have your job",
		"report you",
		"face consequences",
		"get you in trouble",
		"your fault",
		"take this to your superiors",
	}},
	{TacticEmotionalManipulation, []string{
		"i'm begging",
		"i'm desperate",
		"my family",
		"have a heart",
		"you're the only one who can help",
		"i've been through so much",
		"i'm going to cry",
		"please help me, please",
	}},
	{TacticInformationProbing, []string{
		"what system do you use",
		"what software do you",
		"which vendor",
		"who handles",
		"who is in charge of",
		"who approves",
		"employee id",
		"internal extension",
		"what version of",
		"how many people work",
	}},
	{TacticCallbackEvasion, []string{
		"don't call back",
		"do not call back",
		"no need to call back",
		"can't be reached",
		"cannot be reached",
		"this number won't work",
		"don't try to call",
		"don't hang up",
		"stay on the line",
	}},
}

// DetectTactics returns the manipulation tactics present in caller text, in
// table order. Each tactic fires at most once per invocation even when
// several of its phrases match. Deterministic; never fails.
func DetectTactics(text string) []Tactic {
	if text == "" {
		return nil
	}
	normalized := normalizeText(text)

	var found []Tactic
	for _, entry := range tacticPhrases {
		for _, phrase := range entry.Phrases {
			if strings.Contains(normalized, phrase) {
				found = append(found, entry.Tactic)
				break
			}
		}
	}
	return found
}
