package coach

// ============================================================================
// SUGGESTION GENERATOR
// ============================================================================
// Three fixed reply categories, each with a default script and zero or more
// tactic-keyed overrides. Overrides apply independently per category; when
// several detected tactics could override the same category, the first
// matching entry in that category's override list wins. Order in the table
// IS the priority contract:
//
//   policy_safe:       credential_harvesting > information_probing
//   deescalate:        threat_intimidation > urgency_pressure > emotional_manipulation
//   boundary_redirect: callback_evasion > authority_impersonation > identity_bypass

const (
	SuggestionPolicySafe       = "policy_safe"
	SuggestionDeescalate       = "deescalate"
	SuggestionBoundaryRedirect = "boundary_redirect"
)

type suggestionOverride struct {
	Tactic Tactic
	Text   string
}

var suggestionTemplates = []struct {
	Category    string
	DefaultText string
	Overrides   []suggestionOverride // priority order, first present tactic wins
}{
	{
		Category:    SuggestionPolicySafe,
		DefaultText: "I can help with that as soon as we complete the standard identity verification.",
		Overrides: []suggestionOverride{
			{TacticCredentialHarvesting, "I'm not able to share or reset credentials over the phone. I can send a secure reset link to the contact we have on file."},
			{TacticInformationProbing, "I can't discuss account or internal details until verification is complete."},
		},
	},
	{
		Category:    SuggestionDeescalate,
		DefaultText: "I understand. Let me make sure I handle this correctly for you.",
		Overrides: []suggestionOverride{
			{TacticThreatIntimidation, "I hear your frustration. I follow the same process for every caller, and I'll get you to the right person."},
			{TacticUrgencyPressure, "I understand this feels urgent. Verification only takes a moment, and then I can help right away."},
			{TacticEmotionalManipulation, "I'm sorry you're dealing with this. Walking through the standard process is the fastest way for me to actually help."},
		},
	},
	{
		Category:    SuggestionBoundaryRedirect,
		DefaultText: "For account changes I'll need to route you through our standard support process.",
		Overrides: []suggestionOverride{
			{TacticCallbackEvasion, "I'll call you back at the number we have on file for this account. That's the only way I can continue."},
			{TacticAuthorityImpersonation, "I'm required to verify every caller the same way, regardless of role or title."},
			{TacticIdentityBypass, "I can't skip verification for any reason. Once it's done I'm happy to help."},
		},
	},
}

// GenerateSuggestions returns exactly three categorized reply suggestions
// for the accumulated tactic set. The latest caller line travels with the
// call so category templates can stay aligned with what the trainee just
// heard; the current templates key on tactic presence alone. Deterministic;
// always length 3, including for an empty tactic set.
func GenerateSuggestions(tactics []Tactic, latestCallerText string) []Suggestion {
	_ = latestCallerText

	present := make(map[Tactic]bool, len(tactics))
	for _, t := range tactics {
		present[t] = true
	}

	out := make([]Suggestion, 0, len(suggestionTemplates))
	for _, tmpl := range suggestionTemplates {
		text := tmpl.DefaultText
		for _, ov := range tmpl.Overrides {
			if present[ov.Tactic] {
				text = ov.Text
				break
			}
		}
		out = append(out, Suggestion{Category: tmpl.Category, Text: text})
	}
	return out
}
