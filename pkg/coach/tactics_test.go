package coach

import "testing"

func tacticSet(tactics []Tactic) map[Tactic]bool {
	set := make(map[Tactic]bool, len(tactics))
	for _, t := range tactics {
		set[t] = true
	}
	return set
}

func TestDetectTactics_CEOLine(t *testing.T) {
	got := DetectTactics("Hi, this is the CEO. I need you to reset my MFA right now.")

	set := tacticSet(got)
	if !set[TacticAuthorityImpersonation] {
		t.Errorf("expected authority_impersonation, got %v", got)
	}
	if !set[TacticUrgencyPressure] {
		t.Errorf("expected urgency_pressure, got %v", got)
	}
	if len(got) != 2 {
		t.Errorf("expected exactly 2 tactics, got %d: %v", len(got), got)
	}
}

func TestDetectTactics_PerTactic(t *testing.T) {
	cases := []struct {
		name string
		text string
		want Tactic
	}{
		{"authority", "This is your manager calling about the audit.", TacticAuthorityImpersonation},
		{"urgency", "We have to do this immediately or we lose the account.", TacticUrgencyPressure},
		{"credentials", "Just read me the code from your phone.", TacticCredentialHarvesting},
		{"bypass", "You can skip the verification, I'm in a hurry.", TacticIdentityBypass},
		{"threat", "If you don't help me you'll be fired by Monday.", TacticThreatIntimidation},
		{"emotional", "Please, I'm begging you, I can't lose this.", TacticEmotionalManipulation},
		{"probing", "Quick question: what system do you use for payroll?", TacticInformationProbing},
		{"callback", "Don't call back, this line can't be reached after today.", TacticCallbackEvasion},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DetectTactics(tc.text)
			if !tacticSet(got)[tc.want] {
				t.Errorf("DetectTactics(%q) = %v, want to include %s", tc.text, got, tc.want)
			}
		})
	}
}

func TestDetectTactics_CaseAndWidthInsensitive(t *testing.T) {
	// Uppercase and fullwidth forms must hit the same table entries.
	for _, text := range []string{
		"DO IT RIGHT NOW",
		"do it ｒｉｇｈｔ ｎｏｗ",
	} {
		got := DetectTactics(text)
		if !tacticSet(got)[TacticUrgencyPressure] {
			t.Errorf("DetectTactics(%q) = %v, want urgency_pressure", text, got)
		}
	}
}

func TestDetectTactics_FiresOncePerTactic(t *testing.T) {
	// Two urgency phrases in one line still yield a single label.
	got := DetectTactics("This is urgent, do it right now.")
	count := 0
	for _, tac := range got {
		if tac == TacticUrgencyPressure {
			count++
		}
	}
	if count != 1 {
		t.Errorf("urgency_pressure fired %d times, want 1", count)
	}
}

func TestDetectTactics_Benign(t *testing.T) {
	for _, text := range []string{
		"",
		"Hello, I'd like to check my order status please.",
		"Thanks for your help yesterday.",
	} {
		if got := DetectTactics(text); len(got) != 0 {
			t.Errorf("DetectTactics(%q) = %v, want none", text, got)
		}
	}
}

func TestTacticTable_ClosedEnumeration(t *testing.T) {
	known := map[Tactic]bool{
		TacticAuthorityImpersonation: true,
		TacticUrgencyPressure:        true,
		TacticCredentialHarvesting:   true,
		TacticIdentityBypass:         true,
		TacticThreatIntimidation:     true,
		TacticEmotionalManipulation:  true,
		TacticInformationProbing:     true,
		TacticCallbackEvasion:        true,
	}
	if len(tacticPhrases) != 8 {
		t.Fatalf("tactic table has %d entries, want exactly 8", len(tacticPhrases))
	}
	for _, entry := range tacticPhrases {
		if !known[entry.Tactic] {
			t.Errorf("tactic table emits label outside the enumeration: %s", entry.Tactic)
		}
		if len(entry.Phrases) == 0 {
			t.Errorf("tactic %s has no trigger phrases", entry.Tactic)
		}
	}
}
