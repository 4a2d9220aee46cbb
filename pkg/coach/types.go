package coach

import (
	"fmt"
	"time"
)

// ============================================================================
// DEFENDER CORE TYPES
// ============================================================================
// Immutable record types plus the Session aggregate. Pure data; all state
// transitions and derived-state updates happen in the Manager.

// SessionStatus is the session lifecycle state.
// Transitions: created -> live -> completed, live -> abandoned.
// Terminal states never re-open.
type SessionStatus string

const (
	StatusCreated   SessionStatus = "created"
	StatusLive      SessionStatus = "live"
	StatusCompleted SessionStatus = "completed"
	StatusAbandoned SessionStatus = "abandoned"
)

// Terminal reports whether the status accepts no further events.
func (s SessionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusAbandoned
}

// EventType is a closed enumeration. Unknown tags are rejected at the
// Manager boundary, never silently ignored.
type EventType string

const (
	EventCallerTurn       EventType = "caller_turn"
	EventAgentTurn        EventType = "agent_turn"
	EventScenarioComplete EventType = "scenario_complete"
)

// ParseEventType validates a client-supplied type tag.
func ParseEventType(s string) (EventType, error) {
	switch EventType(s) {
	case EventCallerTurn, EventAgentTurn, EventScenarioComplete:
		return EventType(s), nil
	default:
		return "", NewError(CodeInvalidEventType, "unknown event type: %q", s)
	}
}

// Tactic is one of the eight canonical manipulation techniques. The detector
// can never emit a label outside this enumeration.
type Tactic string

const (
	TacticAuthorityImpersonation Tactic = "authority_impersonation"
	TacticUrgencyPressure        Tactic = "urgency_pressure"
	TacticCredentialHarvesting   Tactic = "credential_harvesting"
	TacticIdentityBypass         Tactic = "identity_bypass"
	TacticThreatIntimidation     Tactic = "threat_intimidation"
	TacticEmotionalManipulation  Tactic = "emotional_manipulation"
	TacticInformationProbing     Tactic = "information_probing"
	TacticCallbackEvasion        Tactic = "callback_evasion"
)

// Severity grades a near-miss pattern.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// RiskLevel labels the cumulative manipulation pressure in a session.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// SubmittedEvent is the client payload for one event in an ingest batch.
// The turn index is never client-supplied; the Manager assigns it.
type SubmittedEvent struct {
	EventID   string    `json:"event_id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
	Tactics   []string  `json:"tactics,omitempty"`
}

// Event is one accepted trainee- or attacker-turn, or a terminal marker.
type Event struct {
	EventID   string    `json:"event_id"`
	Type      EventType `json:"type"`
	TurnIndex int       `json:"turn_index"`
	Text      string    `json:"text,omitempty"`

	// Tactics is the hint list from the caller-line source. It is an
	// untrusted annotation kept for summary reporting only; detection
	// always re-derives tactics from the text.
	Tactics []string `json:"tactics,omitempty"`

	Timestamp  time.Time `json:"timestamp"`   // client-asserted
	ReceivedAt time.Time `json:"received_at"` // server-asserted
}

// NearMiss records a trainee-reply pattern that nearly violated policy.
// Near-misses accumulate for the life of the session; they are never
// removed or merged.
type NearMiss struct {
	Pattern   string   `json:"pattern"`
	Severity  Severity `json:"severity"`
	Reason    string   `json:"reason"`
	TurnIndex int      `json:"turn_index"`
	EventID   string   `json:"event_id"`
}

// Suggestion is one categorized safe-reply script.
type Suggestion struct {
	Category string `json:"category"`
	Text     string `json:"text"`
}

// RiskAssessment summarizes cumulative manipulation pressure at a point in
// time. EscalationScore is always within [0.0, 1.0].
type RiskAssessment struct {
	Level           RiskLevel `json:"level"`
	EscalationScore float64   `json:"escalation_score"`
	Reasons         []string  `json:"reasons,omitempty"`
}

// Score is the four-dimension trainee score. All dimensions are clamped to
// [0, 100].
type Score struct {
	Overall         int      `json:"overall"`
	LeakRisk        int      `json:"leak_risk"`
	PolicyAdherence int      `json:"policy_adherence"`
	Recognition     int      `json:"recognition"`
	Notes           []string `json:"notes,omitempty"`
}

// TacticCount is one row of a report's tactics_used_summary.
type TacticCount struct {
	Tactic Tactic `json:"tactic"`
	Count  int    `json:"count"`
}

// Report is the frozen end-of-session report produced by Finalize.
type Report struct {
	SessionID       string        `json:"session_id"`
	ScenarioID      string        `json:"scenario_id"`
	DurationSeconds float64       `json:"duration_seconds"`
	TurnsCompleted  int           `json:"turns_completed"`
	TacticsUsed     []TacticCount `json:"tactics_used_summary"`
	NearMisses      []NearMiss    `json:"near_misses"`
	Score           Score         `json:"score"`
	CoachNotes      []string      `json:"coach_notes"`
	Grade           string        `json:"grade"`
	Passed          bool          `json:"passed"`
	GeneratedAt     time.Time     `json:"generated_at"`
}

// SessionState is the aggregate root, one per training attempt.
// CurrentTurnIndex is the single canonical ordering authority for the whole
// system: it only increases, and only caller turns increment it.
type SessionState struct {
	SessionID  string        `json:"session_id"`
	ScenarioID string        `json:"scenario_id"`
	Status     SessionStatus `json:"status"`

	CurrentTurnIndex int     `json:"current_turn_index"`
	Events           []Event `json:"events"`

	// SeenEventIDs is the idempotency ledger. Grows monotonically,
	// never shrinks.
	SeenEventIDs map[string]struct{} `json:"-"`

	// Derived aggregate state. TacticsDetected preserves first-seen
	// order for display; LatestSuggestions always has length 3.
	TacticsDetected   []Tactic       `json:"tactics_detected"`
	TacticCounts      map[Tactic]int `json:"tactic_counts"`
	NearMisses        []NearMiss     `json:"near_misses"`
	LatestRisk        RiskAssessment `json:"risk"`
	LatestSuggestions []Suggestion   `json:"suggestions"`
	LatestScore       Score          `json:"score"`

	Metadata map[string]string `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// FinalReport is set once by Finalize and reused on every later
	// call; the report is immutable after creation.
	FinalReport *Report `json:"-"`
}

// Clone returns a deep copy safe to hand to readers while the aggregate
// keeps mutating. The frozen report pointer is shared because the report
// never changes after Finalize.
func (s *SessionState) Clone() *SessionState {
	if s == nil {
		return nil
	}
	c := *s

	c.Events = append([]Event(nil), s.Events...)
	for i := range c.Events {
		c.Events[i].Tactics = append([]string(nil), s.Events[i].Tactics...)
	}

	c.SeenEventIDs = make(map[string]struct{}, len(s.SeenEventIDs))
	for id := range s.SeenEventIDs {
		c.SeenEventIDs[id] = struct{}{}
	}

	c.TacticsDetected = append([]Tactic(nil), s.TacticsDetected...)
	c.TacticCounts = make(map[Tactic]int, len(s.TacticCounts))
	for t, n := range s.TacticCounts {
		c.TacticCounts[t] = n
	}
	c.NearMisses = append([]NearMiss(nil), s.NearMisses...)
	c.LatestSuggestions = append([]Suggestion(nil), s.LatestSuggestions...)
	c.LatestRisk.Reasons = append([]string(nil), s.LatestRisk.Reasons...)
	c.LatestScore.Notes = append([]string(nil), s.LatestScore.Notes...)

	if s.Metadata != nil {
		c.Metadata = make(map[string]string, len(s.Metadata))
		for k, v := range s.Metadata {
			c.Metadata[k] = v
		}
	}

	return &c
}

// String implements fmt.Stringer for log lines.
func (s *SessionState) String() string {
	return fmt.Sprintf("session %s [%s] scenario=%s turn=%d events=%d",
		s.SessionID, s.Status, s.ScenarioID, s.CurrentTurnIndex, len(s.Events))
}
