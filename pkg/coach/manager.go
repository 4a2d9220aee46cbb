package coach

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// SESSION MANAGER
// ============================================================================
// Owns the session lifecycle state machine and wires the pure analysis
// functions together on every ingested event. All operations are bounded,
// synchronous, in-memory work; per-session serialization lives in the
// store's entry mutex.

// ScenarioChecker is the slice of the scenario collaborator the core needs
// at session creation: existence of the referenced scenario.
type ScenarioChecker interface {
	Has(scenarioID string) bool
}

// Manager orchestrates session lifecycle, turn ordering, idempotency, and
// analysis.
type Manager struct {
	store     *Store
	scenarios ScenarioChecker // optional; nil skips scenario validation
}

// ManagerOption is a functional option for configuring a Manager.
type ManagerOption func(*Manager)

// WithStore injects a session store (isolated stores for tests).
func WithStore(store *Store) ManagerOption {
	return func(m *Manager) {
		m.store = store
	}
}

// WithScenarios wires the scenario collaborator for creation-time
// validation.
func WithScenarios(sc ScenarioChecker) ManagerOption {
	return func(m *Manager) {
		m.scenarios = sc
	}
}

// NewManager creates a session manager with its own store unless one is
// injected.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{}
	for _, opt := range opts {
		opt(m)
	}
	if m.store == nil {
		m.store = NewStore()
	}
	return m
}

// Close releases the manager's store resources.
func (m *Manager) Close() {
	m.store.Close()
}

// Stats exposes store statistics for the health endpoint.
func (m *Manager) Stats() StoreStats {
	return m.store.Stats()
}

// CreateSession creates an empty session in status created. The scenario
// reference is validated against the collaborator when one is wired;
// a lookup miss surfaces unchanged as SCENARIO_NOT_FOUND.
func (m *Manager) CreateSession(scenarioID string, metadata map[string]string) (*SessionState, error) {
	if scenarioID == "" {
		return nil, NewError(CodeScenarioNotFound, "scenario_id is required")
	}
	if m.scenarios != nil && !m.scenarios.Has(scenarioID) {
		return nil, NewError(CodeScenarioNotFound, "scenario not found: %s", scenarioID)
	}

	now := time.Now().UTC()
	state := &SessionState{
		SessionID:         uuid.NewString(),
		ScenarioID:        scenarioID,
		Status:            StatusCreated,
		Events:            make([]Event, 0),
		SeenEventIDs:      make(map[string]struct{}),
		TacticCounts:      make(map[Tactic]int),
		NearMisses:        make([]NearMiss, 0),
		LatestRisk:        AssessRisk(nil, nil, nil),
		LatestSuggestions: GenerateSuggestions(nil, ""),
		LatestScore:       CalculateScore(nil, nil, nil),
		Metadata:          metadata,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := m.store.Add(state); err != nil {
		return nil, err
	}
	return state.Clone(), nil
}

// IngestResult acknowledges an ingest call. EventsProcessed counts the
// committed prefix of the batch and is meaningful on errors too: a failure
// partway through a batch leaves already-processed events committed and
// rejects the remainder.
type IngestResult struct {
	EventsProcessed int           `json:"events_processed"`
	SessionStatus   SessionStatus `json:"session_status"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// IngestEvents applies a batch of events in order, atomically per event.
func (m *Manager) IngestEvents(sessionID string, batch []SubmittedEvent) (IngestResult, error) {
	entry, ok := m.store.entry(sessionID)
	if !ok {
		return IngestResult{}, NewError(CodeSessionNotFound, "session not found: %s", sessionID)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	state := entry.state
	result := IngestResult{
		SessionStatus: state.Status,
		UpdatedAt:     state.UpdatedAt,
	}

	for i := range batch {
		if err := applyEvent(state, batch[i]); err != nil {
			result.SessionStatus = state.Status
			result.UpdatedAt = state.UpdatedAt
			return result, err
		}
		result.EventsProcessed++
		result.SessionStatus = state.Status
		result.UpdatedAt = state.UpdatedAt
	}

	return result, nil
}

// applyEvent runs the per-event ingestion algorithm. All validation happens
// before any mutation so a rejected event leaves the aggregate untouched.
func applyEvent(s *SessionState, sub SubmittedEvent) error {
	if s.Status.Terminal() {
		return NewError(CodeSessionNotLive, "session %s is %s and accepts no events", s.SessionID, s.Status)
	}
	if sub.EventID == "" {
		return NewError(CodeInvalidEvent, "event_id is required")
	}
	if _, seen := s.SeenEventIDs[sub.EventID]; seen {
		return NewError(CodeDuplicateEvent, "event %s was already processed", sub.EventID)
	}
	typ, err := ParseEventType(sub.Type)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	ev := Event{
		EventID:    sub.EventID,
		Type:       typ,
		Text:       sub.Text,
		Tactics:    append([]string(nil), sub.Tactics...),
		Timestamp:  sub.Timestamp,
		ReceivedAt: now,
	}

	// Turn-index assignment: only caller turns advance the counter. An
	// agent turn is the reply to the most recent caller turn (index 0 if
	// none has occurred); scenario_complete leaves the counter alone.
	switch typ {
	case EventCallerTurn:
		s.CurrentTurnIndex++
		ev.TurnIndex = s.CurrentTurnIndex
	default:
		ev.TurnIndex = s.CurrentTurnIndex
	}

	s.Events = append(s.Events, ev)
	s.SeenEventIDs[ev.EventID] = struct{}{}
	if s.Status == StatusCreated {
		s.Status = StatusLive
	}

	switch typ {
	case EventScenarioComplete:
		s.Status = StatusCompleted

	case EventCallerTurn:
		for _, t := range DetectTactics(ev.Text) {
			if s.TacticCounts[t] == 0 {
				s.TacticsDetected = append(s.TacticsDetected, t)
			}
			s.TacticCounts[t]++
		}
		s.LatestSuggestions = GenerateSuggestions(s.TacticsDetected, ev.Text)
		s.LatestRisk = AssessRisk(s.TacticsDetected, s.TacticCounts, s.NearMisses)

	case EventAgentTurn:
		s.NearMisses = append(s.NearMisses, DetectNearMisses(ev.Text, ev.TurnIndex, ev.EventID)...)
		s.LatestScore = CalculateScore(s.Events, s.NearMisses, s.TacticsDetected)
		s.LatestRisk = AssessRisk(s.TacticsDetected, s.TacticCounts, s.NearMisses)
	}

	s.UpdatedAt = now
	return nil
}

// Snapshot returns a point-in-time deep copy of the aggregate. When since
// is nonzero and the session has not changed after it, Snapshot returns
// (nil, false, nil): the expected, retry-safe not-modified outcome for
// cheap polling.
func (m *Manager) Snapshot(sessionID string, since time.Time) (*SessionState, bool, error) {
	entry, ok := m.store.entry(sessionID)
	if !ok {
		return nil, false, NewError(CodeSessionNotFound, "session not found: %s", sessionID)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if !since.IsZero() && !entry.state.UpdatedAt.After(since) {
		return nil, false, nil
	}
	return entry.state.Clone(), true, nil
}

// EventLog returns the full ordered event list for transcript
// reconstruction by a stateless client.
func (m *Manager) EventLog(sessionID string) ([]Event, error) {
	entry, ok := m.store.entry(sessionID)
	if !ok {
		return nil, NewError(CodeSessionNotFound, "session not found: %s", sessionID)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	log := make([]Event, len(entry.state.Events))
	copy(log, entry.state.Events)
	return log, nil
}

// FinalizeResult pairs the frozen report with the session's terminal
// status.
type FinalizeResult struct {
	SessionID string        `json:"session_id"`
	Status    SessionStatus `json:"status"`
	Report    *Report       `json:"report,omitempty"`
}

// Finalize freezes the session and returns its report. Idempotent: later
// calls return the same frozen report, never a recomputation.
func (m *Manager) Finalize(sessionID string) (FinalizeResult, error) {
	entry, ok := m.store.entry(sessionID)
	if !ok {
		return FinalizeResult{}, NewError(CodeSessionNotFound, "session not found: %s", sessionID)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	state := entry.state
	if state.FinalReport == nil {
		if !state.Status.Terminal() {
			state.Status = StatusCompleted
			state.UpdatedAt = time.Now().UTC()
		}
		state.FinalReport = buildReport(state)
	}

	return FinalizeResult{
		SessionID: state.SessionID,
		Status:    state.Status,
		Report:    state.FinalReport,
	}, nil
}
