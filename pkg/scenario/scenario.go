// Package scenario holds the caller-line collaborator contract: given a
// scenario id, supply the ordered scripted caller lines with their tactic
// hints and audio references. The core treats the hints as opaque metadata,
// never as detection ground truth.
package scenario

import "errors"

// ErrNotFound reports a scenario lookup miss. The HTTP boundary surfaces
// it unchanged as SCENARIO_NOT_FOUND.
var ErrNotFound = errors.New("scenario not found")

// Line is one scripted caller line. AudioRef points at pre-rendered audio
// served elsewhere; the core only passes it through.
type Line struct {
	Position int      `yaml:"position" json:"position"`
	Text     string   `yaml:"text" json:"text"`
	Tactics  []string `yaml:"tactics,omitempty" json:"tactics,omitempty"`
	AudioRef string   `yaml:"audio_ref,omitempty" json:"audio_ref,omitempty"`
}

// Scenario is one scripted attack call.
type Scenario struct {
	ID         string `yaml:"id" json:"id"`
	Title      string `yaml:"title" json:"title"`
	Difficulty string `yaml:"difficulty,omitempty" json:"difficulty,omitempty"`
	Lines      []Line `yaml:"lines" json:"lines"`
}

// Provider resolves scenario ids to their scripted lines.
type Provider interface {
	// Has reports whether the scenario exists.
	Has(scenarioID string) bool

	// Get returns the full scenario, or ErrNotFound.
	Get(scenarioID string) (*Scenario, error)

	// Lines returns the ordered caller lines, or ErrNotFound.
	Lines(scenarioID string) ([]Line, error)
}
