package scenario

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed scenarios.yaml
var builtinPack []byte

// YAMLProvider serves scenarios from a YAML pack loaded once at startup.
// Lookups are read-only after construction, so no locking is needed.
type YAMLProvider struct {
	byID  map[string]*Scenario
	order []string
}

type packFile struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// NewYAMLProvider parses a scenario pack from raw YAML.
func NewYAMLProvider(data []byte) (*YAMLProvider, error) {
	var pack packFile
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("parse scenario pack: %w", err)
	}
	if len(pack.Scenarios) == 0 {
		return nil, fmt.Errorf("scenario pack contains no scenarios")
	}

	p := &YAMLProvider{byID: make(map[string]*Scenario, len(pack.Scenarios))}
	for i := range pack.Scenarios {
		sc := pack.Scenarios[i]
		if sc.ID == "" {
			return nil, fmt.Errorf("scenario at index %d has no id", i)
		}
		if _, dup := p.byID[sc.ID]; dup {
			return nil, fmt.Errorf("duplicate scenario id: %s", sc.ID)
		}
		// Lines play in position order regardless of file order.
		sort.SliceStable(sc.Lines, func(a, b int) bool {
			return sc.Lines[a].Position < sc.Lines[b].Position
		})
		p.byID[sc.ID] = &sc
		p.order = append(p.order, sc.ID)
	}
	return p, nil
}

// NewBuiltinProvider loads the embedded default pack.
func NewBuiltinProvider() (*YAMLProvider, error) {
	return NewYAMLProvider(builtinPack)
}

// LoadFile loads a scenario pack from disk, for deployments that override
// the built-in pack.
func LoadFile(path string) (*YAMLProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario pack %s: %w", path, err)
	}
	return NewYAMLProvider(data)
}

// Has reports whether the scenario exists.
func (p *YAMLProvider) Has(scenarioID string) bool {
	_, ok := p.byID[scenarioID]
	return ok
}

// Get returns the scenario, or ErrNotFound.
func (p *YAMLProvider) Get(scenarioID string) (*Scenario, error) {
	sc, ok := p.byID[scenarioID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, scenarioID)
	}
	out := *sc
	out.Lines = append([]Line(nil), sc.Lines...)
	return &out, nil
}

// Lines returns the ordered caller lines, or ErrNotFound.
func (p *YAMLProvider) Lines(scenarioID string) ([]Line, error) {
	sc, ok := p.byID[scenarioID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, scenarioID)
	}
	return append([]Line(nil), sc.Lines...), nil
}

// IDs lists known scenario ids in pack order.
func (p *YAMLProvider) IDs() []string {
	return append([]string(nil), p.order...)
}

// Ensure YAMLProvider implements Provider.
var _ Provider = (*YAMLProvider)(nil)
