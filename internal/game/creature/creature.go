// Package creature provides creature type definitions and the YAML-backed
// registry the battle engine reads stats from.
//
// The registry is an explicit dependency passed to callers, never a process
// global, so battles stay testable with hand-built types.
package creature

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Type defines one creature kind: the immutable stat block shared by every
// stack of that creature.
type Type struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Attack    int    `yaml:"attack"`
	Defense   int    `yaml:"defense"`
	MinDamage int    `yaml:"min_damage"`
	MaxDamage int    `yaml:"max_damage"`
	// Health is the hit points of a single creature.
	Health int `yaml:"health"`
	Speed  int `yaml:"speed"`
	// Shots is the ranged ammunition per battle; 0 means melee-only.
	Shots int `yaml:"shots"`
	// CanShootInMelee removes the ranged unit's melee damage penalty.
	CanShootInMelee bool `yaml:"can_shoot_in_melee"`
	// NoMeleeRetaliation means enemies never retaliate against this
	// creature's melee attacks.
	NoMeleeRetaliation bool `yaml:"no_melee_retaliation"`
	// Flying is reserved for movement planning; the battle core only
	// carries it through.
	Flying bool `yaml:"flying"`
}

// IsRanged reports whether the creature starts the battle with ammunition.
func (t *Type) IsRanged() bool {
	return t.Shots > 0
}

// Validate checks that the type satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, Health >= 1,
// Speed >= 0, 0 <= MinDamage <= MaxDamage, and Shots >= 0.
func (t *Type) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("creature type: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("creature type %q: name must not be empty", t.ID)
	}
	if t.Health < 1 {
		return fmt.Errorf("creature type %q: health must be >= 1", t.ID)
	}
	if t.Speed < 0 {
		return fmt.Errorf("creature type %q: speed must be >= 0", t.ID)
	}
	if t.Attack < 0 || t.Defense < 0 {
		return fmt.Errorf("creature type %q: attack and defense must be >= 0", t.ID)
	}
	if t.MinDamage < 0 {
		return fmt.Errorf("creature type %q: min_damage must be >= 0", t.ID)
	}
	if t.MaxDamage < t.MinDamage {
		return fmt.Errorf("creature type %q: max_damage %d is less than min_damage %d", t.ID, t.MaxDamage, t.MinDamage)
	}
	if t.Shots < 0 {
		return fmt.Errorf("creature type %q: shots must be >= 0", t.ID)
	}
	return nil
}

// Registry holds all known creature Types keyed by ID.
type Registry struct {
	types map[string]*Type
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*Type)}
}

// Register adds t to the registry, overwriting any existing entry with the same ID.
//
// Precondition: t must not be nil and t.ID must not be empty.
func (r *Registry) Register(t *Type) {
	r.types[t.ID] = t
}

// Get returns the Type for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Type, bool) {
	t, ok := r.types[id]
	return t, ok
}

// All returns a snapshot slice of all registered Types.
func (r *Registry) All() []*Type {
	out := make([]*Type, 0, len(r.types))
	for _, t := range r.types {
		out = append(out, t)
	}
	return out
}

// LoadTypeFromBytes parses a single creature type from raw YAML bytes.
// Unknown fields are rejected.
//
// Postcondition: Returns a validated *Type, or an error.
func LoadTypeFromBytes(data []byte) (*Type, error) {
	var t Type
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("parsing creature YAML: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadDirectory reads every *.yaml file in dir, parses each as a creature
// Type, and returns a populated Registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to
// parse or validate; on error the partial result is discarded.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading creature dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		t, err := LoadTypeFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		reg.Register(t)
	}
	return reg, nil
}
