// Package tray holds the dice tray state: the dice-set catalog, the selection,
// roll lifecycle and history stores, and the Tray orchestrator that ties them
// to the roll engine.
package tray

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/dicetray/internal/game/dice"
)

// DefaultSetID is the dice set used when no catalog directory is configured.
const DefaultSetID = "GALAXY_STANDARD"

// DieType identifies a rollable die by dice set and face count.
type DieType struct {
	SetID string
	Faces int
}

// String renders the die as "<set>_D<faces>", e.g. "GALAXY_STANDARD_D20".
func (t DieType) String() string {
	return fmt.Sprintf("%s_D%d", t.SetID, t.Faces)
}

// Less orders die types by set id, then by face count.
func (t DieType) Less(o DieType) bool {
	if t.SetID != o.SetID {
		return t.SetID < o.SetID
	}
	return t.Faces < o.Faces
}

// Die describes one die of a dice set.
type Die struct {
	Type  DieType
	Style string
}

// DiceSet is a named group of dice. Dice are ordered by face count.
type DiceSet struct {
	ID    string
	Name  string
	Style string
	Dice  []Die

	defaults DiceCounts
}

// Die returns the set's die with the given face count.
func (s *DiceSet) Die(faces int) (Die, bool) {
	for _, d := range s.Dice {
		if d.Type.Faces == faces {
			return d, true
		}
	}
	return Die{}, false
}

// Baseline returns a copy of the set's default loadout.
func (s *DiceSet) Baseline() DiceCounts {
	return s.defaults.Clone()
}

type diceSetFile struct {
	ID    string       `yaml:"id"`
	Name  string       `yaml:"name"`
	Style string       `yaml:"style"`
	Dice  []diceSetDie `yaml:"dice"`
}

type diceSetDie struct {
	Faces        int    `yaml:"faces"`
	Style        string `yaml:"style"`
	DefaultCount int    `yaml:"default_count"`
}

func (f diceSetFile) build() (*DiceSet, error) {
	if f.ID == "" {
		return nil, fmt.Errorf("dice set id must not be empty")
	}
	if len(f.Dice) == 0 {
		return nil, fmt.Errorf("dice set %q has no dice", f.ID)
	}
	set := &DiceSet{ID: f.ID, Name: f.Name, Style: f.Style, defaults: DiceCounts{}}
	if set.Name == "" {
		set.Name = f.ID
	}
	seen := make(map[int]bool, len(f.Dice))
	for _, d := range f.Dice {
		if !dice.IsStandardSides(d.Faces) {
			return nil, fmt.Errorf("dice set %q: unsupported die d%d", f.ID, d.Faces)
		}
		if seen[d.Faces] {
			return nil, fmt.Errorf("dice set %q: duplicate die d%d", f.ID, d.Faces)
		}
		if d.DefaultCount < 0 {
			return nil, fmt.Errorf("dice set %q: d%d default_count must be >= 0", f.ID, d.Faces)
		}
		seen[d.Faces] = true
		style := d.Style
		if style == "" {
			style = f.Style
		}
		t := DieType{SetID: f.ID, Faces: d.Faces}
		set.Dice = append(set.Dice, Die{Type: t, Style: style})
		if d.DefaultCount > 0 {
			set.defaults[t] = d.DefaultCount
		}
	}
	sort.Slice(set.Dice, func(i, j int) bool { return set.Dice[i].Type.Faces < set.Dice[j].Type.Faces })
	return set, nil
}

// Catalog indexes dice sets by id.
type Catalog struct {
	sets map[string]*DiceSet
	ids  []string
}

// NewCatalog builds a Catalog from sets.
//
// Precondition: set ids must be unique.
// Postcondition: Returns a Catalog or an error naming the duplicate id.
func NewCatalog(sets []*DiceSet) (*Catalog, error) {
	c := &Catalog{sets: make(map[string]*DiceSet, len(sets))}
	for _, s := range sets {
		if _, dup := c.sets[s.ID]; dup {
			return nil, fmt.Errorf("tray: duplicate dice set %q", s.ID)
		}
		c.sets[s.ID] = s
		c.ids = append(c.ids, s.ID)
	}
	sort.Strings(c.ids)
	return c, nil
}

// DefaultCatalog returns a catalog holding the standard set: one die of every
// face count the grammar accepts and an empty default loadout.
func DefaultCatalog() *Catalog {
	f := diceSetFile{ID: DefaultSetID, Name: "Galaxy", Style: "galaxy"}
	for _, faces := range dice.StandardSides {
		f.Dice = append(f.Dice, diceSetDie{Faces: faces})
	}
	set, err := f.build()
	if err != nil {
		panic(fmt.Sprintf("building default dice set: %v", err))
	}
	c, _ := NewCatalog([]*DiceSet{set})
	return c
}

// LoadCatalog reads every .yaml/.yml file in dir as a dice set.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-empty Catalog or a non-nil error.
func LoadCatalog(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var sets []*DiceSet
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !(strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			continue
		}
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var f diceSetFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parsing dice set file %s: %w", path, err)
		}
		set, err := f.build()
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		sets = append(sets, set)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("no dice sets found in %s", dir)
	}
	return NewCatalog(sets)
}

// Set returns the dice set with the given id.
func (c *Catalog) Set(id string) (*DiceSet, bool) {
	s, ok := c.sets[id]
	return s, ok
}

// Sets returns all dice sets ordered by id.
func (c *Catalog) Sets() []*DiceSet {
	out := make([]*DiceSet, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.sets[id])
	}
	return out
}

// Die looks up the descriptor of t.
func (c *Catalog) Die(t DieType) (Die, bool) {
	s, ok := c.sets[t.SetID]
	if !ok {
		return Die{}, false
	}
	return s.Die(t.Faces)
}
