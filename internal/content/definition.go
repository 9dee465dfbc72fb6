package content

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nb2rs/dtx/internal/dice"
)

// FilterDef describes one meta filter: which sibling entries it matches and
// how their magnitude changes. Exactly one of Delta, Set and Reset applies.
type FilterDef struct {
	// Match lists entry ids; empty or "*" matches every entry.
	Match []string `yaml:"match"`
	Delta *float64 `yaml:"delta"`
	Set   *float64 `yaml:"set"`
	Reset bool     `yaml:"reset"`
}

// EntryDef is one entry of a table definition. Exactly one of Item and Table
// is set; the other fields apply according to the table kind.
type EntryDef struct {
	ID    string `yaml:"id"`
	Item  string `yaml:"item"`
	Table string `yaml:"table"`
	// Quantity is a dice expression such as "1d4+1"; empty means 1.
	Quantity    string      `yaml:"quantity"`
	Weight      float64     `yaml:"weight"`
	Chance      float64     `yaml:"chance"`
	Draws       int32       `yaml:"draws"`
	Row         int         `yaml:"row"`
	Col         int         `yaml:"col"`
	// Min and Max bound a meta entry's magnitude. A zero Max means the
	// kind's upper bound: unbounded for weights, 100 for chances.
	Min         float64     `yaml:"min"`
	Max         float64     `yaml:"max"`
	MinLevel    int         `yaml:"min_level"`
	RequiresTag string      `yaml:"requires_tag"`
	Filters     []FilterDef `yaml:"filters"`
}

// Definition is a drop table loaded from YAML.
type Definition struct {
	ID   string `yaml:"id"`
	Kind string `yaml:"kind"`
	// DropRate is a constant percentage bonus applied to every roll.
	DropRate float64 `yaml:"drop_rate"`
	// DropRateScript names a Lua function returning the percentage bonus.
	// It overrides DropRate when it succeeds.
	DropRateScript string `yaml:"drop_rate_script"`
	// IncludeScript names a Lua function deciding whether the table is a
	// candidate when nested in another table.
	IncludeScript string     `yaml:"include_script"`
	Rows          int        `yaml:"rows"`
	Cols          int        `yaml:"cols"`
	Entries       []EntryDef `yaml:"entries"`
}

// Validate checks that the Definition satisfies its invariants.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff every field is valid for d.Kind; otherwise
// the error lists every violation found.
func (d *Definition) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if !validKinds[d.Kind] {
		errs = append(errs, fmt.Errorf("kind %q is not a known table kind", d.Kind))
	}
	if math.IsNaN(d.DropRate) || math.IsInf(d.DropRate, 0) {
		errs = append(errs, errors.New("drop_rate must be finite"))
	}
	if len(d.Entries) == 0 {
		errs = append(errs, errors.New("entries must not be empty"))
	}
	if d.Kind == KindMatrix && (d.Rows < 1 || d.Cols < 1) {
		errs = append(errs, fmt.Errorf("matrix rows and cols must be >= 1, got %dx%d", d.Rows, d.Cols))
	}

	ids := make(map[string]bool, len(d.Entries))
	for i, e := range d.Entries {
		for _, err := range d.validateEntry(e) {
			errs = append(errs, fmt.Errorf("entries[%d]: %w", i, err))
		}
		if e.ID == "" {
			continue
		}
		if ids[e.ID] {
			errs = append(errs, fmt.Errorf("entries[%d]: duplicate id %q", i, e.ID))
		}
		ids[e.ID] = true
	}

	if len(errs) > 0 {
		return fmt.Errorf("table %q validation failed: %v", d.ID, errs)
	}
	return nil
}

func (d *Definition) validateEntry(e EntryDef) []error {
	var errs []error
	switch {
	case e.Item == "" && e.Table == "":
		errs = append(errs, errors.New("one of item or table is required"))
	case e.Item != "" && e.Table != "":
		errs = append(errs, errors.New("item and table are mutually exclusive"))
	}
	if e.Table != "" && e.Table == d.ID {
		errs = append(errs, fmt.Errorf("table %q references itself", e.Table))
	}
	if e.Quantity != "" {
		if e.Table != "" {
			errs = append(errs, errors.New("quantity applies to item entries only"))
		} else if _, err := dice.Parse(e.Quantity); err != nil {
			errs = append(errs, fmt.Errorf("quantity: %w", err))
		}
	}
	if e.MinLevel < 0 {
		errs = append(errs, errors.New("min_level must be >= 0"))
	}

	switch d.Kind {
	case KindWeighted, KindMetaWeighted:
		if e.Weight < 0 || math.IsNaN(e.Weight) || math.IsInf(e.Weight, 0) {
			errs = append(errs, fmt.Errorf("weight must be finite and >= 0, got %v", e.Weight))
		}
	case KindMultiChance, KindMetaMultiChance:
		if e.Chance < 0 || e.Chance > 100 || math.IsNaN(e.Chance) {
			errs = append(errs, fmt.Errorf("chance must be within [0, 100], got %v", e.Chance))
		}
	case KindExhaustive, KindWeightedExhaustive:
		if e.Draws < 1 {
			errs = append(errs, fmt.Errorf("draws must be >= 1, got %d", e.Draws))
		}
	case KindMatrix:
		if e.Row < 0 || e.Row >= d.Rows || e.Col < 0 || e.Col >= d.Cols {
			errs = append(errs, fmt.Errorf("cell (%d, %d) outside %dx%d", e.Row, e.Col, d.Rows, d.Cols))
		}
	}

	if isMeta(d.Kind) {
		if e.ID == "" {
			errs = append(errs, errors.New("id is required in meta tables"))
		}
		if e.Min < 0 {
			errs = append(errs, fmt.Errorf("min must be >= 0, got %v", e.Min))
		}
		if e.Max != 0 && e.Min > e.Max {
			errs = append(errs, fmt.Errorf("min (%v) must be <= max (%v)", e.Min, e.Max))
		}
		for j, f := range e.Filters {
			if err := f.validate(); err != nil {
				errs = append(errs, fmt.Errorf("filters[%d]: %w", j, err))
			}
		}
	} else if len(e.Filters) > 0 {
		errs = append(errs, errors.New("filters apply to meta tables only"))
	}
	return errs
}

func (f FilterDef) validate() error {
	n := 0
	if f.Delta != nil {
		n++
	}
	if f.Set != nil {
		n++
	}
	if f.Reset {
		n++
	}
	if n != 1 {
		return errors.New("exactly one of delta, set or reset is required")
	}
	if f.Delta != nil && !finite(*f.Delta) {
		return fmt.Errorf("delta must be finite, got %v", *f.Delta)
	}
	if f.Set != nil && !finite(*f.Set) {
		return fmt.Errorf("set must be finite, got %v", *f.Set)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// LoadDefinitionsFromBytes parses one or more YAML documents, each holding a
// single Definition.
//
// Precondition: data must be valid YAML.
// Postcondition: returns validated definitions in document order, or an error.
func LoadDefinitionsFromBytes(data []byte) ([]*Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var defs []*Definition
	for {
		var def Definition
		err := dec.Decode(&def)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing table YAML: %w", err)
		}
		if err := def.Validate(); err != nil {
			return nil, err
		}
		defs = append(defs, &def)
	}
	return defs, nil
}

// LoadDefinitions reads all *.yaml and *.yml files in dir.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns every definition or the first parse or validation
// error; duplicate table ids across files are rejected.
func LoadDefinitions(dir string) ([]*Definition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading tables dir %q: %w", dir, err)
	}

	var defs []*Definition
	seen := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !(strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			continue
		}

		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		loaded, err := LoadDefinitionsFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		for _, def := range loaded {
			if prev, dup := seen[def.ID]; dup {
				return nil, fmt.Errorf("loading %q: table %q already defined in %q", path, def.ID, prev)
			}
			seen[def.ID] = path
		}
		defs = append(defs, loaded...)
	}
	return defs, nil
}
