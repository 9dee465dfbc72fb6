package content

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nb2rs/dtx/internal/dice"
	"github.com/nb2rs/dtx/internal/result"
	"github.com/nb2rs/dtx/internal/rollable"
	"github.com/nb2rs/dtx/internal/scripting"
	"github.com/nb2rs/dtx/internal/table"
)

// Build errors.
var (
	ErrUnknownTable  = errors.New("content: unknown table reference")
	ErrCycle         = errors.New("content: table reference cycle")
	ErrUnknownScript = errors.New("content: unknown script hook")
	ErrDuplicateID   = errors.New("content: duplicate table id")
)

// Options carries the collaborators shared by every built table.
type Options struct {
	// Source is the randomness provider. Nil means dice.NewCryptoSource().
	Source dice.Source
	// Scripts resolves drop_rate_script and include_script hooks. Required
	// only when a definition names a script.
	Scripts *scripting.Manager
	// Logger receives table and dice debug records. Nil means no logging.
	Logger *zap.Logger
}

// Catalog holds the built tables of one content set.
type Catalog struct {
	tables   map[string]Table
	defs     map[string]*Definition
	registry *table.Registry[Context, Drop]
}

// Table returns the table with the given id.
func (c *Catalog) Table(id string) (Table, bool) {
	t, ok := c.tables[id]
	return t, ok
}

// Definition returns the definition a table was built from.
func (c *Catalog) Definition(id string) (*Definition, bool) {
	d, ok := c.defs[id]
	return d, ok
}

// Kind returns the kind of table id, or "" when unknown.
func (c *Catalog) Kind(id string) string {
	if d, ok := c.defs[id]; ok {
		return d.Kind
	}
	return ""
}

// IDs returns every table id in sorted order.
func (c *Catalog) IDs() []string {
	return slices.Sorted(maps.Keys(c.tables))
}

// Registry returns the registry of meta tables.
func (c *Catalog) Registry() *table.Registry[Context, Drop] {
	return c.registry
}

// Reset restores every stateful table: exhaustive draw counts, sequential
// cursors and meta magnitudes.
func (c *Catalog) Reset() {
	for _, t := range c.tables {
		if r, ok := t.(interface{ Reset() }); ok {
			r.Reset()
		}
	}
}

type builder struct {
	opts     Options
	roller   *dice.Roller
	logger   *zap.Logger
	defs     map[string]*Definition
	tables   map[string]Table
	visiting map[string]bool
	registry *table.Registry[Context, Drop]
}

// Build constructs every definition into a live table, resolving nested table
// references.
//
// Precondition: each definition has passed Validate.
// Postcondition: returns a Catalog holding one table per definition, or an
// error for duplicate ids, unknown references, reference cycles, unknown
// script hooks or table construction failures.
func Build(defs []*Definition, opts Options) (*Catalog, error) {
	if opts.Source == nil {
		opts.Source = dice.NewCryptoSource()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	b := &builder{
		opts:     opts,
		roller:   dice.NewLoggedRoller(opts.Source, opts.Logger),
		logger:   opts.Logger,
		defs:     make(map[string]*Definition, len(defs)),
		tables:   make(map[string]Table, len(defs)),
		visiting: make(map[string]bool),
		registry: table.NewRegistry[Context, Drop](),
	}
	for _, d := range defs {
		if _, dup := b.defs[d.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, d.ID)
		}
		b.defs[d.ID] = d
	}
	for _, d := range defs {
		if _, err := b.resolve(d.ID, nil); err != nil {
			return nil, err
		}
	}
	return &Catalog{tables: b.tables, defs: b.defs, registry: b.registry}, nil
}

// resolve returns the built table id, building it and its references first.
// path is the chain of ids currently being built, for cycle reporting.
func (b *builder) resolve(id string, path []string) (Table, error) {
	if t, ok := b.tables[id]; ok {
		return t, nil
	}
	def, ok := b.defs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q referenced by %v", ErrUnknownTable, id, path)
	}
	next := append(slices.Clip(path), id)
	if b.visiting[id] {
		return nil, fmt.Errorf("%w: %v", ErrCycle, next)
	}
	b.visiting[id] = true
	defer delete(b.visiting, id)

	t, err := b.build(def, next)
	if err != nil {
		return nil, err
	}
	b.tables[id] = t
	b.logger.Debug("table built",
		zap.String("table", id),
		zap.String("kind", def.Kind),
		zap.Int("entries", len(def.Entries)),
	)
	return t, nil
}

func (b *builder) config(def *Definition) (table.Config[Context, Drop], error) {
	cfg := table.Config[Context, Drop]{
		ID:     def.ID,
		Source: b.opts.Source,
		Logger: b.logger,
	}

	rate := def.DropRate
	cfg.DropRate = func(Context) float64 { return rate }
	if def.DropRateScript != "" {
		if err := b.checkScript(def, def.DropRateScript); err != nil {
			return cfg, err
		}
		hook, scripts := def.DropRateScript, b.opts.Scripts
		cfg.DropRate = func(c Context) float64 {
			if v, ok := scripts.CallNumber(hook, c.Fields()); ok {
				return v
			}
			return rate
		}
	}

	if def.IncludeScript != "" {
		if err := b.checkScript(def, def.IncludeScript); err != nil {
			return cfg, err
		}
		hook, scripts := def.IncludeScript, b.opts.Scripts
		cfg.Hooks = cfg.Hooks.WithInclude(func(c Context) bool {
			ok, called := scripts.CallBool(hook, c.Fields())
			return ok || !called
		})
	}
	return cfg, nil
}

func (b *builder) checkScript(def *Definition, hook string) error {
	if b.opts.Scripts == nil || !b.opts.Scripts.Has(hook) {
		return fmt.Errorf("table %q: %w: %q", def.ID, ErrUnknownScript, hook)
	}
	return nil
}

// entry builds the rollable of one entry definition.
func (b *builder) entry(e EntryDef, path []string) (Table, error) {
	var hooks rollable.Hooks[Context, Drop]
	if e.MinLevel > 0 {
		lvl := e.MinLevel
		hooks = hooks.WithInclude(func(c Context) bool { return c.Level >= lvl })
	}
	if e.RequiresTag != "" {
		tag := e.RequiresTag
		hooks = hooks.WithInclude(func(c Context) bool { return c.HasTag(tag) })
	}

	if e.Table != "" {
		nested, err := b.resolve(e.Table, path)
		if err != nil {
			return nil, err
		}
		return built(rollable.NewLeaf(hooks.WithInclude(nested.IncludeInRoll), nested.Roll))
	}

	item := e.Item
	qty := func() int { return 1 }
	if e.Quantity != "" {
		expr, err := dice.Parse(e.Quantity)
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", item, err)
		}
		qty = func() int { return b.roller.Quantity(expr) }
	}
	return built(rollable.NewLeaf(hooks, func(Context, rollable.Args) result.Result[Drop] {
		return result.One(Drop{ItemID: item, InstanceID: uuid.New(), Quantity: qty()})
	}))
}

func (b *builder) build(def *Definition, path []string) (Table, error) {
	cfg, err := b.config(def)
	if err != nil {
		return nil, err
	}
	entries := make([]Table, len(def.Entries))
	for i, e := range def.Entries {
		if entries[i], err = b.entry(e, path); err != nil {
			return nil, fmt.Errorf("table %q entries[%d]: %w", def.ID, i, err)
		}
	}

	switch def.Kind {
	case KindUniform:
		return built(table.NewUniform(cfg, entries))

	case KindWeighted:
		ws := make([]table.WeightedEntry[Context, Drop], len(entries))
		for i, r := range entries {
			ws[i] = table.WeightedEntry[Context, Drop]{Rollable: r, Weight: def.Entries[i].Weight}
		}
		return built(table.NewWeighted(cfg, ws))

	case KindMultiChance:
		cs := make([]table.ChanceEntry[Context, Drop], len(entries))
		for i, r := range entries {
			cs[i] = table.ChanceEntry[Context, Drop]{Rollable: r, Chance: def.Entries[i].Chance}
		}
		return built(table.NewMultiChance(cfg, cs))

	case KindExhaustive, KindWeightedExhaustive:
		ds := make([]table.DrawEntry[Context, Drop], len(entries))
		for i, r := range entries {
			ds[i] = table.DrawEntry[Context, Drop]{Rollable: r, Draws: def.Entries[i].Draws}
		}
		onExhausted := func(Context) {
			b.logger.Info("table exhausted", zap.String("table", def.ID))
		}
		if def.Kind == KindWeightedExhaustive {
			return built(table.NewWeightedExhaustive(cfg, ds, onExhausted))
		}
		return built(table.NewExhaustive(cfg, ds, onExhausted))

	case KindSequential:
		return built(table.NewSequential(cfg, entries, func(Context) {
			b.logger.Debug("sequential table wrapped", zap.String("table", def.ID))
		}))

	case KindMatrix:
		cells := make([]table.MatrixCell[Context, Drop], len(entries))
		for i, r := range entries {
			cells[i] = table.MatrixCell[Context, Drop]{Row: def.Entries[i].Row, Col: def.Entries[i].Col, Rollable: r}
		}
		return built(table.NewMatrix(cfg, def.Rows, def.Cols, cells))

	case KindMetaWeighted, KindMetaMultiChance:
		specs := make([]table.MetaSpec[Context, Drop], len(entries))
		for i, r := range entries {
			e := def.Entries[i]
			mag := e.Weight
			if def.Kind == KindMetaMultiChance {
				mag = e.Chance
			}
			specs[i] = table.MetaSpec[Context, Drop]{
				ID:        e.ID,
				Rollable:  r,
				Magnitude: mag,
				Min:       e.Min,
				Max:       e.Max,
				Filters:   filters(e.Filters),
			}
		}
		var mt table.MetaTable[Context, Drop]
		if def.Kind == KindMetaWeighted {
			mt, err = metaTable(table.NewMetaWeighted(cfg, specs))
		} else {
			mt, err = metaTable(table.NewMetaMultiChance(cfg, specs))
		}
		if err != nil {
			return nil, err
		}
		if err := b.registry.Register(mt); err != nil {
			return nil, err
		}
		return mt, nil
	}
	return nil, fmt.Errorf("table %q: unknown kind %q", def.ID, def.Kind)
}

// built drops the typed nil a failed constructor returns, so callers never
// hold a non-nil Table wrapping a nil pointer.
func built[P Table](t P, err error) (Table, error) {
	if err != nil {
		return nil, err
	}
	return t, nil
}

func metaTable[P table.MetaTable[Context, Drop]](t P, err error) (table.MetaTable[Context, Drop], error) {
	if err != nil {
		return nil, err
	}
	return t, nil
}

func filters(defs []FilterDef) []table.Filter[Context, Drop] {
	out := make([]table.Filter[Context, Drop], 0, len(defs))
	for _, f := range defs {
		match := table.MatchAll()
		if len(f.Match) > 0 && !slices.Contains(f.Match, "*") {
			match = table.MatchID(f.Match...)
		}
		var mutate func(*table.MetaEntry[Context, Drop])
		switch {
		case f.Delta != nil:
			mutate = table.AdjustBy[Context, Drop](*f.Delta)
		case f.Set != nil:
			mutate = table.SetTo[Context, Drop](*f.Set)
		default:
			mutate = table.ResetToInitial[Context, Drop]()
		}
		out = append(out, table.Filter[Context, Drop]{Match: match, Mutate: mutate})
	}
	return out
}
