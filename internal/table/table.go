// Package table implements the sampling containers: uniform, weighted,
// multi-chance, exhaustive, sequential and matrix tables, plus the meta
// overlay that lets a rolled entry rewrite the odds of its siblings.
//
// Every table is itself a rollable.Rollable, so tables nest as entries of
// other tables. Tables are validated once at construction; Roll never fails.
// Tables are not safe for concurrent use.
package table

import (
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/nb2rs/dtx/internal/dice"
	"github.com/nb2rs/dtx/internal/result"
	"github.com/nb2rs/dtx/internal/rollable"
)

// Construction errors. Each is wrapped with the table id and entry position.
var (
	ErrNoEntries      = errors.New("table: entry list must not be empty")
	ErrNilRollable    = errors.New("table: entry rollable must not be nil")
	ErrInvalidWeight  = errors.New("table: weight must be finite and >= 0")
	ErrInvalidChance  = errors.New("table: chance must be within [0, 100]")
	ErrInvalidDraws   = errors.New("table: draws must be >= 1")
	ErrDuplicateID    = errors.New("table: duplicate entry id")
	ErrInvalidBounds  = errors.New("table: invalid magnitude bounds")
	ErrInvalidFilter  = errors.New("table: filter must have both match and mutate functions")
	ErrInvalidExtent  = errors.New("table: matrix extent must be at least 1x1")
	ErrCellOutOfRange = errors.New("table: matrix cell outside extent")
	ErrDuplicateCell  = errors.New("table: matrix cell assigned twice")
)

// Variant names reported in logs and by Variant().
const (
	VariantUniform            = "uniform"
	VariantWeighted           = "weighted"
	VariantMultiChance        = "multi_chance"
	VariantExhaustive         = "exhaustive"
	VariantWeightedExhaustive = "weighted_exhaustive"
	VariantSequential         = "sequential"
	VariantMatrix             = "matrix"
	VariantMetaWeighted       = "meta_weighted"
	VariantMetaMultiChance    = "meta_multi_chance"
)

// Config carries the policy shared by every table variant.
//
// The effective sampling modifier for a target is
// RollModifier(DropRate(target)); weights are scaled by it and chance rolls
// are compared as roll*modifier <= chance.
type Config[T, R any] struct {
	ID    string
	Hooks rollable.Hooks[T, R]
	// DropRate returns a percentage bonus for target. Nil means 0.
	DropRate func(target T) float64
	// RollModifier maps the drop rate percentage to a multiplier. Nil means DefaultRollModifier.
	RollModifier func(percent float64) float64
	// Source is the randomness provider. Nil means dice.NewCryptoSource().
	Source dice.Source
	// Logger receives a debug record per roll. Nil means no logging.
	Logger *zap.Logger
}

// DefaultRollModifier maps a percentage bonus p to the multiplier 1 + p/100.
func DefaultRollModifier(percent float64) float64 {
	return 1 + percent/100
}

// base holds the state common to all variants.
type base[T, R any] struct {
	id           string
	variant      string
	hooks        rollable.Hooks[T, R]
	dropRate     func(T) float64
	rollModifier func(float64) float64
	src          dice.Source
	logger       *zap.Logger
}

func newBase[T, R any](cfg Config[T, R], variant string) base[T, R] {
	b := base[T, R]{
		id:           cfg.ID,
		variant:      variant,
		hooks:        cfg.Hooks,
		dropRate:     cfg.DropRate,
		rollModifier: cfg.RollModifier,
		src:          cfg.Source,
		logger:       cfg.Logger,
	}
	if b.rollModifier == nil {
		b.rollModifier = DefaultRollModifier
	}
	if b.src == nil {
		b.src = dice.NewCryptoSource()
	}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	return b
}

// ID returns the table identifier.
func (b *base[T, R]) ID() string { return b.id }

// Variant returns the sampling variant name.
func (b *base[T, R]) Variant() string { return b.variant }

// IncludeInRoll implements rollable.Rollable using the table's own hooks.
func (b *base[T, R]) IncludeInRoll(target T) bool {
	return b.hooks.Includes(target)
}

// modifier returns the sampling multiplier for target.
//
// Postcondition: result is finite and >= 0.
func (b *base[T, R]) modifier(target T) float64 {
	pct := 0.0
	if b.dropRate != nil {
		pct = b.dropRate(target)
	}
	m := b.rollModifier(pct)
	if math.IsNaN(m) || math.IsInf(m, 0) || m < 0 {
		b.logger.Warn("table: roll modifier out of range, using 1",
			zap.String("table", b.id),
			zap.Float64("drop_rate", pct),
			zap.Float64("modifier", m),
		)
		return 1
	}
	return m
}

// run drives sel through the table's hook pipeline and logs the outcome.
func (b *base[T, R]) run(target T, args rollable.Args, sel rollable.SelectFunc[T, R]) result.Result[R] {
	out, state := b.hooks.Run(target, args, sel)
	b.logger.Debug("table roll",
		zap.String("table", b.id),
		zap.String("variant", b.variant),
		zap.Stringer("state", state),
		zap.Stringer("kind", out.Kind()),
		zap.Int("payloads", out.Len()),
	)
	return out
}

func (b *base[T, R]) logPick(index int) {
	b.logger.Debug("table pick",
		zap.String("table", b.id),
		zap.String("variant", b.variant),
		zap.Int("entry", index),
	)
}

// includable returns the positions of rs accepted by IncludeInRoll.
func includable[T, R any](target T, n int, at func(i int) rollable.Rollable[T, R]) []int {
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if at(i).IncludeInRoll(target) {
			out = append(out, i)
		}
	}
	return out
}

func validWeight(w float64) bool {
	return !math.IsNaN(w) && !math.IsInf(w, 0) && w >= 0
}
