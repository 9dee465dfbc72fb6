package sim

import (
	"fmt"
	"io"

	"github.com/nb2rs/dtx/internal/content"
)

// MetaInfo is the current state of one meta entry.
type MetaInfo struct {
	ID        string
	Magnitude float64
	Min       float64
	Max       float64
}

// TableInfo summarizes one catalog table.
type TableInfo struct {
	ID      string
	Kind    string
	Entries int
	// Remaining is the number of draws left for exhaustive tables, -1 otherwise.
	Remaining int64
	Meta      []MetaInfo
}

// Inspect summarizes every table of cat in id order.
func Inspect(cat *content.Catalog) []TableInfo {
	var out []TableInfo
	for _, id := range cat.IDs() {
		info := TableInfo{ID: id, Kind: cat.Kind(id), Remaining: -1}
		if def, ok := cat.Definition(id); ok {
			info.Entries = len(def.Entries)
		}
		if t, ok := cat.Table(id); ok {
			if ex, ok := t.(interface{ RemainingTotal() int64 }); ok {
				info.Remaining = ex.RemainingTotal()
			}
		}
		if mt, ok := cat.Registry().Lookup(id); ok {
			for _, e := range mt.Entries() {
				info.Meta = append(info.Meta, MetaInfo{
					ID:        e.ID(),
					Magnitude: e.Magnitude(),
					Min:       e.Min(),
					Max:       e.Max(),
				})
			}
		}
		out = append(out, info)
	}
	return out
}

// WriteInspect renders infos as plain text, one block per table.
func WriteInspect(w io.Writer, infos []TableInfo) error {
	for _, info := range infos {
		if _, err := fmt.Fprintf(w, "%s (%s, %d entries)\n", info.ID, info.Kind, info.Entries); err != nil {
			return err
		}
		if info.Remaining >= 0 {
			if _, err := fmt.Fprintf(w, "  remaining draws: %d\n", info.Remaining); err != nil {
				return err
			}
		}
		for _, m := range info.Meta {
			if _, err := fmt.Fprintf(w, "  - %s: %g in [%g, %g]\n", m.ID, m.Magnitude, m.Min, m.Max); err != nil {
				return err
			}
		}
	}
	return nil
}
