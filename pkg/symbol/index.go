package symbol

import (
	"sort"
	"sync/atomic"

	"golang.org/x/exp/slices"
)

// Index answers address-containment and name queries across the merged
// records of one or more tables. It copies the (immutable) records at build
// time; the tables themselves stay owned by their images.
//
// Rebuild constructs a complete replacement and publishes it with a single
// pointer swap, so a concurrent query observes either the old or the new
// merged view, never a half-built one.
type Index struct {
	snap atomic.Pointer[snapshot]
}

// Located is one query hit: the record plus the ordinal of the table that
// contributed it (its position in the slice passed to Build/Rebuild).
type Located struct {
	Sym   Symbol
	Table int
}

type entry struct {
	sym   Symbol
	table int
	seq   int // merge order across all tables
}

type snapshot struct {
	entries []entry          // sorted by start address, stable
	byName  map[string][]int // name -> indices into entries
	maxSpan uint64           // largest containment extent in entries
}

// NewIndex builds an index over the given tables. Table order is load order:
// a higher position means a more recently loaded image.
func NewIndex(tables ...*Table) *Index {
	x := &Index{}
	x.Rebuild(tables...)
	return x
}

// Rebuild replaces the merged view with one built from tables. It is the
// image manager's hook for load/unload events. Rebuilding from identical
// table contents yields a query-equivalent index.
func (x *Index) Rebuild(tables ...*Table) {
	var total int
	for _, t := range tables {
		total += t.Len()
	}
	snap := &snapshot{
		entries: make([]entry, 0, total),
		byName:  make(map[string][]int, total),
	}
	var seq int
	for ti, t := range tables {
		it := t.Records()
		for it.Next() {
			snap.entries = append(snap.entries, entry{sym: it.Sym(), table: ti, seq: seq})
			seq++
		}
	}
	slices.SortStableFunc(snap.entries, func(a, b entry) int {
		switch {
		case a.sym.Address < b.sym.Address:
			return -1
		case a.sym.Address > b.sym.Address:
			return 1
		}
		return 0
	})
	for i := range snap.entries {
		e := &snap.entries[i]
		if span := e.sym.span(); span > snap.maxSpan {
			snap.maxSpan = span
		}
		snap.byName[e.sym.Name] = append(snap.byName[e.sym.Name], i)
	}
	x.snap.Store(snap)
}

// Len is the number of merged records.
func (x *Index) Len() int {
	if snap := x.snap.Load(); snap != nil {
		return len(snap.entries)
	}
	return 0
}

// FindContaining returns the record whose extent covers addr, with the
// ordinal of its source table. When several records cover the same address
// the winner is picked deterministically: smallest size first, then GLOBAL
// binding, then the most recently loaded table, then first-encountered order.
func (x *Index) FindContaining(addr uint64) (Symbol, int, bool) {
	snap := x.snap.Load()
	if snap == nil || len(snap.entries) == 0 {
		return Symbol{}, 0, false
	}
	// First entry starting past addr; everything before it starts at <= addr.
	i := sort.Search(len(snap.entries), func(i int) bool {
		return snap.entries[i].sym.Address > addr
	})
	best := -1
	for j := i - 1; j >= 0; j-- {
		e := &snap.entries[j]
		if addr-e.sym.Address >= snap.maxSpan {
			break // nothing earlier can reach addr
		}
		if !e.sym.Contains(addr) {
			continue
		}
		if best == -1 || better(e, &snap.entries[best]) {
			best = j
		}
	}
	if best == -1 {
		return Symbol{}, 0, false
	}
	return snap.entries[best].sym, snap.entries[best].table, true
}

// FindByName returns every merged record named name, in ascending address
// order, each attributable to its source table. Missing names yield nil.
func (x *Index) FindByName(name string) []Located {
	snap := x.snap.Load()
	if snap == nil {
		return nil
	}
	idx := snap.byName[name]
	if len(idx) == 0 {
		return nil
	}
	ret := make([]Located, len(idx))
	for i, j := range idx {
		ret[i] = Located{Sym: snap.entries[j].sym, Table: snap.entries[j].table}
	}
	return ret
}

func better(a, b *entry) bool {
	// Raw size, not the containment extent: a zero-size marker is more
	// specific than a one-byte record at the same address.
	if a.sym.Size != b.sym.Size {
		return a.sym.Size < b.sym.Size
	}
	ag, bg := a.sym.Binding == BindingGlobal, b.sym.Binding == BindingGlobal
	if ag != bg {
		return ag
	}
	if a.table != b.table {
		return a.table > b.table
	}
	return a.seq < b.seq
}
