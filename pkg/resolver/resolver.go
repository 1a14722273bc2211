// Package resolver is the façade the debugging session talks to: it tracks
// which images are loaded, keeps a merged symbol index over them, and
// answers address and name queries with the owning image attached.
package resolver

import (
	"sync"
	"sync/atomic"

	"github.com/golang/glog"
	"github.com/samber/lo"
	"github.com/vietanhduong/symcore/pkg/symbol"
)

// Image is one loaded binary or debug-info unit and its sealed table.
type Image struct {
	Name  string
	Table *symbol.Table
}

// Match is a query hit: the record plus the image it came from.
type Match struct {
	Sym   symbol.Symbol
	Image string
}

// Resolver merges the tables of all loaded images. Load/unload swap in a
// freshly built index, so queries racing a rebuild see a consistent view.
type Resolver struct {
	mu     sync.Mutex
	images []Image // load order, oldest first
	state  atomic.Pointer[state]
}

type state struct {
	index  *symbol.Index
	images []string // table ordinal -> image name
}

func New() *Resolver {
	r := &Resolver{}
	r.state.Store(&state{index: symbol.NewIndex()})
	return r
}

// LoadImage registers an image's table and rebuilds the merged index. The
// table is sealed here if the parser has not done so already. Loading a name
// twice replaces the previous table but keeps the image's original load
// position.
func (r *Resolver) LoadImage(name string, t *symbol.Table) {
	if t == nil {
		t = symbol.NewTable()
	}
	t.Seal()
	r.mu.Lock()
	defer r.mu.Unlock()
	replaced := false
	for i := range r.images {
		if r.images[i].Name == name {
			r.images[i].Table = t
			replaced = true
			break
		}
	}
	if !replaced {
		r.images = append(r.images, Image{Name: name, Table: t})
	}
	glog.V(3).Infof("Loaded image %s (%d symbols, %d images total)", name, t.Len(), len(r.images))
	r.publish()
}

// UnloadImage drops an image and rebuilds. Reports whether name was loaded.
func (r *Resolver) UnloadImage(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.images {
		if r.images[i].Name == name {
			r.images = append(r.images[:i], r.images[i+1:]...)
			r.publish()
			return true
		}
	}
	return false
}

// publish builds a complete new index and swaps it in. Callers hold r.mu.
func (r *Resolver) publish() {
	tables := make([]*symbol.Table, len(r.images))
	names := make([]string, len(r.images))
	for i := range r.images {
		tables[i] = r.images[i].Table
		names[i] = r.images[i].Name
	}
	r.state.Store(&state{index: symbol.NewIndex(tables...), images: names})
}

// ResolveAddress finds the best record covering addr, per the index
// tie-break rules. A miss is a normal outcome, not an error.
func (r *Resolver) ResolveAddress(addr uint64) (Match, bool) {
	s := r.state.Load()
	sym, ti, ok := s.index.FindContaining(addr)
	if !ok {
		return Match{}, false
	}
	return Match{Sym: sym, Image: s.images[ti]}, true
}

// ResolveName returns every record named name across all loaded images.
// Names are not unique; the result may hold zero, one, or many matches.
func (r *Resolver) ResolveName(name string) []Match {
	s := r.state.Load()
	hits := s.index.FindByName(name)
	return lo.Map(hits, func(h symbol.Located, _ int) Match {
		return Match{Sym: h.Sym, Image: s.images[h.Table]}
	})
}

// Images lists loaded image names in load order.
func (r *Resolver) Images() []string {
	s := r.state.Load()
	return append([]string(nil), s.images...)
}

// NumSymbols is the size of the current merged index.
func (r *Resolver) NumSymbols() int { return r.state.Load().index.Len() }
