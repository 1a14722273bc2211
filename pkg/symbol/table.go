package symbol

import "errors"

// ErrTableSealed is returned by Append once a table has been sealed.
var ErrTableSealed = errors.New("symbol table sealed")

// Table holds the records extracted from one image, in parser order.
// A table is built once at parse time, sealed, and never mutated again.
// Duplicate names or addresses are kept as-is; merge policy belongs to the
// Index. A sealed table is safe for concurrent readers and may be shared by
// any number of indexes.
type Table struct {
	recs   []Symbol
	sealed bool
}

func NewTable() *Table { return &Table{} }

// NewTableOf builds and seals a table from records already in hand.
func NewTableOf(recs ...Symbol) *Table {
	t := &Table{recs: recs}
	t.Seal()
	return t
}

// Append adds one record. Only valid before Seal.
func (t *Table) Append(s Symbol) error {
	if t.sealed {
		return ErrTableSealed
	}
	t.recs = append(t.recs, s)
	return nil
}

// Seal marks parsing complete. Idempotent.
func (t *Table) Seal() { t.sealed = true }

func (t *Table) Sealed() bool { return t.sealed }

func (t *Table) Len() int { return len(t.recs) }

func (t *Table) At(i int) Symbol { return t.recs[i] }

// Records returns an iterator over the table in table order. Each call
// starts a fresh pass, so the sequence is restartable.
func (t *Table) Records() *Iter { return &Iter{t: t, i: -1} }

// Iter walks a table's records:
//
//	it := tbl.Records()
//	for it.Next() {
//		use(it.Sym())
//	}
type Iter struct {
	t *Table
	i int
}

func (it *Iter) Next() bool {
	if it.i+1 >= len(it.t.recs) {
		return false
	}
	it.i++
	return true
}

func (it *Iter) Sym() Symbol { return it.t.recs[it.i] }

// Reset rewinds the iterator to the start of the table.
func (it *Iter) Reset() { it.i = -1 }
