package symbol

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSymbol is returned by New when the requested record cannot
// represent a valid address range or carries an out-of-range classification.
var ErrInvalidSymbol = errors.New("invalid symbol")

// Binding is the linkage visibility of a symbol.
type Binding uint8

const (
	BindingUnknown Binding = iota
	BindingLocal
	BindingGlobal
	BindingWeak
	BindingUnique

	bindingEnd
)

func (b Binding) String() string {
	switch b {
	case BindingLocal:
		return "LOCAL"
	case BindingGlobal:
		return "GLOBAL"
	case BindingWeak:
		return "WEAK"
	case BindingUnique:
		return "UNIQUE"
	}
	return "UNKNOWN"
}

// Kind is the semantic category of a symbol.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindNotype
	KindObject
	KindFunc
	KindSection
	KindFile
	KindCommon
	KindTLS
	KindIfunc

	kindEnd
)

func (k Kind) String() string {
	switch k {
	case KindNotype:
		return "NOTYPE"
	case KindObject:
		return "OBJECT"
	case KindFunc:
		return "FUNC"
	case KindSection:
		return "SECTION"
	case KindFile:
		return "FILE"
	case KindCommon:
		return "COMMON"
	case KindTLS:
		return "TLS"
	case KindIfunc:
		return "IFUNC"
	}
	return "UNKNOWN"
}

// Symbol is one named location or region in an image's address space.
// It is a pure value: two records built from separate parse passes compare
// equal whenever all five fields match. Never mutate a Symbol after New.
type Symbol struct {
	Name    string
	Address uint64
	Size    uint64
	Binding Binding
	Kind    Kind
}

// New validates and builds a Symbol. It fails with ErrInvalidSymbol when
// address+size does not fit in 64 bits or when binding/kind lies outside the
// enumerated sets. Parsers seeing unrecognized classification codes should
// map them to BindingUnknown/KindUnknown before calling New.
func New(name string, addr, size uint64, binding Binding, kind Kind) (Symbol, error) {
	if size > math.MaxUint64-addr {
		return Symbol{}, fmt.Errorf("range 0x%x+0x%x overflows: %w", addr, size, ErrInvalidSymbol)
	}
	if binding >= bindingEnd {
		return Symbol{}, fmt.Errorf("binding %d out of range: %w", binding, ErrInvalidSymbol)
	}
	if kind >= kindEnd {
		return Symbol{}, fmt.Errorf("kind %d out of range: %w", kind, ErrInvalidSymbol)
	}
	return Symbol{Name: name, Address: addr, Size: size, Binding: binding, Kind: kind}, nil
}

// Equal reports structural equality over all five fields. Which table or
// parse pass produced either record is irrelevant.
func (s Symbol) Equal(other Symbol) bool { return s == other }

// Contains reports whether addr falls inside the symbol's extent. A
// zero-size symbol still covers its own start address.
func (s Symbol) Contains(addr uint64) bool {
	return addr >= s.Address && addr-s.Address < s.span()
}

// span is the containment extent: at least one byte even for size 0.
func (s Symbol) span() uint64 {
	if s.Size == 0 {
		return 1
	}
	return s.Size
}

// String renders the diagnostic form, e.g.
//
//	Symbol(name='main', address=0x1000, size=0x50, binding=GLOBAL, kind=FUNC)
//
// The output is for humans; nothing parses it back.
func (s Symbol) String() string {
	return fmt.Sprintf("Symbol(name='%s', address=0x%x, size=0x%x, binding=%s, kind=%s)",
		s.Name, s.Address, s.Size, s.Binding, s.Kind)
}
