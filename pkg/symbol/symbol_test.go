package symbol

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	newTests := []struct {
		name    string
		symname string
		addr    uint64
		size    uint64
		binding Binding
		kind    Kind
		wantErr bool
	}{
		{
			name:    "plain function",
			symname: "main",
			addr:    0x1000,
			size:    0x50,
			binding: BindingGlobal,
			kind:    KindFunc,
		},
		{
			name:    "zero size absolute symbol",
			symname: "_etext",
			addr:    0xffffffff81000000,
			size:    0,
			binding: BindingGlobal,
			kind:    KindNotype,
		},
		{
			name:    "extent ends exactly at top of address space",
			symname: "edge",
			addr:    math.MaxUint64 - 0x10,
			size:    0x10,
			binding: BindingLocal,
			kind:    KindObject,
		},
		{
			name:    "address plus size overflows",
			symname: "bad",
			addr:    math.MaxUint64 - 0x10,
			size:    0x11,
			binding: BindingLocal,
			kind:    KindObject,
			wantErr: true,
		},
		{
			name:    "binding out of range",
			symname: "bad",
			addr:    0x1000,
			size:    0x10,
			binding: Binding(200),
			kind:    KindFunc,
			wantErr: true,
		},
		{
			name:    "kind out of range",
			symname: "bad",
			addr:    0x1000,
			size:    0x10,
			binding: BindingLocal,
			kind:    Kind(200),
			wantErr: true,
		},
	}
	for _, tt := range newTests {
		t.Run(tt.name, func(t *testing.T) {
			sym, err := New(tt.symname, tt.addr, tt.size, tt.binding, tt.kind)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidSymbol)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.symname, sym.Name)
			assert.Equal(t, tt.addr, sym.Address)
			assert.Equal(t, tt.size, sym.Size)
			assert.Equal(t, tt.binding, sym.Binding)
			assert.Equal(t, tt.kind, sym.Kind)
		})
	}
}

func TestEqual(t *testing.T) {
	base := Symbol{Name: "main", Address: 0x1000, Size: 0x50, Binding: BindingGlobal, Kind: KindFunc}

	// Built separately from the same fields, still equal.
	rebuilt, err := New("main", 0x1000, 0x50, BindingGlobal, KindFunc)
	require.NoError(t, err)
	assert.True(t, base.Equal(rebuilt))
	assert.True(t, rebuilt.Equal(base))
	assert.True(t, base.Equal(base))

	variants := []struct {
		name string
		sym  Symbol
	}{
		{"name differs", Symbol{Name: "main2", Address: 0x1000, Size: 0x50, Binding: BindingGlobal, Kind: KindFunc}},
		{"address differs", Symbol{Name: "main", Address: 0x1001, Size: 0x50, Binding: BindingGlobal, Kind: KindFunc}},
		{"size differs", Symbol{Name: "main", Address: 0x1000, Size: 0x51, Binding: BindingGlobal, Kind: KindFunc}},
		{"binding differs", Symbol{Name: "main", Address: 0x1000, Size: 0x50, Binding: BindingWeak, Kind: KindFunc}},
		{"kind differs", Symbol{Name: "main", Address: 0x1000, Size: 0x50, Binding: BindingGlobal, Kind: KindObject}},
	}
	for _, tt := range variants {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, base.Equal(tt.sym))
			assert.False(t, tt.sym.Equal(base))
		})
	}
}

func TestCompare(t *testing.T) {
	a := Symbol{Name: "main", Address: 0x1000, Size: 0x50, Binding: BindingGlobal, Kind: KindFunc}
	b := Symbol{Name: "helper", Address: 0x1050, Size: 0x20, Binding: BindingLocal, Kind: KindFunc}

	compareTests := []struct {
		name string
		x, y any
		want Result
	}{
		{"equal symbols", a, a, ResultEqual},
		{"different symbols", a, b, ResultNotEqual},
		{"pointer operands", &a, &b, ResultNotEqual},
		{"pointer equal", &a, a, ResultEqual},
		{"string operand", a, "main", ResultNotComparable},
		{"int operand", 42, a, ResultNotComparable},
		{"nil operand", a, nil, ResultNotComparable},
		{"nil symbol pointer", a, (*Symbol)(nil), ResultNotComparable},
	}
	for _, tt := range compareTests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.x, tt.y))
		})
	}
}

func TestString(t *testing.T) {
	sym, err := New("main", 0x1000, 0x50, BindingGlobal, KindFunc)
	require.NoError(t, err)
	assert.Equal(t, "Symbol(name='main', address=0x1000, size=0x50, binding=GLOBAL, kind=FUNC)", sym.String())

	unknown, err := New("mystery", 0xdead, 0, BindingUnknown, KindUnknown)
	require.NoError(t, err)
	assert.Equal(t, "Symbol(name='mystery', address=0xdead, size=0x0, binding=UNKNOWN, kind=UNKNOWN)", unknown.String())
}

func TestContains(t *testing.T) {
	sized := Symbol{Name: "main", Address: 0x1000, Size: 0x50}
	assert.True(t, sized.Contains(0x1000))
	assert.True(t, sized.Contains(0x104f))
	assert.False(t, sized.Contains(0x1050))
	assert.False(t, sized.Contains(0xfff))

	// A zero-size symbol still covers its own address.
	marker := Symbol{Name: "_start", Address: 0x2000}
	assert.True(t, marker.Contains(0x2000))
	assert.False(t, marker.Contains(0x2001))
	assert.False(t, marker.Contains(0x1fff))

	top := Symbol{Name: "top", Address: math.MaxUint64}
	assert.True(t, top.Contains(math.MaxUint64))
}
