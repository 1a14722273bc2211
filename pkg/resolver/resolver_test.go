package resolver

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vietanhduong/symcore/pkg/symbol"
)

func mustSym(t *testing.T, name string, addr, size uint64, binding symbol.Binding, kind symbol.Kind) symbol.Symbol {
	t.Helper()
	sym, err := symbol.New(name, addr, size, binding, kind)
	require.NoError(t, err)
	return sym
}

func newTestResolver(t *testing.T) *Resolver {
	r := New()
	r.LoadImage("/usr/bin/prog", symbol.NewTableOf(
		mustSym(t, "main", 0x1000, 0x50, symbol.BindingGlobal, symbol.KindFunc),
		mustSym(t, "dup", 0x1100, 0x10, symbol.BindingLocal, symbol.KindFunc),
	))
	r.LoadImage("/usr/lib/libdup.so", symbol.NewTableOf(
		mustSym(t, "dup", 0x2100, 0x10, symbol.BindingLocal, symbol.KindFunc),
	))
	return r
}

func TestResolveAddress(t *testing.T) {
	r := newTestResolver(t)

	m, ok := r.ResolveAddress(0x1010)
	require.True(t, ok)
	assert.Equal(t, "main", m.Sym.Name)
	assert.Equal(t, "/usr/bin/prog", m.Image)

	m, ok = r.ResolveAddress(0x2105)
	require.True(t, ok)
	assert.Equal(t, "dup", m.Sym.Name)
	assert.Equal(t, "/usr/lib/libdup.so", m.Image)

	_, ok = r.ResolveAddress(0x9000)
	assert.False(t, ok)
}

func TestResolveName(t *testing.T) {
	r := newTestResolver(t)

	t.Run("duplicate name keeps image attribution", func(t *testing.T) {
		matches := r.ResolveName("dup")
		require.Len(t, matches, 2)
		byImage := map[string]uint64{}
		for _, m := range matches {
			byImage[m.Image] = m.Sym.Address
		}
		want := map[string]uint64{
			"/usr/bin/prog":      0x1100,
			"/usr/lib/libdup.so": 0x2100,
		}
		if diff := cmp.Diff(want, byImage); diff != "" {
			t.Errorf("matches mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("missing name is empty, not an error", func(t *testing.T) {
		assert.Empty(t, r.ResolveName("nosuch"))
	})
}

func TestUnloadImage(t *testing.T) {
	r := newTestResolver(t)
	require.Equal(t, []string{"/usr/bin/prog", "/usr/lib/libdup.so"}, r.Images())

	require.True(t, r.UnloadImage("/usr/lib/libdup.so"))
	assert.Equal(t, []string{"/usr/bin/prog"}, r.Images())

	matches := r.ResolveName("dup")
	require.Len(t, matches, 1)
	assert.Equal(t, "/usr/bin/prog", matches[0].Image)

	_, ok := r.ResolveAddress(0x2105)
	assert.False(t, ok)

	assert.False(t, r.UnloadImage("/usr/lib/libdup.so"))
}

func TestLoadImageReplace(t *testing.T) {
	r := newTestResolver(t)
	r.LoadImage("/usr/bin/prog", symbol.NewTableOf(
		mustSym(t, "main_v2", 0x3000, 0x50, symbol.BindingGlobal, symbol.KindFunc),
	))

	// Still one image, at its original load position.
	assert.Equal(t, []string{"/usr/bin/prog", "/usr/lib/libdup.so"}, r.Images())

	_, ok := r.ResolveAddress(0x1010)
	assert.False(t, ok)
	m, ok := r.ResolveAddress(0x3010)
	require.True(t, ok)
	assert.Equal(t, "main_v2", m.Sym.Name)
}

func TestLoadImageNilTable(t *testing.T) {
	r := New()
	r.LoadImage("/empty", nil)
	assert.Equal(t, []string{"/empty"}, r.Images())
	assert.Equal(t, 0, r.NumSymbols())
	_, ok := r.ResolveAddress(0x1000)
	assert.False(t, ok)
}

func TestResolverSealsTable(t *testing.T) {
	table := symbol.NewTable()
	require.NoError(t, table.Append(mustSym(t, "f", 0x100, 0x10, symbol.BindingGlobal, symbol.KindFunc)))

	r := New()
	r.LoadImage("/img", table)
	assert.True(t, table.Sealed())
	assert.ErrorIs(t, table.Append(symbol.Symbol{Name: "late"}), symbol.ErrTableSealed)
}
