package symbol

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableSeal(t *testing.T) {
	table := NewTable()
	require.False(t, table.Sealed())

	require.NoError(t, table.Append(Symbol{Name: "a", Address: 0x10}))
	require.NoError(t, table.Append(Symbol{Name: "b", Address: 0x20}))

	table.Seal()
	require.True(t, table.Sealed())
	assert.ErrorIs(t, table.Append(Symbol{Name: "c", Address: 0x30}), ErrTableSealed)
	assert.Equal(t, 2, table.Len())

	// Sealing again is a no-op.
	table.Seal()
	assert.Equal(t, 2, table.Len())
}

func TestTableOrder(t *testing.T) {
	// Parser order is preserved, duplicates included.
	recs := []Symbol{
		{Name: "dup", Address: 0x30},
		{Name: "a", Address: 0x10},
		{Name: "dup", Address: 0x30},
	}
	table := NewTableOf(recs...)
	require.True(t, table.Sealed())
	require.Equal(t, len(recs), table.Len())
	for i, want := range recs {
		assert.True(t, want.Equal(table.At(i)))
	}
}

func TestTableRecords(t *testing.T) {
	recs := []Symbol{
		{Name: "a", Address: 0x10},
		{Name: "b", Address: 0x20},
		{Name: "c", Address: 0x30},
	}
	table := NewTableOf(recs...)

	collect := func(it *Iter) []Symbol {
		var got []Symbol
		for it.Next() {
			got = append(got, it.Sym())
		}
		return got
	}

	it := table.Records()
	first := collect(it)
	if diff := cmp.Diff(recs, first); diff != "" {
		t.Errorf("first pass mismatch (-want +got):\n%s", diff)
	}

	// Exhausted iterator stays exhausted until Reset.
	require.False(t, it.Next())
	it.Reset()
	if diff := cmp.Diff(recs, collect(it)); diff != "" {
		t.Errorf("reset pass mismatch (-want +got):\n%s", diff)
	}

	// A fresh call restarts the sequence.
	if diff := cmp.Diff(recs, collect(table.Records())); diff != "" {
		t.Errorf("second pass mismatch (-want +got):\n%s", diff)
	}
}

func TestTableRecordsEmpty(t *testing.T) {
	it := NewTable().Records()
	assert.False(t, it.Next())
}
