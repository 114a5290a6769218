package intern

import (
	"testing"

	"github.com/hupe1980/hast/internal/hash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_Empty(t *testing.T) {
	tbl := New()

	_, ok := tbl.Resolve(100)
	assert.False(t, ok)
	assert.Equal(t, 0, tbl.Len())
}

func TestTable_InsertOne(t *testing.T) {
	tbl := New()
	input := "123456789"

	id, collided := tbl.Intern(input)
	require.False(t, collided)
	assert.Equal(t, hash.ID(input), id)
	assert.Equal(t, 1, tbl.Len())
	assert.True(t, tbl.Contains(id))

	got, ok := tbl.Resolve(id)
	require.True(t, ok)
	assert.Equal(t, input, got)
}

func TestTable_InsertRepeat(t *testing.T) {
	tbl := New()
	input := "123456789"

	first, _ := tbl.Intern(input)
	for i := 0; i < 100; i++ {
		id, collided := tbl.Intern(input)
		require.False(t, collided)
		require.Equal(t, first, id)
	}
	assert.Equal(t, 1, tbl.Len())

	_, ok := tbl.Resolve(100)
	assert.False(t, ok)
}

func TestTable_Collision(t *testing.T) {
	// Seed the slot of "other" with a different string to simulate a collision.
	tbl := &Table{values: map[uint64]string{hash.ID("other"): "impostor"}}

	id, collided := tbl.Intern("other")
	assert.Equal(t, hash.ID("other"), id)
	assert.True(t, collided)
	assert.Equal(t, 1, tbl.Len())

	v, _ := tbl.Resolve(id)
	assert.Equal(t, "impostor", v, "first writer keeps the slot")
}
