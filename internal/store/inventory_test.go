package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- mock pgx row / querier ---

type mockRow struct {
	city *int
	err  error
}

func (r mockRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	p := dest[0].(**int)
	*p = r.city
	return nil
}

type mockQuerier struct {
	rows  map[int64]mockRow
	calls int
}

func (m *mockQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	m.calls++
	row, ok := m.rows[args[0].(int64)]
	if !ok {
		return mockRow{err: pgx.ErrNoRows}
	}
	return row
}

func intPtr(v int) *int { return &v }

func TestCityID_Known(t *testing.T) {
	db := &mockQuerier{rows: map[int64]mockRow{7: {city: intPtr(501)}}}
	s := NewPGInventorySources(db, 0, zap.NewNop())

	id, ok, err := s.CityID(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 501, id)

	// second lookup is served from the cache
	_, _, err = s.CityID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 1, db.calls)
}

func TestCityID_UnknownSource(t *testing.T) {
	s := NewPGInventorySources(&mockQuerier{}, 0, zap.NewNop())

	id, ok, err := s.CityID(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, id)
}

func TestCityID_NullOrZeroCity(t *testing.T) {
	db := &mockQuerier{rows: map[int64]mockRow{
		1: {city: nil},
		2: {city: intPtr(0)},
	}}
	s := NewPGInventorySources(db, 0, zap.NewNop())

	for _, id := range []int64{1, 2} {
		_, ok, err := s.CityID(context.Background(), id)
		require.NoError(t, err)
		assert.False(t, ok, "source %d", id)
	}
	assert.Equal(t, 2, db.calls)
}

func TestCityID_QueryError(t *testing.T) {
	db := &mockQuerier{rows: map[int64]mockRow{3: {err: errors.New("conn refused")}}}
	s := NewPGInventorySources(db, 0, zap.NewNop())

	_, ok, err := s.CityID(context.Background(), 3)
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "inventory source 3")
}

func TestStaticInventorySources(t *testing.T) {
	s := StaticInventorySources{1: 501, 2: 0}

	id, ok, err := s.CityID(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 501, id)

	_, ok, _ = s.CityID(context.Background(), 2)
	assert.False(t, ok)
	_, ok, _ = s.CityID(context.Background(), 3)
	assert.False(t, ok)
}

func TestNewPool_RequiresURL(t *testing.T) {
	_, err := NewPool(context.Background(), "", PGPoolConfig{})
	require.Error(t, err)

	_, err = NewPool(context.Background(), "://bad", PGPoolConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pg config")
}
