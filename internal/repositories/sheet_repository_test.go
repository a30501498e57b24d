package repositories

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"yard-dashboard/pkg/types"
)

func TestParseCSV(t *testing.T) {
	csv := "Timestamp,Plate,Status\n" +
		"2023-03-15 09:00:00,ABC-123,Arrival\n" +
		"2023-03-15 09:30:00,ABC-123\n" // short row

	table, err := ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, []string{"Timestamp", "Plate", "Status"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Arrival", table.Column("Status")[0])
	assert.Equal(t, "", table.Column("Status")[1], "short rows read as empty cells")
	assert.Nil(t, table.Column("Nope"))
}

func TestParseCSVEmpty(t *testing.T) {
	table, err := ParseCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, table.Headers)
	assert.Empty(t, table.Rows)
}

type countingSource struct {
	calls  int
	tables map[string]types.RawTable
}

func (c *countingSource) LoadAll(ctx context.Context) (map[string]types.RawTable, error) {
	c.calls++
	return c.tables, nil
}

func newCacheHarness(t *testing.T, ttl time.Duration) (*CachedSheetRepository, *countingSource, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	source := &countingSource{tables: map[string]types.RawTable{
		"status": {
			Headers: []string{"Timestamp", "Plate"},
			Rows:    [][]string{{"2023-03-15 09:00:00", "ABC-123"}},
		},
	}}
	cached := NewCachedSheetRepository(source, NewRedisCacheRepository(client), ttl, zap.NewNop())
	return cached, source, mr
}

func TestCachedSheetRepositoryServesWithinTTL(t *testing.T) {
	cached, source, _ := newCacheHarness(t, 15*time.Second)
	ctx := context.Background()

	first, err := cached.LoadAll(ctx)
	require.NoError(t, err)
	second, err := cached.LoadAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, source.calls, "second load within the TTL must hit the cache")
	assert.Equal(t, first, second)
	assert.Equal(t, "ABC-123", second["status"].Rows[0][1])
}

func TestCachedSheetRepositoryRefetchesAfterExpiry(t *testing.T) {
	cached, source, mr := newCacheHarness(t, 15*time.Second)
	ctx := context.Background()

	_, err := cached.LoadAll(ctx)
	require.NoError(t, err)

	mr.FastForward(16 * time.Second)

	_, err = cached.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls, "expired entry must refetch from the source")
}

func TestCachedSheetRepositoryRecoversFromCorruptEntry(t *testing.T) {
	cached, source, mr := newCacheHarness(t, 15*time.Second)
	ctx := context.Background()

	require.NoError(t, mr.Set("yard:sheets:raw:v1", "{not json"))

	tables, err := cached.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls)
	assert.Contains(t, tables, "status")
}
