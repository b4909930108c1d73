//go:build integration

package registry

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "mandate/pkg/domain"
	"mandate/pkg/testutil/containers"
)

func TestSearchCacheIntegration(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()

	level := LevelCounty
	filter := SearchFilter{Country: "KE", Level: &level, FreeText: "nairobi"}
	positions := []*Position{{
		ID:               id.PositionID(uuid.New()),
		PositionCode:     "KE:governor:nairobi",
		CountryCode:      "KE",
		GovernanceLevel:  LevelCounty,
		JurisdictionName: "Nairobi City County",
		Title:            "Governor, Nairobi City County",
		TermYears:        5,
		IsElected:        true,
		CreatedAt:        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}}

	t.Run("round-trips search results", func(t *testing.T) {
		require.NoError(t, rc.Flush(ctx))
		cache := NewSearchCache(rc.Client, time.Minute)

		_, hit := cache.Get(ctx, filter)
		assert.False(t, hit, "empty cache must miss")

		require.NoError(t, cache.Set(ctx, filter, positions))
		got, hit := cache.Get(ctx, filter)
		require.True(t, hit)
		require.Len(t, got, 1)
		assert.Equal(t, positions[0].ID, got[0].ID)
		assert.Equal(t, positions[0].PositionCode, got[0].PositionCode)
	})

	t.Run("different filters use different keys", func(t *testing.T) {
		require.NoError(t, rc.Flush(ctx))
		cache := NewSearchCache(rc.Client, time.Minute)
		require.NoError(t, cache.Set(ctx, filter, positions))

		_, hit := cache.Get(ctx, SearchFilter{Country: "KE", Level: &level, FreeText: "mombasa"})
		assert.False(t, hit)
		_, hit = cache.Get(ctx, SearchFilter{Country: "KE"})
		assert.False(t, hit)
	})

	t.Run("entries expire with the ttl", func(t *testing.T) {
		require.NoError(t, rc.Flush(ctx))
		cache := NewSearchCache(rc.Client, 100*time.Millisecond)
		require.NoError(t, cache.Set(ctx, filter, positions))

		_, hit := cache.Get(ctx, filter)
		require.True(t, hit)

		time.Sleep(200 * time.Millisecond)
		_, hit = cache.Get(ctx, filter)
		assert.False(t, hit, "expired entry must miss")
	})
}
