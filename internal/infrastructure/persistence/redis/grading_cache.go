package redis

import (
	"context"
	"errors"
	"log/slog"

	"github.com/resulthub/academic-results-hub/internal/domain/grading"
	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GRADING TABLE CACHE
// ══════════════════════════════════════════════════════════════════════════════

// GradingCache is a read-through cache in front of a grading.TableProvider
// (normally the PostgreSQL grading repository). Cache failures are logged
// and fall through to the inner provider; the resolver never sees them.
type GradingCache struct {
	inner  grading.TableProvider
	cache  *Cache
	logger *slog.Logger
}

// cachedBand is the serialized form of one grading band.
type cachedBand struct {
	MinScore float64 `json:"min_score"`
	MaxScore float64 `json:"max_score"`
	Grade    string  `json:"grade"`
	Point    float64 `json:"point"`
}

// NewGradingCache creates a read-through grading table cache. A nil cache
// disables caching and delegates every call to the inner provider.
func NewGradingCache(inner grading.TableProvider, cache *Cache, logger *slog.Logger) *GradingCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &GradingCache{
		inner:  inner,
		cache:  cache,
		logger: logger.With("component", "grading_cache"),
	}
}

// TableFor implements grading.TableProvider.
func (g *GradingCache) TableFor(ctx context.Context, degreeType shared.DegreeType) (grading.Table, error) {
	if g.cache == nil {
		return g.inner.TableFor(ctx, degreeType)
	}

	key := GradingKey(degreeType.String())

	var bands []cachedBand
	err := g.cache.Get(ctx, key, &bands)
	switch {
	case err == nil:
		return g.toTable(degreeType, bands), nil
	case !errors.Is(err, ErrCacheMiss):
		g.logger.Warn("grading table cache read failed",
			"degree_type", degreeType,
			"error", err,
		)
	}

	table, err := g.inner.TableFor(ctx, degreeType)
	if err != nil {
		return grading.Table{}, err
	}

	if err := g.cache.Set(ctx, key, g.toCached(table), TTLGradingTable); err != nil {
		g.logger.Warn("grading table cache write failed",
			"degree_type", degreeType,
			"error", err,
		)
	}

	return table, nil
}

// Invalidate drops the cached table for a degree type. Called after an
// administrative table replacement.
func (g *GradingCache) Invalidate(ctx context.Context, degreeType shared.DegreeType) error {
	if g.cache == nil {
		return nil
	}
	return g.cache.Delete(ctx, GradingKey(degreeType.String()))
}

func (g *GradingCache) toTable(degreeType shared.DegreeType, bands []cachedBand) grading.Table {
	table := grading.Table{DegreeType: degreeType}
	for _, b := range bands {
		table.Bands = append(table.Bands, grading.Band{
			MinScore: b.MinScore,
			MaxScore: b.MaxScore,
			Grade:    grading.Grade(b.Grade),
			Point:    grading.Point(b.Point),
		})
	}
	return table
}

func (g *GradingCache) toCached(table grading.Table) []cachedBand {
	bands := make([]cachedBand, 0, len(table.Bands))
	for _, b := range table.Bands {
		bands = append(bands, cachedBand{
			MinScore: b.MinScore,
			MaxScore: b.MaxScore,
			Grade:    b.Grade.String(),
			Point:    b.Point.Float64(),
		})
	}
	return bands
}
