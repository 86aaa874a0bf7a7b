package overpass

import (
	"context"
	"errors"
	"fmt"

	"github.com/CommonsAtlas/CA-Backend/internal/importer/provider"
)

// ErrNoRelations means no admin level in the requested range returned data.
var ErrNoRelations = errors.New("no relations found")

// DiscoverHierarchy walks admin levels from minLevel to maxLevel and returns
// the unique relation ids found at each non-empty level.
//
// The first populated level is found with country-root queries; deeper levels
// fan out over the previous populated level's relations as search areas. A
// level that yields nothing is skipped and the parent set is kept, so sparse
// admin-level numbering (common outside western Europe) still resolves.
func (c *Client) DiscoverHierarchy(ctx context.Context, iso3 string, minLevel, maxLevel int) (map[int][]int64, error) {
	levels := make(map[int][]int64)
	var parents []int64

	for level := minLevel; level <= maxLevel; level++ {
		var ids []int64
		var err error

		if len(parents) == 0 {
			provider.LogRequest("overpass", "POST", c.endpoint, map[string]interface{}{
				"query": "country-root", "country": iso3, "level": level,
			})
			ids, err = c.QueryIDs(ctx, CountryRootQuery(iso3, level))
			if err != nil {
				return nil, fmt.Errorf("discover level %d: %w", level, err)
			}
		} else {
			provider.LogRequest("overpass", "POST", c.endpoint, map[string]interface{}{
				"query": "children", "level": level, "parents": len(parents),
			})
			ids, err = c.discoverChildren(ctx, parents, level)
			if err != nil {
				return nil, fmt.Errorf("discover level %d: %w", level, err)
			}
		}

		ids = dedupeIDs(ids)
		if len(ids) == 0 {
			continue
		}

		levels[level] = ids
		parents = ids
	}

	if len(levels) == 0 {
		return nil, ErrNoRelations
	}
	return levels, nil
}

// discoverChildren queries each parent as a search area and collects the
// union of child ids. The same boundary can show up under multiple parents
// at land borders; callers dedupe.
func (c *Client) discoverChildren(ctx context.Context, parents []int64, level int) ([]int64, error) {
	var ids []int64
	for _, parent := range parents {
		childIDs, err := c.QueryIDs(ctx, ChildrenQuery(parent, level))
		if err != nil {
			return nil, fmt.Errorf("children of relation %d: %w", parent, err)
		}
		ids = append(ids, childIDs...)
	}
	return ids, nil
}

// dedupeIDs removes duplicates preserving first-seen order.
func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
