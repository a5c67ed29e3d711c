package index

import (
	"sort"

	"github.com/oldto/oldto/internal/domain"
)

// RankFeatured realizes the curated image list: featured ids present in the
// image index, mapped to their properties and sorted ascending by
// (date-or-empty, title, id) with ordinal string comparison. The id is
// unique, so the order is total and stable across runs. Ids missing from
// the index are dropped silently; the featured list is curated
// independently and may reference images that predate a catalog prune.
func RankFeatured(ids []domain.ID, images ImageIndex) []domain.Properties {
	featured := make([]domain.Properties, 0, len(ids))
	seen := make(map[domain.ID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if props, ok := images[string(id)]; ok {
			featured = append(featured, props)
		}
	}
	sort.Slice(featured, func(i, j int) bool {
		a, b := featured[i], featured[j]
		if ad, bd := a.Year(), b.Year(); ad != bd {
			return ad < bd
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return domain.CanonicalID(a.ID) < domain.CanonicalID(b.ID)
	})
	return featured
}
