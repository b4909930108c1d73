// Package timeline aggregates a citizen's civic activity from several feeds
// into one chronologically ordered stream. Sources are queried concurrently;
// a slow or failing source degrades the stream rather than failing it.
package timeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	id "mandate/pkg/domain"
)

// Item is one entry in the merged stream. Recency is carried as a relative
// label because that is all some collaborator feeds provide.
type Item struct {
	Type        string `json:"type"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	RefType     string `json:"ref_type,omitempty"`
	RefID       string `json:"ref_id,omitempty"`
	Label       string `json:"label"` // e.g. "2 min. ago"

	recency int64 // minutes ago, derived from Label
	seq     int   // arrival order, stabilizes equal recencies
}

// Scope selects whose stream to build.
type Scope struct {
	ActorID id.UserID
	ClaimID *id.ClaimID
}

// Source is one feed contributing items to the stream.
type Source interface {
	Name() string
	Fetch(ctx context.Context, scope Scope) ([]Item, error)
}

// Query narrows and pages the merged stream.
type Query struct {
	Category string // filter by item category prefix; empty keeps everything
	Offset   int
	Limit    int // 0 means the default page size
}

const defaultPageSize = 50

// RenderLabel formats an absolute timestamp into the relative label the
// stream carries, matching the collaborator feeds' format.
func RenderLabel(occurredAt, now time.Time) string {
	elapsed := now.Sub(occurredAt)
	if elapsed < 0 {
		elapsed = 0
	}
	switch {
	case elapsed < time.Hour:
		return fmt.Sprintf("%d min. ago", int(elapsed.Minutes()))
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("%d hr. ago", int(elapsed.Hours()))
	case elapsed < 7*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(elapsed.Hours()/24))
	default:
		return fmt.Sprintf("%d weeks ago", int(elapsed.Hours()/(24*7)))
	}
}

// merge orders items most recent first. The sort is stable over each item's
// arrival sequence, so sources that return newest-first keep that order for
// items with identical labels.
func merge(items []Item) []Item {
	for i := range items {
		items[i].recency = parseRelativeLabel(items[i].Label)
		items[i].seq = i
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].recency != items[j].recency {
			return items[i].recency < items[j].recency
		}
		return items[i].seq < items[j].seq
	})
	return items
}

func filterByCategory(items []Item, category string) []Item {
	if category == "" {
		return items
	}
	filtered := items[:0]
	for _, item := range items {
		if item.Category == category {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

func page(items []Item, offset, limit int) []Item {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
