package timeline

import (
	"context"

	"mandate/internal/activity"
	"mandate/pkg/requestcontext"
)

const sourceFetchLimit = 200

// ActivitySource feeds the stream from the engine's own activity log,
// rendering absolute timestamps into the stream's relative labels.
type ActivitySource struct {
	store activity.Store
}

func NewActivitySource(store activity.Store) *ActivitySource {
	return &ActivitySource{store: store}
}

func (s *ActivitySource) Name() string { return "activity" }

func (s *ActivitySource) Fetch(ctx context.Context, scope Scope) ([]Item, error) {
	var (
		entries []activity.Entry
		err     error
	)
	if scope.ClaimID != nil {
		entries, err = s.store.ListByClaim(ctx, *scope.ClaimID, sourceFetchLimit)
	} else {
		entries, err = s.store.ListByActor(ctx, scope.ActorID, sourceFetchLimit)
	}
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	items := make([]Item, 0, len(entries))
	for _, entry := range entries {
		items = append(items, Item{
			Type:        entry.Type,
			Category:    entry.Category(),
			Title:       entry.Title,
			Description: entry.Description,
			RefType:     entry.RefType,
			RefID:       entry.RefID,
			Label:       RenderLabel(entry.OccurredAt, now),
		})
	}
	return items, nil
}

// FeedItem is one entry from an external collaborator feed. Collaborators
// deliver pre-rendered relative labels, not timestamps.
type FeedItem struct {
	Type        string `json:"type"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Label       string `json:"label"`
}

// FeedClient fetches a citizen's items from one collaborator service (posts,
// comments, community memberships).
type FeedClient interface {
	FetchItems(ctx context.Context, scope Scope) ([]FeedItem, error)
}

// FeedSource adapts a collaborator feed into the stream.
type FeedSource struct {
	name   string
	client FeedClient
}

func NewFeedSource(name string, client FeedClient) *FeedSource {
	return &FeedSource{name: name, client: client}
}

func (s *FeedSource) Name() string { return s.name }

func (s *FeedSource) Fetch(ctx context.Context, scope Scope) ([]Item, error) {
	feedItems, err := s.client.FetchItems(ctx, scope)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(feedItems))
	for _, fi := range feedItems {
		items = append(items, Item{
			Type:        fi.Type,
			Category:    fi.Category,
			Title:       fi.Title,
			Description: fi.Description,
			Label:       fi.Label,
		})
	}
	return items, nil
}

// StaticFeed is an in-memory FeedClient for development wiring and tests.
type StaticFeed struct {
	Items []FeedItem
}

func (f *StaticFeed) FetchItems(_ context.Context, _ Scope) ([]FeedItem, error) {
	return f.Items, nil
}
