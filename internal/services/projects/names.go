package projects

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"crowdfund-go/internal/model"
)

const creatorLookupLimit = 4

// resolveCreators looks up each distinct creator once. Any failed lookup
// fails the whole listing.
func (s *Service) resolveCreators(ctx context.Context, projects []model.Project) ([]Listing, error) {
	seen := map[string]bool{}
	var ids []string
	for _, p := range projects {
		if !seen[p.CreatorID] {
			seen[p.CreatorID] = true
			ids = append(ids, p.CreatorID)
		}
	}

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(creatorLookupLimit)

	var mu sync.Mutex
	names := make(map[string]string, len(ids))
	for _, id := range ids {
		id := id
		group.Go(func() error {
			user, err := s.users.Get(gctx, id)
			if err != nil {
				return fmt.Errorf("load creator %s: %w", id, err)
			}
			mu.Lock()
			names[id] = user.DisplayName()
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	listings := make([]Listing, 0, len(projects))
	for _, p := range projects {
		listings = append(listings, Listing{Project: p, CreatorName: names[p.CreatorID]})
	}
	return listings, nil
}
