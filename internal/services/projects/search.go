package projects

import (
	"strings"

	"crowdfund-go/internal/model"
)

type SearchCriteria struct {
	Category  string
	Pledge    Range
	Collected Range
}

// AllCategories reports whether the criteria skip category filtering.
func (c SearchCriteria) AllCategories() bool {
	return c.Category == "" || strings.EqualFold(c.Category, NoCategory)
}

// Intersect keeps the projects of byCategory that satisfy every supplied
// range. A range that was not supplied lets everything through; an empty
// filtered set for a supplied range excludes everything. The two cases are
// told apart by Range.Supplied, never by the length of the filtered slice.
func Intersect(byCategory []model.Project, criteria SearchCriteria) []model.Project {
	var byPledge, byCollected map[string]struct{}
	if criteria.Pledge.Supplied() {
		byPledge = idSet(FilterByRange(byCategory, PledgeGoal, criteria.Pledge))
	}
	if criteria.Collected.Supplied() {
		byCollected = idSet(FilterByRange(byCategory, Collected, criteria.Collected))
	}

	results := []model.Project{}
	for _, p := range byCategory {
		if byPledge != nil {
			if _, ok := byPledge[p.ID]; !ok {
				continue
			}
		}
		if byCollected != nil {
			if _, ok := byCollected[p.ID]; !ok {
				continue
			}
		}
		results = append(results, p)
	}
	return results
}

func idSet(projects []model.Project) map[string]struct{} {
	set := make(map[string]struct{}, len(projects))
	for _, p := range projects {
		set[p.ID] = struct{}{}
	}
	return set
}
