package model

import "time"

// Project is a fundraising campaign. Collected only grows through donations
// and donations are accepted only while Active is true.
type Project struct {
	ID          string
	Title       string
	Category    string
	CreatorID   string
	CreatedAt   time.Time
	PledgeGoal  float64
	Collected   float64
	Description string
	Backers     []string
	Comments    []Comment
	Active      bool
}

// Donors is the number of distinct backers.
func (p Project) Donors() int {
	return len(p.Backers)
}

// HasBacker reports whether userID already donated to the project.
func (p Project) HasBacker(userID string) bool {
	for _, id := range p.Backers {
		if id == userID {
			return true
		}
	}
	return false
}

type ProjectCreate struct {
	Title       string
	Category    string
	CreatorID   string
	CreatedAt   time.Time
	PledgeGoal  float64
	Description string
}

type ProjectUpdate struct {
	Title       string
	Category    string
	PledgeGoal  float64
	Description string
}

type Comment struct {
	PosterID string
	Text     string
	PostedAt time.Time
}
