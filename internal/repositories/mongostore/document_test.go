package mongostore

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"crowdfund-go/internal/repositories"
)

func TestProjectDocumentToModel(t *testing.T) {
	oid := primitive.NewObjectID()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	doc := projectDocument{
		ID:         oid,
		Title:      "Mural",
		Category:   "Art",
		Creator:    "u1",
		Date:       date,
		PledgeGoal: 500,
		Collected:  40,
		Backers:    []string{"u2"},
		Comments:   []commentDocument{{Poster: "u2", Comment: "nice"}},
		Active:     true,
	}

	p := doc.toModel()
	if p.ID != oid.Hex() || p.CreatorID != "u1" || !p.CreatedAt.Equal(date) {
		t.Fatalf("unexpected identity fields %+v", p)
	}
	if p.Donors() != 1 || len(p.Comments) != 1 || p.Comments[0].Text != "nice" {
		t.Fatalf("unexpected embedded fields %+v", p)
	}
}

func TestInvalidObjectIDIsNotFound(t *testing.T) {
	ctx := context.Background()
	projects := &ProjectRepository{}
	users := &UserRepository{}

	if _, err := projects.Get(ctx, "not-hex"); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("project get: expected ErrNotFound, got %v", err)
	}
	if err := projects.SetActive(ctx, "not-hex", true); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("set active: expected ErrNotFound, got %v", err)
	}
	if _, err := users.Get(ctx, "not-hex"); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("user get: expected ErrNotFound, got %v", err)
	}
}
