package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"crowdfund-go/internal/model"
	"crowdfund-go/internal/repositories"
)

func TestProjectLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Projects()

	p, err := repo.Create(ctx, model.ProjectCreate{Title: "Mural", Category: "Art", CreatorID: "u1", PledgeGoal: 500})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !p.Active || p.Collected != 0 || p.CreatedAt.IsZero() {
		t.Fatalf("unexpected new project %+v", p)
	}

	if _, err := repo.Donate(ctx, p.ID, 20, "u2"); err != nil {
		t.Fatalf("donate: %v", err)
	}
	if _, err := repo.Donate(ctx, p.ID, 5, "u2"); err != nil {
		t.Fatalf("donate: %v", err)
	}
	got, err := repo.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Collected != 25 || got.Donors() != 1 {
		t.Fatalf("expected 25 from one backer, got %v from %d", got.Collected, got.Donors())
	}

	if err := repo.SetActive(ctx, p.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := repo.Donate(ctx, p.ID, 5, "u3"); !errors.Is(err, repositories.ErrInactive) {
		t.Fatalf("expected ErrInactive, got %v", err)
	}
	got, _ = repo.Get(ctx, p.ID)
	if got.Collected != 25 {
		t.Fatalf("inactive donation changed total to %v", got.Collected)
	}
}

func TestProjectNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Projects()

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("get: expected ErrNotFound, got %v", err)
	}
	if err := repo.SetActive(ctx, "missing", true); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("set active: expected ErrNotFound, got %v", err)
	}
	if _, err := repo.AddComment(ctx, "missing", model.Comment{Text: "hi"}); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("comment: expected ErrNotFound, got %v", err)
	}
}

func TestConcurrentDonations(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Projects()
	p, _ := repo.Create(ctx, model.ProjectCreate{Title: "Garden", Category: "Food", CreatorID: "u1", PledgeGoal: 100})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Donate(ctx, p.ID, 2, "donor"); err != nil {
				t.Errorf("donate: %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ := repo.Get(ctx, p.ID)
	if got.Collected != 100 {
		t.Fatalf("expected 100 collected, got %v", got.Collected)
	}
}

func TestListByCategoryKeepsOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Projects()
	for _, c := range []string{"Art", "Music", "Art"} {
		if _, err := repo.Create(ctx, model.ProjectCreate{Title: c, Category: c, CreatorID: "u", PledgeGoal: 1}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	all, _ := repo.List(ctx)
	art, _ := repo.ListByCategory(ctx, "Art")
	if len(all) != 3 || len(art) != 2 {
		t.Fatalf("expected 3 total and 2 art projects, got %d and %d", len(all), len(art))
	}
	if art[0].ID != all[0].ID || art[1].ID != all[2].ID {
		t.Fatal("category listing lost insertion order")
	}
}

func TestUserEmailUnique(t *testing.T) {
	ctx := context.Background()
	users := NewStore().Users()

	u, err := users.Create(ctx, model.UserCreate{FirstName: "Ada", LastName: "L", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := users.Create(ctx, model.UserCreate{Email: "ADA@example.com"}); !errors.Is(err, repositories.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	got, err := users.GetByEmail(ctx, "ada@example.com")
	if err != nil || got.ID != u.ID {
		t.Fatalf("lookup by email: %v %+v", err, got)
	}
}
