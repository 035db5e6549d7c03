package projects

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"crowdfund-go/internal/model"
	"crowdfund-go/internal/repositories"
	"crowdfund-go/internal/repositories/memory"
)

type recordingNotifier struct {
	mu     sync.Mutex
	alerts []model.Alert
}

func (n *recordingNotifier) SendAlert(alert model.Alert) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, alert)
}

type failingUsers struct {
	repositories.UserRepository
	failID string
}

func (f failingUsers) Get(ctx context.Context, id string) (model.User, error) {
	if id == f.failID {
		return model.User{}, errors.New("users unavailable")
	}
	return f.UserRepository.Get(ctx, id)
}

type fixture struct {
	store    *memory.Store
	service  *Service
	notifier *recordingNotifier
	alice    model.User
	bob      model.User
}

var fixedNow = time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)

func newFixture(t *testing.T, options ...Option) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	alice, err := store.Users().Create(ctx, model.UserCreate{FirstName: "Alice", LastName: "Smith", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("create alice: %v", err)
	}
	bob, err := store.Users().Create(ctx, model.UserCreate{FirstName: "Bob", LastName: "Jones", Email: "bob@example.com"})
	if err != nil {
		t.Fatalf("create bob: %v", err)
	}

	notifier := &recordingNotifier{}
	options = append([]Option{WithNotifier(notifier), WithClock(func() time.Time { return fixedNow })}, options...)
	service := NewService(store.Projects(), store.Users(), zaptest.NewLogger(t), options...)
	return &fixture{store: store, service: service, notifier: notifier, alice: alice, bob: bob}
}

func (fx *fixture) create(t *testing.T, actor model.User, form map[string]string) model.Project {
	t.Helper()
	p, err := fx.service.Create(context.Background(), actor.ID, SubmissionOf(form))
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return p
}

func (fx *fixture) donate(t *testing.T, actor model.User, projectID, amount string) {
	t.Helper()
	_, err := fx.service.Donate(context.Background(), actor.ID, SubmissionOf(map[string]string{FieldProjectID: projectID, FieldDonation: amount}))
	if err != nil {
		t.Fatalf("donate: %v", err)
	}
}

func TestCreate(t *testing.T) {
	fx := newFixture(t)
	p := fx.create(t, fx.alice, map[string]string{"title": " Mural ", "category": "art", "goal": "500", "description": "Paint"})

	if p.Title != "Mural" || p.Category != "Art" || p.PledgeGoal != 500 {
		t.Fatalf("unexpected project %+v", p)
	}
	if !p.Active || p.Collected != 0 || len(p.Backers) != 0 || len(p.Comments) != 0 {
		t.Fatalf("new project should start active and empty: %+v", p)
	}
	if p.CreatorID != fx.alice.ID || !p.CreatedAt.Equal(fixedNow) {
		t.Fatalf("unexpected creator or date: %+v", p)
	}
	if len(fx.notifier.alerts) != 1 || fx.notifier.alerts[0].Kind != model.AlertProjectCreated || fx.notifier.alerts[0].ActorName != "Alice Smith" {
		t.Fatalf("unexpected alerts %+v", fx.notifier.alerts)
	}
}

func TestCreateDefaultsCategory(t *testing.T) {
	fx := newFixture(t)
	p := fx.create(t, fx.alice, map[string]string{"title": "Misc", "goal": "10", "description": "x"})
	if p.Category != DefaultCategory {
		t.Fatalf("expected %q, got %q", DefaultCategory, p.Category)
	}
}

func TestCreateRejectsInvalidForm(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.service.Create(context.Background(), fx.alice.ID, SubmissionOf(map[string]string{"title": "x", "goal": "0", "description": "y"}))

	var verrs ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) != 1 || verrs[0] != "Pledge goal needs to be greater than zero" {
		t.Fatalf("unexpected error %v", err)
	}
	all, _ := fx.store.Projects().List(context.Background())
	if len(all) != 0 {
		t.Fatal("invalid form must not create a project")
	}
}

func TestCreateRequiresLogin(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.service.Create(context.Background(), "", SubmissionOf(map[string]string{"title": "x", "goal": "1", "description": "y"}))
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	p := fx.create(t, fx.alice, map[string]string{"title": "Mural", "category": "art", "goal": "500", "description": "Paint"})
	if err := fx.service.Deactivate(ctx, fx.alice.ID, p.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	form := map[string]string{FieldID: p.ID, "title": "Bigger mural", "category": "music", "goal": "750", "description": "More paint"}

	t.Run("other user is forbidden", func(t *testing.T) {
		_, err := fx.service.Update(ctx, fx.bob.ID, SubmissionOf(form))
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("edit requires category", func(t *testing.T) {
		bad := map[string]string{FieldID: p.ID, "title": "t", "goal": "1", "description": "d"}
		_, err := fx.service.Update(ctx, fx.alice.ID, SubmissionOf(bad))
		var verrs ValidationErrors
		if !errors.As(err, &verrs) || verrs[0] != "No category provided" {
			t.Fatalf("unexpected error %v", err)
		}
	})

	t.Run("owner edits and active flag is untouched", func(t *testing.T) {
		updated, err := fx.service.Update(ctx, fx.alice.ID, SubmissionOf(form))
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.Title != "Bigger mural" || updated.Category != "Music" || updated.PledgeGoal != 750 {
			t.Fatalf("unexpected project %+v", updated)
		}
		if updated.Active {
			t.Fatal("update must not reactivate the project")
		}
	})
}

func TestDonate(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	p := fx.create(t, fx.alice, map[string]string{"title": "Mural", "goal": "500", "description": "Paint"})

	fx.donate(t, fx.bob, p.ID, "25")
	fx.donate(t, fx.bob, p.ID, "10.5")

	got, _ := fx.service.Get(ctx, p.ID)
	if got.Collected != 35.5 {
		t.Fatalf("expected 35.5 collected, got %v", got.Collected)
	}
	if got.Donors() != 1 || !got.HasBacker(fx.bob.ID) {
		t.Fatalf("expected bob as the single backer, got %v", got.Backers)
	}

	last := fx.notifier.alerts[len(fx.notifier.alerts)-1]
	if last.Kind != model.AlertDonation || last.Amount != 10.5 || last.ActorName != "Bob Jones" {
		t.Fatalf("unexpected alert %+v", last)
	}
}

func TestDonateRejections(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	p := fx.create(t, fx.alice, map[string]string{"title": "Mural", "goal": "500", "description": "Paint"})
	fx.donate(t, fx.bob, p.ID, "20")

	tests := []struct {
		name     string
		actor    string
		donation string
		want     []string
		wantErr  error
	}{
		{name: "negative", actor: fx.bob.ID, donation: "-5", want: []string{"Donation needs to be greater than zero"}},
		{name: "prefix", actor: fx.bob.ID, donation: "-5abc", want: []string{"Donation needs to be a number", "Donation needs to be greater than zero"}},
		{name: "empty", actor: fx.bob.ID, donation: " ", want: []string{"Donation needs to have a value"}},
		{name: "creator", actor: fx.alice.ID, donation: "5", wantErr: ErrForbidden},
		{name: "anonymous", actor: "", donation: "5", wantErr: ErrUnauthenticated},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fx.service.Donate(ctx, tc.actor, SubmissionOf(map[string]string{FieldProjectID: p.ID, FieldDonation: tc.donation}))
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
			} else {
				var verrs ValidationErrors
				if !errors.As(err, &verrs) || len(verrs) != len(tc.want) {
					t.Fatalf("unexpected error %v", err)
				}
				for i := range tc.want {
					if verrs[i] != tc.want[i] {
						t.Fatalf("got %q, want %q", verrs, tc.want)
					}
				}
			}

			got, _ := fx.service.Get(ctx, p.ID)
			if got.Collected != 20 {
				t.Fatalf("collected changed to %v", got.Collected)
			}
		})
	}
}

func TestDonateToInactiveProject(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	p := fx.create(t, fx.alice, map[string]string{"title": "Mural", "goal": "500", "description": "Paint"})
	if err := fx.service.Deactivate(ctx, fx.bob.ID, p.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, err := fx.service.Donate(ctx, fx.bob.ID, SubmissionOf(map[string]string{FieldProjectID: p.ID, FieldDonation: "5"}))
	var verrs ValidationErrors
	if !errors.As(err, &verrs) || verrs[0] != msgNotAcceptingDonations {
		t.Fatalf("unexpected error %v", err)
	}
	got, _ := fx.service.Get(ctx, p.ID)
	if got.Collected != 0 {
		t.Fatalf("inactive project collected %v", got.Collected)
	}
}

func TestLifecycleIsIdempotent(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	p := fx.create(t, fx.alice, map[string]string{"title": "Mural", "goal": "500", "description": "Paint"})

	for i := 0; i < 2; i++ {
		if err := fx.service.Activate(ctx, fx.bob.ID, p.ID); err != nil {
			t.Fatalf("activate: %v", err)
		}
	}
	got, _ := fx.service.Get(ctx, p.ID)
	if !got.Active {
		t.Fatal("expected project to stay active")
	}

	for i := 0; i < 2; i++ {
		if err := fx.service.Deactivate(ctx, fx.bob.ID, p.ID); err != nil {
			t.Fatalf("deactivate: %v", err)
		}
	}
	got, _ = fx.service.Get(ctx, p.ID)
	if got.Active {
		t.Fatal("expected project to stay inactive")
	}

	if err := fx.service.Activate(ctx, "", "missing"); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOwnerOnlyLifecycle(t *testing.T) {
	fx := newFixture(t, WithLifecycleGuard(OwnerOnly{}))
	ctx := context.Background()
	p := fx.create(t, fx.alice, map[string]string{"title": "Mural", "goal": "500", "description": "Paint"})

	if err := fx.service.Deactivate(ctx, "", p.ID); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if err := fx.service.Deactivate(ctx, fx.bob.ID, p.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := fx.service.Deactivate(ctx, fx.alice.ID, p.ID); err != nil {
		t.Fatalf("owner deactivate: %v", err)
	}
	got, _ := fx.service.Get(ctx, p.ID)
	if got.Active {
		t.Fatal("expected project to be inactive")
	}
}

func TestCommentAndDetail(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	p := fx.create(t, fx.alice, map[string]string{"title": "Mural", "goal": "500", "description": "Paint"})

	view, err := fx.service.Comment(ctx, fx.bob.ID, SubmissionOf(map[string]string{FieldProjectID: p.ID, FieldComment: "Looks great"}))
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	if view.PosterName != "Bob Jones" || view.Text != "Looks great" || !view.PostedAt.Equal(fixedNow) {
		t.Fatalf("unexpected comment view %+v", view)
	}

	if _, err := fx.service.Comment(ctx, fx.bob.ID, SubmissionOf(map[string]string{FieldProjectID: p.ID, FieldComment: "  "})); err == nil {
		t.Fatal("expected blank comment to be rejected")
	}

	detail, err := fx.service.Detail(ctx, p.ID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if detail.CreatorName != "Alice Smith" || len(detail.Comments) != 1 || detail.Comments[0].PosterName != "Bob Jones" {
		t.Fatalf("unexpected detail %+v", detail)
	}
}

func TestDetailAbortsOnFailedLookup(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	p := fx.create(t, fx.alice, map[string]string{"title": "Mural", "goal": "500", "description": "Paint"})
	if _, err := fx.service.Comment(ctx, fx.bob.ID, SubmissionOf(map[string]string{FieldProjectID: p.ID, FieldComment: "hi"})); err != nil {
		t.Fatalf("comment: %v", err)
	}

	broken := NewService(fx.store.Projects(), failingUsers{UserRepository: fx.store.Users(), failID: fx.bob.ID}, zaptest.NewLogger(t))
	if _, err := broken.Detail(ctx, p.ID); err == nil {
		t.Fatal("expected detail to fail when a poster lookup fails")
	}
	if _, err := broken.Detail(ctx, "missing"); !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListResolvesCreatorsInOrder(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	first := fx.create(t, fx.alice, map[string]string{"title": "One", "goal": "1", "description": "x"})
	second := fx.create(t, fx.bob, map[string]string{"title": "Two", "goal": "2", "description": "x"})
	third := fx.create(t, fx.alice, map[string]string{"title": "Three", "goal": "3", "description": "x"})

	listings, err := fx.service.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []struct{ id, creator string }{{first.ID, "Alice Smith"}, {second.ID, "Bob Jones"}, {third.ID, "Alice Smith"}}
	if len(listings) != len(want) {
		t.Fatalf("expected %d listings, got %d", len(want), len(listings))
	}
	for i, w := range want {
		if listings[i].ID != w.id || listings[i].CreatorName != w.creator {
			t.Fatalf("listing %d = %s by %s, want %s by %s", i, listings[i].ID, listings[i].CreatorName, w.id, w.creator)
		}
	}

	broken := NewService(fx.store.Projects(), failingUsers{UserRepository: fx.store.Users(), failID: fx.bob.ID}, zaptest.NewLogger(t))
	if _, err := broken.List(ctx); err == nil {
		t.Fatal("expected list to fail when a creator lookup fails")
	}
}

func TestSearch(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	small := fx.create(t, fx.alice, map[string]string{"title": "Small", "category": "art", "goal": "50", "description": "x"})
	mid := fx.create(t, fx.alice, map[string]string{"title": "Mid", "category": "art", "goal": "100", "description": "x"})
	song := fx.create(t, fx.alice, map[string]string{"title": "Song", "category": "music", "goal": "300", "description": "x"})
	big := fx.create(t, fx.alice, map[string]string{"title": "Big", "category": "art", "goal": "500", "description": "x"})
	fx.donate(t, fx.bob, mid.ID, "40")
	fx.donate(t, fx.bob, song.ID, "300")

	run := func(t *testing.T, form map[string]string) []string {
		t.Helper()
		criteria, errs := ValidateSearch(SubmissionOf(form))
		if len(errs) != 0 {
			t.Fatalf("unexpected validation errors %q", errs)
		}
		listings, err := fx.service.Search(ctx, criteria)
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		out := []string{}
		for _, l := range listings {
			out = append(out, l.ID)
		}
		return out
	}

	tests := []struct {
		name string
		form map[string]string
		want []string
	}{
		{"none without bounds returns all", map[string]string{"category": "none"}, []string{small.ID, mid.ID, song.ID, big.ID}},
		{"art pledged 100 to 500", map[string]string{"category": "art", "from_pledged": "100", "to_pledged": "500"}, []string{mid.ID, big.ID}},
		{"category is capitalized", map[string]string{"category": "music"}, []string{song.ID}},
		{"category ignores case", map[string]string{"category": "MUSIC"}, []string{song.ID}},
		{"mixed case category", map[string]string{"category": "aRt", "to_pledged": "100"}, []string{small.ID, mid.ID}},
		{"collected at least 1", map[string]string{"category": "none", "from_collected": "1"}, []string{mid.ID, song.ID}},
		{"no match", map[string]string{"category": "food"}, []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := run(t, tc.form)
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}
