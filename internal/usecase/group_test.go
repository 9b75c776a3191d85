package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rosterd/rosterd/internal/cache"
	"github.com/rosterd/rosterd/internal/domain"
	"github.com/rosterd/rosterd/internal/repository"
	"github.com/rosterd/rosterd/internal/usecase"
)

// ---- fakes ----

type fakeGroupRepo struct {
	create          func(ctx context.Context, g *domain.Group) (*domain.Group, error)
	getByID         func(ctx context.Context, id uuid.UUID) (*domain.Group, error)
	getByName       func(ctx context.Context, name string) (*domain.Group, error)
	list            func(ctx context.Context, page, pageSize int) ([]*domain.Group, int64, error)
	update          func(ctx context.Context, id uuid.UUID, input repository.UpdateGroupInput) (*domain.Group, error)
	del             func(ctx context.Context, id uuid.UUID) error
	descendantIDs   func(ctx context.Context, rootID uuid.UUID) ([]uuid.UUID, error)
	resolvedMembers func(ctx context.Context, rootID uuid.UUID) ([]domain.GroupWithMembers, int, error)
}

func (r *fakeGroupRepo) Create(ctx context.Context, g *domain.Group) (*domain.Group, error) {
	return r.create(ctx, g)
}

func (r *fakeGroupRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	return r.getByID(ctx, id)
}

func (r *fakeGroupRepo) GetByName(ctx context.Context, name string) (*domain.Group, error) {
	return r.getByName(ctx, name)
}

func (r *fakeGroupRepo) List(ctx context.Context, page, pageSize int) ([]*domain.Group, int64, error) {
	return r.list(ctx, page, pageSize)
}

func (r *fakeGroupRepo) Update(ctx context.Context, id uuid.UUID, input repository.UpdateGroupInput) (*domain.Group, error) {
	return r.update(ctx, id, input)
}

func (r *fakeGroupRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.del(ctx, id)
}

func (r *fakeGroupRepo) DescendantIDs(ctx context.Context, rootID uuid.UUID) ([]uuid.UUID, error) {
	return r.descendantIDs(ctx, rootID)
}

func (r *fakeGroupRepo) ResolvedMembers(ctx context.Context, rootID uuid.UUID) ([]domain.GroupWithMembers, int, error) {
	return r.resolvedMembers(ctx, rootID)
}

// fakeCache stores JSON payloads in memory and records invalidations.
type fakeCache struct {
	mu           sync.Mutex
	entries      map[string][]byte
	invalidated  []string
	patternCalls int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string, dest any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload, ok := c.entries[key]
	if !ok {
		return false
	}
	return json.Unmarshal(payload, dest) == nil
}

func (c *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.entries[key] = payload
}

func (c *fakeCache) Invalidate(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.invalidated = append(c.invalidated, key)
}

func (c *fakeCache) InvalidatePattern(_ context.Context, _ string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]byte)
	c.patternCalls++
}

// ---- helpers ----

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func groupByID(groups map[uuid.UUID]*domain.Group) func(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	return func(_ context.Context, id uuid.UUID) (*domain.Group, error) {
		if g, ok := groups[id]; ok {
			return g, nil
		}
		return nil, domain.ErrGroupNotFound
	}
}

// ---- ResolvedMembers ----

func TestResolvedMembers_UnknownGroup_ReturnsNotFound(t *testing.T) {
	repo := &fakeGroupRepo{
		getByID: groupByID(nil),
	}
	uc := usecase.NewGroupUsecase(repo, newFakeCache(), testLogger())

	_, err := uc.ResolvedMembers(context.Background(), uuid.New())
	if !errors.Is(err, domain.ErrGroupNotFound) {
		t.Errorf("want ErrGroupNotFound, got %v", err)
	}
}

func TestResolvedMembers_CachesSecondLookup(t *testing.T) {
	groupID := uuid.New()
	root := &domain.Group{ID: groupID, Name: "Nursing"}
	member := domain.Staff{ID: uuid.New(), Name: "Aisha", Status: domain.StaffActive}

	var queries int
	repo := &fakeGroupRepo{
		getByID: groupByID(map[uuid.UUID]*domain.Group{groupID: root}),
		resolvedMembers: func(_ context.Context, _ uuid.UUID) ([]domain.GroupWithMembers, int, error) {
			queries++
			return []domain.GroupWithMembers{{Group: *root, Members: []domain.Staff{member}}}, 1, nil
		},
	}
	uc := usecase.NewGroupUsecase(repo, newFakeCache(), testLogger())

	for i := 0; i < 2; i++ {
		result, err := uc.ResolvedMembers(context.Background(), groupID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.UniqueStaff != 1 || len(result.Groups) != 1 {
			t.Fatalf("result = %+v", result)
		}
		if result.Groups[0].Members[0].ID != member.ID {
			t.Fatalf("member mismatch on lookup %d", i+1)
		}
	}

	if queries != 1 {
		t.Errorf("repo queried %d times, want 1 (second lookup served from cache)", queries)
	}
}

func TestResolvedMembers_MutationInvalidatesCache(t *testing.T) {
	groupID := uuid.New()
	root := &domain.Group{ID: groupID, Name: "Nursing"}

	var queries int
	repo := &fakeGroupRepo{
		getByID: groupByID(map[uuid.UUID]*domain.Group{groupID: root}),
		resolvedMembers: func(_ context.Context, _ uuid.UUID) ([]domain.GroupWithMembers, int, error) {
			queries++
			return nil, 0, nil
		},
		update: func(_ context.Context, _ uuid.UUID, _ repository.UpdateGroupInput) (*domain.Group, error) {
			return root, nil
		},
	}
	memberCache := newFakeCache()
	uc := usecase.NewGroupUsecase(repo, memberCache, testLogger())

	if _, err := uc.ResolvedMembers(context.Background(), groupID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	name := "Renamed"
	if _, err := uc.Update(context.Background(), groupID, repository.UpdateGroupInput{Name: &name}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := uc.ResolvedMembers(context.Background(), groupID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if queries != 2 {
		t.Errorf("repo queried %d times, want 2 (cache dropped by the update)", queries)
	}
	if memberCache.patternCalls == 0 {
		t.Error("update did not invalidate the resolved-members pattern")
	}
}

// ---- ResolvedActiveStaff ----

func TestResolvedActiveStaff_DeduplicatesAcrossGroups(t *testing.T) {
	groupID := uuid.New()
	root := &domain.Group{ID: groupID, Name: "Nursing"}
	shared := domain.Staff{ID: uuid.New(), Name: "Kanat", Status: domain.StaffActive}
	other := domain.Staff{ID: uuid.New(), Name: "Leyla", Status: domain.StaffActive}

	repo := &fakeGroupRepo{
		getByID: groupByID(map[uuid.UUID]*domain.Group{groupID: root}),
		resolvedMembers: func(_ context.Context, _ uuid.UUID) ([]domain.GroupWithMembers, int, error) {
			return []domain.GroupWithMembers{
				{Group: domain.Group{ID: uuid.New(), Name: "Ward A"}, Members: []domain.Staff{shared}},
				{Group: domain.Group{ID: uuid.New(), Name: "Ward B"}, Members: []domain.Staff{other, shared}},
			}, 2, nil
		},
	}
	uc := usecase.NewGroupUsecase(repo, newFakeCache(), testLogger())

	staff, err := uc.ResolvedActiveStaff(context.Background(), groupID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(staff) != 2 {
		t.Fatalf("got %d staff, want 2", len(staff))
	}
	if staff[0].ID != shared.ID || staff[1].ID != other.ID {
		t.Error("order not preserved or duplicate kept")
	}
}

// ---- Update ----

func TestUpdateGroup_SetAndUnsetParent_Rejected(t *testing.T) {
	uc := usecase.NewGroupUsecase(&fakeGroupRepo{}, newFakeCache(), testLogger())

	parent := uuid.New()
	_, err := uc.Update(context.Background(), uuid.New(), repository.UpdateGroupInput{
		ParentID:    &parent,
		UnsetParent: true,
	})
	if !errors.Is(err, domain.ErrParentConflict) {
		t.Errorf("want ErrParentConflict, got %v", err)
	}
}

func TestUpdateGroup_SelfParent_RejectedAsCycle(t *testing.T) {
	uc := usecase.NewGroupUsecase(&fakeGroupRepo{}, newFakeCache(), testLogger())

	id := uuid.New()
	_, err := uc.Update(context.Background(), id, repository.UpdateGroupInput{ParentID: &id})
	if !errors.Is(err, domain.ErrGroupCycle) {
		t.Errorf("want ErrGroupCycle, got %v", err)
	}
}

func TestUpdateGroup_DescendantParent_RejectedAsCycle(t *testing.T) {
	id := uuid.New()
	child := uuid.New()

	repo := &fakeGroupRepo{
		getByID: groupByID(map[uuid.UUID]*domain.Group{
			child: {ID: child, Name: "Ward A"},
		}),
		descendantIDs: func(_ context.Context, _ uuid.UUID) ([]uuid.UUID, error) {
			return []uuid.UUID{child}, nil
		},
	}
	uc := usecase.NewGroupUsecase(repo, newFakeCache(), testLogger())

	_, err := uc.Update(context.Background(), id, repository.UpdateGroupInput{ParentID: &child})
	if !errors.Is(err, domain.ErrGroupCycle) {
		t.Errorf("want ErrGroupCycle, got %v", err)
	}
}

func TestUpdateGroup_MissingParent_Rejected(t *testing.T) {
	repo := &fakeGroupRepo{
		getByID: groupByID(nil),
	}
	uc := usecase.NewGroupUsecase(repo, newFakeCache(), testLogger())

	parent := uuid.New()
	_, err := uc.Update(context.Background(), uuid.New(), repository.UpdateGroupInput{ParentID: &parent})
	if !errors.Is(err, domain.ErrGroupNotFound) {
		t.Errorf("want ErrGroupNotFound, got %v", err)
	}
}

// ---- Create ----

func TestCreateGroup_MissingParent_Rejected(t *testing.T) {
	repo := &fakeGroupRepo{
		getByID: groupByID(nil),
	}
	uc := usecase.NewGroupUsecase(repo, newFakeCache(), testLogger())

	parent := uuid.New()
	_, err := uc.Create(context.Background(), "Ward C", &parent)
	if !errors.Is(err, domain.ErrGroupNotFound) {
		t.Errorf("want ErrGroupNotFound, got %v", err)
	}
}

func TestCreateGroup_AssignsID(t *testing.T) {
	repo := &fakeGroupRepo{
		create: func(_ context.Context, g *domain.Group) (*domain.Group, error) {
			return g, nil
		},
	}
	uc := usecase.NewGroupUsecase(repo, newFakeCache(), testLogger())

	group, err := uc.Create(context.Background(), "Ward C", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if group.ID == uuid.Nil {
		t.Error("created group has nil ID")
	}
}

// ---- List ----

func TestListGroups_ClampsPageSize(t *testing.T) {
	var gotPage, gotSize int
	repo := &fakeGroupRepo{
		list: func(_ context.Context, page, pageSize int) ([]*domain.Group, int64, error) {
			gotPage, gotSize = page, pageSize
			return nil, 0, nil
		},
	}
	uc := usecase.NewGroupUsecase(repo, newFakeCache(), testLogger())

	if _, _, err := uc.List(context.Background(), -3, 9999); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPage != 1 || gotSize != 500 {
		t.Errorf("repo saw page=%d size=%d, want 1 and 500", gotPage, gotSize)
	}
}

// cache key sanity: two groups never share an entry
func TestResolvedMembersKey_DistinctPerGroup(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	if cache.ResolvedMembersKey(a) == cache.ResolvedMembersKey(b) {
		t.Error("cache keys collide")
	}
}
