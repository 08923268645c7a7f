package syncer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/AnshRaj112/catchlog-backend/internal/models"
	"github.com/AnshRaj112/catchlog-backend/internal/remote"
)

var errRemoteDown = errors.New("remote unavailable")

// fakeRemote is an in-memory Remote that enforces ownership like the
// PostgreSQL store does.
type fakeRemote struct {
	mu sync.Mutex

	spots     map[string]*models.Spot
	catches   map[string]*models.Catch
	favorites map[string]*models.Favorite
	fishTypes map[string]*models.CustomFishType
	profiles  map[string]*models.UserProfile

	// down makes every call fail; failNext fails only the next n writes.
	down     bool
	failNext int
	// reject, when set, is returned by every write.
	reject error
	writes []string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		spots:     make(map[string]*models.Spot),
		catches:   make(map[string]*models.Catch),
		favorites: make(map[string]*models.Favorite),
		fishTypes: make(map[string]*models.CustomFishType),
		profiles:  make(map[string]*models.UserProfile),
	}
}

// write records a call; the caller holds f.mu.
func (f *fakeRemote) write(call string) error {
	f.writes = append(f.writes, call)
	if f.reject != nil {
		return f.reject
	}
	if f.down {
		return errRemoteDown
	}
	if f.failNext > 0 {
		f.failNext--
		return errRemoteDown
	}
	return nil
}

func (f *fakeRemote) setDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

func (f *fakeRemote) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func (f *fakeRemote) spot(id string) (*models.Spot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.spots[id]
	return s, ok
}

func (f *fakeRemote) UpsertSpot(ctx context.Context, actor string, s *models.Spot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.write("upsert spot " + s.ID); err != nil {
		return err
	}
	if existing, ok := f.spots[s.ID]; ok && existing.CreatedBy != actor {
		return remote.ErrNotOwner
	}
	cp := *s
	cp.CreatedBy = actor
	f.spots[s.ID] = &cp
	return nil
}

func (f *fakeRemote) DeleteSpot(ctx context.Context, actor, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.write("delete spot " + id); err != nil {
		return err
	}
	existing, ok := f.spots[id]
	if !ok {
		return nil
	}
	if existing.CreatedBy != actor {
		return remote.ErrNotOwner
	}
	delete(f.spots, id)
	for k, fav := range f.favorites {
		if fav.SpotID == id {
			delete(f.favorites, k)
		}
	}
	return nil
}

func (f *fakeRemote) ListSpots(ctx context.Context) ([]*models.Spot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errRemoteDown
	}
	out := []*models.Spot{}
	for _, s := range f.spots {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeRemote) UpsertCatch(ctx context.Context, actor string, c *models.Catch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.write("upsert catch " + c.ID); err != nil {
		return err
	}
	if existing, ok := f.catches[c.ID]; ok && existing.CreatedBy != actor {
		return remote.ErrNotOwner
	}
	cp := *c
	cp.CreatedBy = actor
	f.catches[c.ID] = &cp
	return nil
}

func (f *fakeRemote) DeleteCatch(ctx context.Context, actor, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.write("delete catch " + id); err != nil {
		return err
	}
	existing, ok := f.catches[id]
	if !ok {
		return nil
	}
	if existing.CreatedBy != actor {
		return remote.ErrNotOwner
	}
	delete(f.catches, id)
	return nil
}

func (f *fakeRemote) ListCatches(ctx context.Context, userID string) ([]*models.Catch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errRemoteDown
	}
	out := []*models.Catch{}
	for _, c := range f.catches {
		if c.CreatedBy == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRemote) UpsertFavorite(ctx context.Context, fav *models.Favorite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.write("upsert favorite " + fav.ID); err != nil {
		return err
	}
	cp := *fav
	f.favorites[models.FavoriteID(fav.UserID, fav.SpotID)] = &cp
	return nil
}

func (f *fakeRemote) DeleteFavorite(ctx context.Context, userID, spotID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.write("delete favorite " + models.FavoriteID(userID, spotID)); err != nil {
		return err
	}
	delete(f.favorites, models.FavoriteID(userID, spotID))
	return nil
}

func (f *fakeRemote) ListFavorites(ctx context.Context, userID string) ([]*models.Favorite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errRemoteDown
	}
	out := []*models.Favorite{}
	for _, fav := range f.favorites {
		if fav.UserID == userID {
			cp := *fav
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRemote) UpsertCustomFishType(ctx context.Context, actor string, ft *models.CustomFishType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.write("upsert custom fish type " + ft.ID); err != nil {
		return err
	}
	cp := *ft
	cp.CreatedBy = actor
	f.fishTypes[ft.ID] = &cp
	return nil
}

func (f *fakeRemote) ListCustomFishTypes(ctx context.Context, userID string) ([]*models.CustomFishType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errRemoteDown
	}
	out := []*models.CustomFishType{}
	for _, ft := range f.fishTypes {
		if ft.CreatedBy == userID {
			cp := *ft
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRemote) UpsertProfile(ctx context.Context, p *models.UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.write("upsert profile " + p.ID); err != nil {
		return err
	}
	cp := *p
	f.profiles[p.ID] = &cp
	return nil
}

func (f *fakeRemote) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errRemoteDown
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
