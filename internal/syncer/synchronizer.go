package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/AnshRaj112/catchlog-backend/internal/localstore"
	"github.com/AnshRaj112/catchlog-backend/internal/models"
	"github.com/AnshRaj112/catchlog-backend/internal/remote"
	"github.com/AnshRaj112/catchlog-backend/pkg/utils"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrNoRemote = errors.New("remote store is not configured")
)

type Option func(*Synchronizer)

func WithCatalog(c *models.FishCatalog) Option {
	return func(s *Synchronizer) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithResolver replaces the last-write-wins conflict policy used by Pull.
func WithResolver(r Resolver) Option {
	return func(s *Synchronizer) {
		if r != nil {
			s.resolver = r
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Synchronizer) {
		if now != nil {
			s.now = now
		}
	}
}

// AppliedFunc observes outbox entries once they reached the remote store.
type AppliedFunc func(ctx context.Context, s *Synchronizer, e *OutboxEntry)

// WithOnApplied registers fn to run after every successfully drained entry.
func WithOnApplied(fn AppliedFunc) Option {
	return func(s *Synchronizer) {
		s.onApplied = fn
	}
}

// Synchronizer owns the local collections of one user. Every write lands in
// the local store first; the WithSync variants additionally queue the write
// for the remote store when sync is enabled.
type Synchronizer struct {
	userID   string
	store    localstore.Store
	remote   Remote
	catalog  *models.FishCatalog
	resolver Resolver
	now      func() time.Time

	mu        *sync.Mutex
	onEnqueue func(userID string)
	onApplied AppliedFunc

	spots     *Collection[*models.Spot]
	catches   *Collection[*models.Catch]
	favorites *Collection[*models.Favorite]
	fishTypes *Collection[*models.CustomFishType]
	profiles  *Collection[*models.UserProfile]
	outbox    *Outbox
}

// New returns a synchronizer over store for userID. remote may be nil, in
// which case writes are still queued but never drained.
func New(store localstore.Store, userID string, rem Remote, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		userID:   userID,
		store:    store,
		remote:   rem,
		catalog:  models.DefaultFishCatalog(),
		resolver: LastWriteWins{},
		now:      time.Now,
		mu:       &sync.Mutex{},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.spots = collectionWithClock[*models.Spot](store, localstore.KeySpots, s.now)
	s.catches = collectionWithClock[*models.Catch](store, localstore.KeyCatches, s.now)
	s.favorites = collectionWithClock[*models.Favorite](store, localstore.KeyFavorites, s.now)
	s.fishTypes = collectionWithClock[*models.CustomFishType](store, localstore.KeyCustomFishTypes, s.now)
	s.profiles = collectionWithClock[*models.UserProfile](store, localstore.KeyUsers, s.now)
	s.outbox = newOutbox(store, s.lock, s.now)
	return s
}

func collectionWithClock[T models.Record](store localstore.Store, key string, now func() time.Time) *Collection[T] {
	c := NewCollection[T](store, key)
	c.now = now
	return c
}

func (s *Synchronizer) UserID() string { return s.userID }

func (s *Synchronizer) Catalog() *models.FishCatalog { return s.catalog }

func (s *Synchronizer) lock() func() {
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Synchronizer) owns(createdBy string) bool {
	return createdBy == "" || createdBy == s.userID
}

// --- spots ---

func (s *Synchronizer) Spots(ctx context.Context) []*models.Spot {
	return s.spots.GetAll(ctx)
}

func (s *Synchronizer) Spot(ctx context.Context, id string) (*models.Spot, bool) {
	return s.spots.Find(ctx, id)
}

// AddSpot validates spot against the fish catalog and the user's custom
// fish types before storing it.
func (s *Synchronizer) AddSpot(ctx context.Context, spot *models.Spot) (*models.Spot, error) {
	if err := models.ValidateSpot(spot, s.catalog, s.customFishIDs(ctx)); err != nil {
		return nil, err
	}
	if spot.CreatedBy == "" {
		spot.CreatedBy = s.userID
	}
	spot.UpdatedAt = time.Time{}

	unlock := s.lock()
	defer unlock()
	saved, err := s.spots.Add(ctx, spot)
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// UpdateSpot replaces the stored spot with the same id. It reports false
// when there is no such spot.
func (s *Synchronizer) UpdateSpot(ctx context.Context, spot *models.Spot) (*models.Spot, bool, error) {
	if spot == nil || spot.ID == "" {
		return nil, false, nil
	}

	unlock := s.lock()
	defer unlock()
	existing, ok := s.spots.Find(ctx, spot.ID)
	if !ok {
		return nil, false, nil
	}
	s.stampSpot(spot, existing)
	return s.spots.Update(ctx, spot)
}

// stampSpot carries the immutable fields over from the stored spot; an
// update can never change who created a record or when.
func (s *Synchronizer) stampSpot(spot, existing *models.Spot) {
	spot.CreatedAt = existing.CreatedAt
	spot.CreatedBy = s.creator(existing.CreatedBy)
	spot.UpdatedAt = s.now().UTC()
}

func (s *Synchronizer) creator(stored string) string {
	if stored == "" {
		return s.userID
	}
	return stored
}

// DeleteSpot removes the spot and every favorite that points at it.
func (s *Synchronizer) DeleteSpot(ctx context.Context, id string) (bool, error) {
	removed, _, err := s.deleteSpot(ctx, id)
	return removed, err
}

func (s *Synchronizer) deleteSpot(ctx context.Context, id string) (bool, []*models.Favorite, error) {
	unlock := s.lock()
	defer unlock()

	removed, err := s.spots.Delete(ctx, id)
	if err != nil || !removed {
		return removed, nil, err
	}

	var dropped []*models.Favorite
	_, err = s.favorites.DeleteWhere(ctx, func(f *models.Favorite) bool {
		if f.SpotID == id {
			dropped = append(dropped, f)
			return true
		}
		return false
	})
	return true, dropped, err
}

// --- catches ---

func (s *Synchronizer) Catches(ctx context.Context) []*models.Catch {
	return s.catches.GetAll(ctx)
}

func (s *Synchronizer) Catch(ctx context.Context, id string) (*models.Catch, bool) {
	return s.catches.Find(ctx, id)
}

func (s *Synchronizer) CatchesForSpot(ctx context.Context, spotID string) []*models.Catch {
	out := []*models.Catch{}
	for _, c := range s.catches.GetAll(ctx) {
		if c.SpotID == spotID {
			out = append(out, c)
		}
	}
	return out
}

// AddCatch rejects catches without fish, or with malformed fish entries,
// before anything is written.
func (s *Synchronizer) AddCatch(ctx context.Context, c *models.Catch) (*models.Catch, error) {
	if err := models.ValidateCatch(c); err != nil {
		return nil, err
	}
	if c.CreatedBy == "" {
		c.CreatedBy = s.userID
	}
	if c.CatchDate.IsZero() {
		c.CatchDate = s.now().UTC()
	}
	c.UpdatedAt = time.Time{}

	unlock := s.lock()
	defer unlock()
	saved, err := s.catches.Add(ctx, c)
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *Synchronizer) UpdateCatch(ctx context.Context, c *models.Catch) (*models.Catch, bool, error) {
	if c == nil || c.ID == "" {
		return nil, false, nil
	}
	if err := models.ValidateCatch(c); err != nil {
		return nil, false, err
	}

	unlock := s.lock()
	defer unlock()
	existing, ok := s.catches.Find(ctx, c.ID)
	if !ok {
		return nil, false, nil
	}
	s.stampCatch(c, existing)
	return s.catches.Update(ctx, c)
}

func (s *Synchronizer) stampCatch(c, existing *models.Catch) {
	c.CreatedAt = existing.CreatedAt
	c.CreatedBy = s.creator(existing.CreatedBy)
	if c.CatchDate.IsZero() {
		c.CatchDate = existing.CatchDate
	}
	c.UpdatedAt = s.now().UTC()
}

func (s *Synchronizer) DeleteCatch(ctx context.Context, id string) (bool, error) {
	unlock := s.lock()
	defer unlock()
	return s.catches.Delete(ctx, id)
}

// --- favorites ---

func (s *Synchronizer) Favorites(ctx context.Context) []*models.Favorite {
	return s.favorites.GetAll(ctx)
}

// AddFavorite marks spotID as a favorite of the user. Adding the same spot
// twice returns the existing favorite.
func (s *Synchronizer) AddFavorite(ctx context.Context, spotID string) (*models.Favorite, error) {
	spotID = strings.TrimSpace(spotID)
	if spotID == "" {
		return nil, &utils.ValidationError{Field: "spot_id", Message: "Spot is required"}
	}

	unlock := s.lock()
	defer unlock()
	id := models.FavoriteID(s.userID, spotID)
	if f, ok := s.favorites.Find(ctx, id); ok {
		return f, nil
	}
	saved, err := s.favorites.Add(ctx, &models.Favorite{ID: id, UserID: s.userID, SpotID: spotID})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *Synchronizer) RemoveFavorite(ctx context.Context, spotID string) (bool, error) {
	unlock := s.lock()
	defer unlock()
	return s.favorites.Delete(ctx, models.FavoriteID(s.userID, spotID))
}

func (s *Synchronizer) favoriteSpotIDs(ctx context.Context) []string {
	ids := []string{}
	for _, f := range s.favorites.GetAll(ctx) {
		if f.UserID == s.userID {
			ids = append(ids, f.SpotID)
		}
	}
	return ids
}

// --- custom fish types ---

func (s *Synchronizer) CustomFishTypes(ctx context.Context) []*models.CustomFishType {
	return s.fishTypes.GetAll(ctx)
}

// AddCustomFishType stores a user-defined fish. A fish with the same name
// and water type is returned instead of being added twice.
func (s *Synchronizer) AddCustomFishType(ctx context.Context, f *models.CustomFishType) (*models.CustomFishType, error) {
	if f == nil || strings.TrimSpace(f.Name) == "" {
		return nil, &utils.ValidationError{Field: "name", Message: "Fish name is required"}
	}
	if f.WaterType != "" && !f.WaterType.Valid() {
		return nil, &utils.ValidationError{Field: "water_type", Message: "Water type must be fresh, salt or brackish"}
	}
	f.Name = strings.TrimSpace(f.Name)
	if f.CreatedBy == "" {
		f.CreatedBy = s.userID
	}

	unlock := s.lock()
	defer unlock()
	for _, existing := range s.fishTypes.GetAll(ctx) {
		if strings.EqualFold(existing.Name, f.Name) && existing.WaterType == f.WaterType {
			return existing, nil
		}
	}
	saved, err := s.fishTypes.Add(ctx, f)
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *Synchronizer) customFishIDs(ctx context.Context) map[string]bool {
	ids := make(map[string]bool)
	for _, f := range s.fishTypes.GetAll(ctx) {
		ids[f.ID] = true
	}
	return ids
}

// --- profile ---

// Profile returns the user's profile with FavoriteSpots filled in from the
// favorites collection.
func (s *Synchronizer) Profile(ctx context.Context) (*models.UserProfile, bool) {
	p, ok := s.profiles.Find(ctx, s.userID)
	if !ok {
		return nil, false
	}
	p.FavoriteSpots = s.favoriteSpotIDs(ctx)
	return p, true
}

func (s *Synchronizer) SaveProfile(ctx context.Context, p *models.UserProfile) (*models.UserProfile, error) {
	if p == nil {
		return nil, &utils.ValidationError{Field: "profile", Message: "Profile is required"}
	}
	for _, w := range p.FishingPreferences.PreferredWaterTypes {
		if !w.Valid() {
			return nil, &utils.ValidationError{Field: "preferred_water_types", Message: "Water type must be fresh, salt or brackish"}
		}
	}
	p.ID = s.userID
	p.FavoriteSpots = nil

	unlock := s.lock()
	defer unlock()
	if existing, ok := s.profiles.Find(ctx, s.userID); ok && p.CreatedAt.IsZero() {
		p.CreatedAt = existing.CreatedAt
	}
	p.UpdatedAt = s.now().UTC()
	saved, err := s.profiles.Upsert(ctx, p)
	if err != nil {
		return nil, err
	}
	saved.FavoriteSpots = s.favoriteSpotIDs(ctx)
	return saved, nil
}

// --- flags ---

func (s *Synchronizer) SyncEnabled(ctx context.Context) bool {
	v, ok, err := s.store.Get(ctx, localstore.KeySyncEnabled)
	if err != nil {
		log.Printf("syncer: reading sync flag for %s failed: %v", s.userID, err)
		return false
	}
	return ok && v == "true"
}

func (s *Synchronizer) SetSyncEnabled(ctx context.Context, enabled bool) error {
	return s.store.Set(ctx, localstore.KeySyncEnabled, strconv.FormatBool(enabled))
}

func (s *Synchronizer) CurrentUser(ctx context.Context) (*models.User, bool) {
	raw, ok, err := s.store.Get(ctx, localstore.KeyCurrentUser)
	if err != nil {
		log.Printf("syncer: reading current user failed: %v", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		log.Printf("syncer: decoding current user failed: %v", err)
		return nil, false
	}
	return &u, true
}

// SetCurrentUser stores u as the signed-in user; nil clears it.
func (s *Synchronizer) SetCurrentUser(ctx context.Context, u *models.User) error {
	if u == nil {
		return s.store.Delete(ctx, localstore.KeyCurrentUser)
	}
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, localstore.KeyCurrentUser, string(data))
}

// --- local-first writes mirrored to the remote store ---

func (s *Synchronizer) AddSpotWithSync(ctx context.Context, spot *models.Spot) (*models.Spot, error) {
	saved, err := s.AddSpot(ctx, spot)
	if err != nil {
		return nil, err
	}
	s.enqueue(ctx, KindSpot, OpUpsert, saved.ID, saved)
	return saved, nil
}

func (s *Synchronizer) UpdateSpotWithSync(ctx context.Context, spot *models.Spot) (*models.Spot, bool, error) {
	saved, ok, err := s.UpdateSpot(ctx, spot)
	if err != nil || !ok {
		return saved, ok, err
	}
	s.enqueue(ctx, KindSpot, OpUpsert, saved.ID, saved)
	return saved, true, nil
}

func (s *Synchronizer) DeleteSpotWithSync(ctx context.Context, id string) (bool, error) {
	removed, dropped, err := s.deleteSpot(ctx, id)
	if err != nil || !removed {
		return removed, err
	}
	s.enqueue(ctx, KindSpot, OpDelete, id, nil)
	for _, f := range dropped {
		if f.UserID == s.userID {
			s.enqueue(ctx, KindFavorite, OpDelete, f.ID, f)
		}
	}
	return true, nil
}

func (s *Synchronizer) AddCatchWithSync(ctx context.Context, c *models.Catch) (*models.Catch, error) {
	saved, err := s.AddCatch(ctx, c)
	if err != nil {
		return nil, err
	}
	s.enqueue(ctx, KindCatch, OpUpsert, saved.ID, saved)
	return saved, nil
}

func (s *Synchronizer) UpdateCatchWithSync(ctx context.Context, c *models.Catch) (*models.Catch, bool, error) {
	saved, ok, err := s.UpdateCatch(ctx, c)
	if err != nil || !ok {
		return saved, ok, err
	}
	s.enqueue(ctx, KindCatch, OpUpsert, saved.ID, saved)
	return saved, true, nil
}

func (s *Synchronizer) DeleteCatchWithSync(ctx context.Context, id string) (bool, error) {
	removed, err := s.DeleteCatch(ctx, id)
	if err != nil || !removed {
		return removed, err
	}
	s.enqueue(ctx, KindCatch, OpDelete, id, nil)
	return true, nil
}

func (s *Synchronizer) AddFavoriteWithSync(ctx context.Context, spotID string) (*models.Favorite, error) {
	f, err := s.AddFavorite(ctx, spotID)
	if err != nil {
		return nil, err
	}
	s.enqueue(ctx, KindFavorite, OpUpsert, f.ID, f)
	return f, nil
}

func (s *Synchronizer) RemoveFavoriteWithSync(ctx context.Context, spotID string) (bool, error) {
	removed, err := s.RemoveFavorite(ctx, spotID)
	if err != nil || !removed {
		return removed, err
	}
	f := &models.Favorite{ID: models.FavoriteID(s.userID, spotID), UserID: s.userID, SpotID: spotID}
	s.enqueue(ctx, KindFavorite, OpDelete, f.ID, f)
	return true, nil
}

func (s *Synchronizer) AddCustomFishTypeWithSync(ctx context.Context, f *models.CustomFishType) (*models.CustomFishType, error) {
	saved, err := s.AddCustomFishType(ctx, f)
	if err != nil {
		return nil, err
	}
	s.enqueue(ctx, KindCustomFishType, OpUpsert, saved.ID, saved)
	return saved, nil
}

func (s *Synchronizer) SaveProfileWithSync(ctx context.Context, p *models.UserProfile) (*models.UserProfile, error) {
	saved, err := s.SaveProfile(ctx, p)
	if err != nil {
		return nil, err
	}
	s.enqueue(ctx, KindProfile, OpUpsert, saved.ID, saved)
	return saved, nil
}

// enqueue queues a remote write when sync is enabled. Failures are logged
// and never reach the caller; the local write already succeeded.
func (s *Synchronizer) enqueue(ctx context.Context, kind Kind, op Op, recordID string, payload interface{}) {
	if !s.SyncEnabled(ctx) {
		return
	}
	if err := s.outbox.Enqueue(ctx, kind, op, recordID, payload); err != nil {
		log.Printf("syncer: queueing %s %s %s for %s failed: %v", op, kind, recordID, s.userID, err)
		return
	}
	if s.onEnqueue != nil {
		s.onEnqueue(s.userID)
	}
}

// --- outbox ---

func (s *Synchronizer) Outbox() *Outbox { return s.outbox }

// Drain pushes queued writes to the remote store.
func (s *Synchronizer) Drain(ctx context.Context) DrainResult {
	if s.remote == nil {
		return DrainResult{Pending: s.outbox.Len(ctx)}
	}
	return s.outbox.Drain(ctx, func(ctx context.Context, e *OutboxEntry) error {
		if err := s.apply(ctx, e); err != nil {
			return err
		}
		if s.onApplied != nil {
			s.onApplied(ctx, s, e)
		}
		return nil
	})
}

func (s *Synchronizer) apply(ctx context.Context, e *OutboxEntry) error {
	switch e.Kind {
	case KindSpot:
		if e.Op == OpDelete {
			return s.remote.DeleteSpot(ctx, s.userID, e.RecordID)
		}
		var spot models.Spot
		if err := decodePayload(e, &spot); err != nil {
			return err
		}
		return s.remote.UpsertSpot(ctx, s.userID, &spot)

	case KindCatch:
		if e.Op == OpDelete {
			return s.remote.DeleteCatch(ctx, s.userID, e.RecordID)
		}
		var c models.Catch
		if err := decodePayload(e, &c); err != nil {
			return err
		}
		return s.remote.UpsertCatch(ctx, s.userID, &c)

	case KindFavorite:
		var f models.Favorite
		if err := decodePayload(e, &f); err != nil {
			return err
		}
		if e.Op == OpDelete {
			return s.remote.DeleteFavorite(ctx, f.UserID, f.SpotID)
		}
		return s.remote.UpsertFavorite(ctx, &f)

	case KindCustomFishType:
		if e.Op == OpDelete {
			return fmt.Errorf("%w: custom fish types cannot be deleted", ErrPermanent)
		}
		var f models.CustomFishType
		if err := decodePayload(e, &f); err != nil {
			return err
		}
		return s.remote.UpsertCustomFishType(ctx, s.userID, &f)

	case KindProfile:
		if e.Op == OpDelete {
			return fmt.Errorf("%w: profiles cannot be deleted", ErrPermanent)
		}
		var p models.UserProfile
		if err := decodePayload(e, &p); err != nil {
			return err
		}
		p.ID = s.userID
		return s.remote.UpsertProfile(ctx, &p)
	}
	return fmt.Errorf("%w: unknown entry kind %q", ErrPermanent, e.Kind)
}

func decodePayload(e *OutboxEntry, v interface{}) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("%w: %s %s has no payload", ErrPermanent, e.Kind, e.RecordID)
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("%w: decode %s payload: %v", ErrPermanent, e.Kind, err)
	}
	return nil
}

// --- full push and pull ---

// PushAll upserts every record the user owns. Unlike the outbox it reports
// failures to the caller; the returned error joins all of them.
func (s *Synchronizer) PushAll(ctx context.Context) error {
	if s.remote == nil {
		return ErrNoRemote
	}

	var errs []error
	for _, spot := range s.Spots(ctx) {
		if !s.owns(spot.CreatedBy) {
			continue
		}
		if err := s.remote.UpsertSpot(ctx, s.userID, spot); err != nil {
			errs = append(errs, fmt.Errorf("spot %s: %w", spot.ID, err))
		}
	}
	for _, c := range s.Catches(ctx) {
		if !s.owns(c.CreatedBy) {
			continue
		}
		if err := s.remote.UpsertCatch(ctx, s.userID, c); err != nil {
			errs = append(errs, fmt.Errorf("catch %s: %w", c.ID, err))
		}
	}
	for _, f := range s.Favorites(ctx) {
		if f.UserID != s.userID {
			continue
		}
		if err := s.remote.UpsertFavorite(ctx, f); err != nil {
			errs = append(errs, fmt.Errorf("favorite %s: %w", f.ID, err))
		}
	}
	for _, f := range s.CustomFishTypes(ctx) {
		if !s.owns(f.CreatedBy) {
			continue
		}
		if err := s.remote.UpsertCustomFishType(ctx, s.userID, f); err != nil {
			errs = append(errs, fmt.Errorf("custom fish type %s: %w", f.ID, err))
		}
	}
	if p, ok := s.Profile(ctx); ok {
		if err := s.remote.UpsertProfile(ctx, p); err != nil {
			errs = append(errs, fmt.Errorf("profile: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Pull fetches the user's remote collections and merges them into the
// local ones with the configured resolver. Records with a queued delete
// are not brought back.
func (s *Synchronizer) Pull(ctx context.Context) error {
	if s.remote == nil {
		return ErrNoRemote
	}

	spots, err := s.remote.ListSpots(ctx)
	if err != nil {
		return fmt.Errorf("pull spots: %w", err)
	}
	catches, err := s.remote.ListCatches(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("pull catches: %w", err)
	}
	favorites, err := s.remote.ListFavorites(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("pull favorites: %w", err)
	}
	fishTypes, err := s.remote.ListCustomFishTypes(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("pull custom fish types: %w", err)
	}
	profile, err := s.remote.GetProfile(ctx, s.userID)
	if err != nil {
		return fmt.Errorf("pull profile: %w", err)
	}

	unlock := s.lock()
	defer unlock()

	if err := pullInto(ctx, s.spots, spots, s.outbox.pendingDeletes(ctx, KindSpot), s.resolver); err != nil {
		return err
	}
	if err := pullInto(ctx, s.catches, catches, s.outbox.pendingDeletes(ctx, KindCatch), s.resolver); err != nil {
		return err
	}
	if err := pullInto(ctx, s.favorites, favorites, s.outbox.pendingDeletes(ctx, KindFavorite), s.resolver); err != nil {
		return err
	}
	if err := pullInto(ctx, s.fishTypes, fishTypes, nil, s.resolver); err != nil {
		return err
	}
	if profile != nil {
		profile.FavoriteSpots = nil
		if err := pullInto(ctx, s.profiles, []*models.UserProfile{profile}, nil, s.resolver); err != nil {
			return err
		}
	}
	return nil
}

func pullInto[T models.Record](ctx context.Context, c *Collection[T], incoming []T, deleted map[string]bool, r Resolver) error {
	kept := make([]T, 0, len(incoming))
	for _, item := range incoming {
		if !deleted[item.GetID()] {
			kept = append(kept, item)
		}
	}
	return c.ReplaceAll(ctx, MergeByID(c.GetAll(ctx), kept, r))
}

// --- direct remote operations ---
//
// These write to the remote store first and only touch the local store
// once the remote write succeeded. Errors, remote.ErrNotOwner included,
// are returned to the caller.

func (s *Synchronizer) UpdateSpotRemote(ctx context.Context, spot *models.Spot) (*models.Spot, error) {
	if s.remote == nil {
		return nil, ErrNoRemote
	}
	if spot == nil {
		return nil, ErrNotFound
	}
	existing, ok := s.spots.Find(ctx, spot.ID)
	if !ok {
		return nil, ErrNotFound
	}
	if !s.owns(existing.CreatedBy) {
		return nil, remote.ErrNotOwner
	}
	s.stampSpot(spot, existing)
	if err := s.remote.UpsertSpot(ctx, s.userID, spot); err != nil {
		return nil, err
	}

	unlock := s.lock()
	defer unlock()
	saved, _, err := s.spots.Update(ctx, spot)
	return saved, err
}

func (s *Synchronizer) DeleteSpotRemote(ctx context.Context, id string) error {
	if s.remote == nil {
		return ErrNoRemote
	}
	if existing, ok := s.spots.Find(ctx, id); ok && !s.owns(existing.CreatedBy) {
		return remote.ErrNotOwner
	}
	if err := s.remote.DeleteSpot(ctx, s.userID, id); err != nil {
		return err
	}
	_, _, err := s.deleteSpot(ctx, id)
	return err
}

func (s *Synchronizer) UpdateCatchRemote(ctx context.Context, c *models.Catch) (*models.Catch, error) {
	if s.remote == nil {
		return nil, ErrNoRemote
	}
	if err := models.ValidateCatch(c); err != nil {
		return nil, err
	}
	existing, ok := s.catches.Find(ctx, c.ID)
	if !ok {
		return nil, ErrNotFound
	}
	if !s.owns(existing.CreatedBy) {
		return nil, remote.ErrNotOwner
	}
	s.stampCatch(c, existing)
	if err := s.remote.UpsertCatch(ctx, s.userID, c); err != nil {
		return nil, err
	}

	unlock := s.lock()
	defer unlock()
	saved, _, err := s.catches.Update(ctx, c)
	return saved, err
}

func (s *Synchronizer) DeleteCatchRemote(ctx context.Context, id string) error {
	if s.remote == nil {
		return ErrNoRemote
	}
	if existing, ok := s.catches.Find(ctx, id); ok && !s.owns(existing.CreatedBy) {
		return remote.ErrNotOwner
	}
	if err := s.remote.DeleteCatch(ctx, s.userID, id); err != nil {
		return err
	}
	_, err := s.DeleteCatch(ctx, id)
	return err
}
