package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/AnshRaj112/catchlog-backend/internal/localstore"
	"github.com/AnshRaj112/catchlog-backend/internal/models"
	"github.com/AnshRaj112/catchlog-backend/internal/remote"
	"github.com/AnshRaj112/catchlog-backend/pkg/utils"
	"github.com/lib/pq"
)

const testUser = "user-1"

func newTestSync(t *testing.T, rem Remote) (*Synchronizer, *fakeClock) {
	t.Helper()
	clock := newFakeClock(t0)
	return New(localstore.NewMemory(), testUser, rem, WithClock(clock.Now)), clock
}

func lakeSpot(name string) *models.Spot {
	return &models.Spot{
		Name:      name,
		Location:  &models.Location{Lat: 52.1, Lng: 21.0},
		WaterType: models.WaterFresh,
		FishTypes: []string{"pike", "perch"},
	}
}

func pikeCatch(spotID string) *models.Catch {
	w := 2.5
	return &models.Catch{
		SpotID: spotID,
		Fishes: []models.CaughtFish{{ID: "f1", FishType: "pike", Weight: &w}},
		Bait:   "spoon",
	}
}

func TestAddSpot_Validation(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSync(t, nil)

	cases := []struct {
		name  string
		spot  *models.Spot
		field string
	}{
		{"missing name", &models.Spot{Location: &models.Location{Lat: 1, Lng: 1}, WaterType: models.WaterFresh}, "name"},
		{"missing location", &models.Spot{Name: "x", WaterType: models.WaterFresh}, "location"},
		{"bad water type", &models.Spot{Name: "x", Location: &models.Location{Lat: 1, Lng: 1}, WaterType: "lava"}, "water_type"},
		{"salt fish in lake", &models.Spot{Name: "x", Location: &models.Location{Lat: 1, Lng: 1}, WaterType: models.WaterFresh, FishTypes: []string{"cod"}}, "fish_types"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.AddSpot(ctx, tc.spot)
			var verr *utils.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Field != tc.field {
				t.Errorf("expected field %s, got %s", tc.field, verr.Field)
			}
		})
	}
	if n := len(s.Spots(ctx)); n != 0 {
		t.Errorf("expected nothing stored, got %d spots", n)
	}
}

func TestAddSpot_AcceptsCustomFishType(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSync(t, nil)

	custom, err := s.AddCustomFishType(ctx, &models.CustomFishType{Name: "Golden orfe", WaterType: models.WaterFresh})
	if err != nil {
		t.Fatalf("add custom fish type: %v", err)
	}
	spot := lakeSpot("Pond")
	spot.FishTypes = []string{custom.ID}
	saved, err := s.AddSpot(ctx, spot)
	if err != nil {
		t.Fatalf("expected custom fish type to be accepted, got %v", err)
	}
	if saved.CreatedBy != testUser {
		t.Errorf("expected created_by %s, got %s", testUser, saved.CreatedBy)
	}

	again, _ := s.AddCustomFishType(ctx, &models.CustomFishType{Name: "golden ORFE ", WaterType: models.WaterFresh})
	if again.ID != custom.ID || len(s.CustomFishTypes(ctx)) != 1 {
		t.Error("expected duplicate custom fish type to return the existing one")
	}
}

func TestAddCatch_RejectsEmptyFishes(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSync(t, nil)

	c := pikeCatch("spot-1")
	c.Fishes = []models.CaughtFish{}
	if _, err := s.AddCatch(ctx, c); err == nil {
		t.Fatal("expected catch without fishes to be rejected")
	}

	custom := pikeCatch("spot-1")
	custom.Fishes[0].FishType = models.CustomFish
	if _, err := s.AddCatch(ctx, custom); err == nil {
		t.Fatal("expected custom fish without a name to be rejected")
	}

	if n := len(s.Catches(ctx)); n != 0 {
		t.Errorf("expected no catch persisted, got %d", n)
	}
}

func TestUpdateCatch_StampsAndRejectsEmptyFishes(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestSync(t, nil)

	saved, err := s.AddCatch(ctx, pikeCatch("spot-1"))
	if err != nil {
		t.Fatalf("add catch: %v", err)
	}
	if !saved.CatchDate.Equal(t0) {
		t.Errorf("expected catch date to default to now, got %v", saved.CatchDate)
	}

	clock.Advance(time.Hour)
	edit := pikeCatch("spot-1")
	edit.ID = saved.ID
	edit.Notes = "windy"
	updated, ok, err := s.UpdateCatch(ctx, edit)
	if !ok || err != nil {
		t.Fatalf("update failed: ok=%v err=%v", ok, err)
	}
	if !updated.UpdatedAt.Equal(t0.Add(time.Hour)) || !updated.CreatedAt.Equal(saved.CreatedAt) {
		t.Errorf("unexpected timestamps: created=%v updated=%v", updated.CreatedAt, updated.UpdatedAt)
	}

	edit.Fishes = nil
	if _, _, err := s.UpdateCatch(ctx, edit); err == nil {
		t.Error("expected update to empty fishes to be rejected")
	}
	got, _ := s.Catch(ctx, saved.ID)
	if len(got.Fishes) != 1 {
		t.Errorf("expected stored catch to keep its fish, got %d", len(got.Fishes))
	}

	if _, ok, err := s.UpdateCatch(ctx, &models.Catch{ID: "nope", SpotID: "x", Fishes: pikeCatch("x").Fishes}); ok || err != nil {
		t.Error("expected update of unknown catch to be a no-op")
	}
}

func TestUpdates_KeepStoredOwner(t *testing.T) {
	ctx := context.Background()
	rem := newFakeRemote()
	s, clock := newTestSync(t, rem)
	_ = s.SetSyncEnabled(ctx, true)

	spot, _ := s.AddSpot(ctx, lakeSpot("Lake"))
	c, _ := s.AddCatch(ctx, pikeCatch(spot.ID))
	clock.Advance(time.Hour)

	forged := *spot
	forged.CreatedBy = "user-2"
	forged.CreatedAt = t0.Add(-24 * time.Hour)
	updated, ok, err := s.UpdateSpotWithSync(ctx, &forged)
	if !ok || err != nil {
		t.Fatalf("update spot: ok=%v err=%v", ok, err)
	}
	if updated.CreatedBy != testUser || !updated.CreatedAt.Equal(spot.CreatedAt) {
		t.Errorf("spot owner rewritten: created_by=%q created_at=%v", updated.CreatedBy, updated.CreatedAt)
	}

	forgedCatch := *c
	forgedCatch.CreatedBy = "user-2"
	if _, err := s.UpdateCatchRemote(ctx, &forgedCatch); err != nil {
		t.Fatalf("update catch remote: %v", err)
	}
	if got, _ := s.Catch(ctx, c.ID); got.CreatedBy != testUser {
		t.Errorf("catch owner rewritten to %q", got.CreatedBy)
	}

	for _, e := range s.Outbox().Pending(ctx) {
		var queued models.Spot
		if e.Kind == KindSpot && json.Unmarshal(e.Payload, &queued) == nil && queued.CreatedBy != testUser {
			t.Errorf("queued spot carries created_by %q", queued.CreatedBy)
		}
	}
}

func TestDeleteSpot_CascadesFavorites(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSync(t, nil)

	keep, _ := s.AddSpot(ctx, lakeSpot("Keep"))
	drop, _ := s.AddSpot(ctx, lakeSpot("Drop"))
	if _, err := s.AddFavorite(ctx, keep.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddFavorite(ctx, drop.ID); err != nil {
		t.Fatal(err)
	}
	// A favorite of another user on the same spot must go as well.
	if _, err := s.favorites.Add(ctx, &models.Favorite{ID: models.FavoriteID("user-2", drop.ID), UserID: "user-2", SpotID: drop.ID}); err != nil {
		t.Fatal(err)
	}

	removed, err := s.DeleteSpot(ctx, drop.ID)
	if !removed || err != nil {
		t.Fatalf("expected spot removed, got removed=%v err=%v", removed, err)
	}

	for _, f := range s.Favorites(ctx) {
		if f.SpotID == drop.ID {
			t.Errorf("favorite %s still references deleted spot", f.ID)
		}
	}
	if n := len(s.Favorites(ctx)); n != 1 {
		t.Errorf("expected 1 remaining favorite, got %d", n)
	}
	if removed, _ := s.DeleteSpot(ctx, drop.ID); removed {
		t.Error("expected second delete to report false")
	}
}

func TestAddFavorite_Idempotent(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSync(t, nil)

	a, _ := s.AddFavorite(ctx, "spot-1")
	b, _ := s.AddFavorite(ctx, "spot-1")
	if a.ID != b.ID || len(s.Favorites(ctx)) != 1 {
		t.Errorf("expected a single favorite, got %d", len(s.Favorites(ctx)))
	}
	if removed, _ := s.RemoveFavorite(ctx, "spot-1"); !removed {
		t.Error("expected favorite removed")
	}
}

func TestProfile_DerivesFavoriteSpots(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSync(t, nil)

	if _, ok := s.Profile(ctx); ok {
		t.Fatal("expected no profile yet")
	}
	if _, err := s.SaveProfile(ctx, &models.UserProfile{Username: "angler", FavoriteSpots: []string{"bogus"}}); err != nil {
		t.Fatal(err)
	}
	_, _ = s.AddFavorite(ctx, "spot-1")
	_, _ = s.AddFavorite(ctx, "spot-2")

	p, ok := s.Profile(ctx)
	if !ok {
		t.Fatal("expected profile")
	}
	if p.ID != testUser {
		t.Errorf("expected profile id %s, got %s", testUser, p.ID)
	}
	if len(p.FavoriteSpots) != 2 || p.FavoriteSpots[0] != "spot-1" || p.FavoriteSpots[1] != "spot-2" {
		t.Errorf("expected favorite spots derived from favorites, got %v", p.FavoriteSpots)
	}
}

func TestCurrentUserAndSyncFlag(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSync(t, nil)

	if s.SyncEnabled(ctx) {
		t.Error("expected sync disabled by default")
	}
	_ = s.SetSyncEnabled(ctx, true)
	if !s.SyncEnabled(ctx) {
		t.Error("expected sync enabled")
	}

	if _, ok := s.CurrentUser(ctx); ok {
		t.Error("expected no current user")
	}
	_ = s.SetCurrentUser(ctx, &models.User{ID: testUser, Username: "angler"})
	u, ok := s.CurrentUser(ctx)
	if !ok || u.Username != "angler" {
		t.Errorf("unexpected current user %+v", u)
	}
	_ = s.SetCurrentUser(ctx, nil)
	if _, ok := s.CurrentUser(ctx); ok {
		t.Error("expected current user cleared")
	}
}

func TestWithSync_DisabledQueuesNothing(t *testing.T) {
	ctx := context.Background()
	rem := newFakeRemote()
	s, _ := newTestSync(t, rem)

	spot, err := s.AddSpotWithSync(ctx, lakeSpot("Lake"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddFavoriteWithSync(ctx, spot.ID); err != nil {
		t.Fatal(err)
	}
	if n := s.Outbox().Len(ctx); n != 0 {
		t.Errorf("expected empty outbox while sync is disabled, got %d", n)
	}
	s.Drain(ctx)
	if rem.writeCount() != 0 {
		t.Errorf("expected no remote writes, got %d", rem.writeCount())
	}
}

func TestWithSync_QueuesAndDrains(t *testing.T) {
	ctx := context.Background()
	rem := newFakeRemote()
	s, _ := newTestSync(t, rem)
	_ = s.SetSyncEnabled(ctx, true)

	spot, _ := s.AddSpotWithSync(ctx, lakeSpot("Lake"))
	catch, _ := s.AddCatchWithSync(ctx, pikeCatch(spot.ID))
	_, _ = s.AddFavoriteWithSync(ctx, spot.ID)
	_, _ = s.SaveProfileWithSync(ctx, &models.UserProfile{Username: "angler"})

	if n := s.Outbox().Len(ctx); n != 4 {
		t.Fatalf("expected 4 queued writes, got %d", n)
	}

	res := s.Drain(ctx)
	if res.Applied != 4 || res.Pending != 0 {
		t.Fatalf("unexpected drain result %+v", res)
	}
	got, ok := rem.spot(spot.ID)
	if !ok || got.CreatedBy != testUser {
		t.Errorf("expected spot pushed with owner, got %+v", got)
	}
	if _, ok := rem.catches[catch.ID]; !ok {
		t.Error("expected catch pushed")
	}
	if _, ok := rem.favorites[models.FavoriteID(testUser, spot.ID)]; !ok {
		t.Error("expected favorite pushed")
	}
	if _, ok := rem.profiles[testUser]; !ok {
		t.Error("expected profile pushed")
	}

	if _, err := s.DeleteSpotWithSync(ctx, spot.ID); err != nil {
		t.Fatal(err)
	}
	res = s.Drain(ctx)
	if res.Applied != 2 {
		t.Errorf("expected spot and favorite deletes applied, got %+v", res)
	}
	if _, ok := rem.spot(spot.ID); ok {
		t.Error("expected spot deleted remotely")
	}
}

func TestWithSync_RemoteFailureKeepsLocalWrite(t *testing.T) {
	ctx := context.Background()
	rem := newFakeRemote()
	rem.down = true
	s, clock := newTestSync(t, rem)
	_ = s.SetSyncEnabled(ctx, true)

	c, err := s.AddCatchWithSync(ctx, pikeCatch("spot-1"))
	if err != nil {
		t.Fatalf("expected local write to succeed, got %v", err)
	}
	if _, ok := s.Catch(ctx, c.ID); !ok {
		t.Fatal("expected catch stored locally")
	}

	res := s.Drain(ctx)
	if res.Retrying != 1 || res.Pending != 1 {
		t.Fatalf("unexpected drain result %+v", res)
	}
	entry := s.Outbox().Pending(ctx)[0]
	if entry.Attempts != 1 || !entry.NextAttempt.Equal(t0.Add(time.Second)) || entry.LastError == "" {
		t.Errorf("unexpected entry after failure: %+v", entry)
	}

	// Not due yet.
	res = s.Drain(ctx)
	if res.Retrying != 0 || res.Applied != 0 || rem.writeCount() != 1 {
		t.Errorf("expected entry to wait for its backoff, got %+v with %d writes", res, rem.writeCount())
	}

	clock.Advance(time.Second)
	rem.setDown(false)
	res = s.Drain(ctx)
	if res.Applied != 1 || res.Pending != 0 {
		t.Errorf("expected entry applied after backoff, got %+v", res)
	}
}

func TestDrain_KeepsPerRecordOrder(t *testing.T) {
	ctx := context.Background()
	rem := newFakeRemote()
	s, _ := newTestSync(t, rem)
	_ = s.SetSyncEnabled(ctx, true)

	spot, _ := s.AddSpotWithSync(ctx, lakeSpot("Lake"))
	other, _ := s.AddSpotWithSync(ctx, lakeSpot("Other"))
	_, _ = s.DeleteSpotWithSync(ctx, spot.ID)

	rem.failNext = 1
	res := s.Drain(ctx)

	// The failed upsert blocks the delete of the same spot, not the other spot.
	if res.Applied != 1 || res.Retrying != 1 || res.Pending != 2 {
		t.Fatalf("unexpected drain result %+v", res)
	}
	if _, ok := rem.spot(other.ID); !ok {
		t.Error("expected unrelated spot to be pushed")
	}
	if rem.writeCount() != 2 {
		t.Errorf("expected delete to wait behind the failed upsert, got %d writes", rem.writeCount())
	}
}

func TestDrain_DropsNotOwnedWrites(t *testing.T) {
	ctx := context.Background()
	rem := newFakeRemote()
	rem.spots["theirs"] = &models.Spot{ID: "theirs", Name: "Their lake", CreatedBy: "user-2", CreatedAt: t0}
	s, _ := newTestSync(t, rem)

	if err := s.Pull(ctx); err != nil {
		t.Fatalf("pull: %v", err)
	}
	_ = s.SetSyncEnabled(ctx, true)

	edit, _ := s.Spot(ctx, "theirs")
	edit.Name = "Renamed"
	if _, ok, err := s.UpdateSpotWithSync(ctx, edit); !ok || err != nil {
		t.Fatalf("expected local update, got ok=%v err=%v", ok, err)
	}

	res := s.Drain(ctx)
	if res.Dropped != 1 || res.Pending != 0 {
		t.Errorf("expected not-owned write dropped, got %+v", res)
	}
	if got, _ := rem.spot("theirs"); got.Name != "Their lake" {
		t.Errorf("expected remote spot untouched, got %q", got.Name)
	}
}

func TestDrain_DropsRejectedWrites(t *testing.T) {
	ctx := context.Background()
	rem := newFakeRemote()
	s, clock := newTestSync(t, rem)
	_ = s.SetSyncEnabled(ctx, true)

	spot, err := s.AddSpotWithSync(ctx, lakeSpot("Lake"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddFavoriteWithSync(ctx, spot.ID); err != nil {
		t.Fatal(err)
	}

	rem.reject = fmt.Errorf("upsert favorite: %w: %w", remote.ErrRejected, &pq.Error{Code: "23503"})
	res := s.Drain(ctx)
	if res.Dropped != 2 || res.Retrying != 0 || res.Pending != 0 {
		t.Fatalf("expected rejected writes dropped, got %+v", res)
	}

	writes := rem.writeCount()
	clock.Advance(time.Hour)
	s.Drain(ctx)
	if rem.writeCount() != writes {
		t.Errorf("rejected writes were retried: %d -> %d", writes, rem.writeCount())
	}
	if _, ok := s.Spot(ctx, spot.ID); !ok {
		t.Error("local spot should survive a rejected push")
	}
}

func TestDrain_NotifiesOnlyAppliedEntries(t *testing.T) {
	ctx := context.Background()
	rem := newFakeRemote()
	clock := newFakeClock(t0)
	var applied []Kind
	s := New(localstore.NewMemory(), testUser, rem, WithClock(clock.Now),
		WithOnApplied(func(ctx context.Context, got *Synchronizer, e *OutboxEntry) {
			if got.UserID() != testUser {
				t.Errorf("hook got synchronizer of %q", got.UserID())
			}
			applied = append(applied, e.Kind)
		}))
	_ = s.SetSyncEnabled(ctx, true)

	spot, _ := s.AddSpotWithSync(ctx, lakeSpot("Lake"))
	_, _ = s.AddCatchWithSync(ctx, pikeCatch(spot.ID))

	rem.setDown(true)
	s.Drain(ctx)
	if len(applied) != 0 {
		t.Fatalf("hook ran for failed writes: %v", applied)
	}

	rem.setDown(false)
	clock.Advance(time.Hour)
	s.Drain(ctx)
	if len(applied) != 2 || applied[0] != KindSpot || applied[1] != KindCatch {
		t.Errorf("applied = %v, want spot then catch", applied)
	}
}

func TestBackoff(t *testing.T) {
	cases := []struct {
		attempts int
		want     time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{9, 256 * time.Second},
		{10, 5 * time.Minute},
		{50, 5 * time.Minute},
	}
	for _, tc := range cases {
		if got := backoff(tc.attempts); got != tc.want {
			t.Errorf("backoff(%d) = %s, want %s", tc.attempts, got, tc.want)
		}
	}
}

func TestPull_MergesLastWriteWins(t *testing.T) {
	ctx := context.Background()
	rem := newFakeRemote()
	s, _ := newTestSync(t, rem)

	_, _ = s.spots.Add(ctx, &models.Spot{ID: "a", Name: "local newer", CreatedAt: t0, UpdatedAt: t0.Add(2 * time.Hour)})
	_, _ = s.spots.Add(ctx, &models.Spot{ID: "b", Name: "local older", CreatedAt: t0, UpdatedAt: t0.Add(time.Hour)})
	rem.spots["a"] = &models.Spot{ID: "a", Name: "remote older", CreatedAt: t0, UpdatedAt: t0.Add(time.Hour)}
	rem.spots["b"] = &models.Spot{ID: "b", Name: "remote newer", CreatedAt: t0, UpdatedAt: t0.Add(3 * time.Hour)}
	rem.spots["c"] = &models.Spot{ID: "c", Name: "remote only", CreatedAt: t0}
	rem.profiles[testUser] = &models.UserProfile{ID: testUser, Username: "angler", CreatedAt: t0}

	if err := s.Pull(ctx); err != nil {
		t.Fatalf("pull: %v", err)
	}

	want := map[string]string{"a": "local newer", "b": "remote newer", "c": "remote only"}
	spots := s.Spots(ctx)
	if len(spots) != len(want) {
		t.Fatalf("expected %d spots, got %d", len(want), len(spots))
	}
	for _, sp := range spots {
		if want[sp.ID] != sp.Name {
			t.Errorf("spot %s: expected %q, got %q", sp.ID, want[sp.ID], sp.Name)
		}
	}
	if p, ok := s.Profile(ctx); !ok || p.Username != "angler" {
		t.Error("expected remote profile pulled")
	}
}

func TestPull_DoesNotResurrectQueuedDeletes(t *testing.T) {
	ctx := context.Background()
	rem := newFakeRemote()
	s, _ := newTestSync(t, rem)
	_ = s.SetSyncEnabled(ctx, true)

	spot, _ := s.AddSpotWithSync(ctx, lakeSpot("Lake"))
	s.Drain(ctx)
	_, _ = s.DeleteSpotWithSync(ctx, spot.ID)

	if err := s.Pull(ctx); err != nil {
		t.Fatalf("pull: %v", err)
	}
	if _, ok := s.Spot(ctx, spot.ID); ok {
		t.Error("expected spot with a queued delete to stay deleted")
	}
}

func TestPullAndPush_ReportRemoteErrors(t *testing.T) {
	ctx := context.Background()
	rem := newFakeRemote()
	rem.down = true
	s, _ := newTestSync(t, rem)
	_, _ = s.AddSpot(ctx, lakeSpot("Lake"))

	if err := s.Pull(ctx); !errors.Is(err, errRemoteDown) {
		t.Errorf("expected pull error, got %v", err)
	}
	if err := s.PushAll(ctx); !errors.Is(err, errRemoteDown) {
		t.Errorf("expected push error, got %v", err)
	}
	if n := len(s.Spots(ctx)); n != 1 {
		t.Errorf("expected local data untouched, got %d spots", n)
	}

	noRemote, _ := newTestSync(t, nil)
	if err := noRemote.PushAll(ctx); !errors.Is(err, ErrNoRemote) {
		t.Errorf("expected ErrNoRemote, got %v", err)
	}
}

func TestPushAll_SkipsRecordsOfOtherUsers(t *testing.T) {
	ctx := context.Background()
	rem := newFakeRemote()
	s, _ := newTestSync(t, rem)

	mine, _ := s.AddSpot(ctx, lakeSpot("Mine"))
	_, _ = s.spots.Add(ctx, &models.Spot{ID: "theirs", Name: "Theirs", CreatedBy: "user-2"})

	if err := s.PushAll(ctx); err != nil {
		t.Fatalf("push: %v", err)
	}
	if _, ok := rem.spot(mine.ID); !ok {
		t.Error("expected own spot pushed")
	}
	if _, ok := rem.spot("theirs"); ok {
		t.Error("expected other user's spot skipped")
	}
}

func TestDirectRemoteOps_PropagateOwnership(t *testing.T) {
	ctx := context.Background()
	rem := newFakeRemote()
	rem.spots["theirs"] = &models.Spot{ID: "theirs", Name: "Their lake", CreatedBy: "user-2", CreatedAt: t0}
	rem.catches["c-theirs"] = &models.Catch{ID: "c-theirs", CreatedBy: "user-2"}
	s, _ := newTestSync(t, rem)
	_ = s.Pull(ctx)

	spot, _ := s.Spot(ctx, "theirs")
	if _, err := s.UpdateSpotRemote(ctx, spot); !errors.Is(err, remote.ErrNotOwner) {
		t.Errorf("expected ErrNotOwner updating another user's spot, got %v", err)
	}
	if err := s.DeleteSpotRemote(ctx, "theirs"); !errors.Is(err, remote.ErrNotOwner) {
		t.Errorf("expected ErrNotOwner deleting another user's spot, got %v", err)
	}
	if rem.writeCount() != 0 {
		t.Errorf("expected ownership to be checked before calling the remote store, got %d writes", rem.writeCount())
	}

	// Locally unknown owner: the remote store decides.
	_, _ = s.catches.Add(ctx, &models.Catch{ID: "c-theirs", SpotID: "theirs"})
	if err := s.DeleteCatchRemote(ctx, "c-theirs"); !errors.Is(err, remote.ErrNotOwner) {
		t.Errorf("expected ErrNotOwner from the remote store, got %v", err)
	}
	if _, ok := s.Catch(ctx, "c-theirs"); !ok {
		t.Error("expected local catch kept when the remote delete failed")
	}
}

func TestDirectRemoteOps_Success(t *testing.T) {
	ctx := context.Background()
	rem := newFakeRemote()
	s, clock := newTestSync(t, rem)

	spot, _ := s.AddSpot(ctx, lakeSpot("Lake"))
	clock.Advance(time.Minute)
	spot.Name = "Renamed"
	updated, err := s.UpdateSpotRemote(ctx, spot)
	if err != nil {
		t.Fatalf("update remote: %v", err)
	}
	if !updated.UpdatedAt.Equal(t0.Add(time.Minute)) {
		t.Errorf("expected updated_at stamped, got %v", updated.UpdatedAt)
	}
	if got, _ := rem.spot(spot.ID); got.Name != "Renamed" {
		t.Error("expected remote spot renamed")
	}

	if _, err := s.UpdateSpotRemote(ctx, &models.Spot{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	c, _ := s.AddCatch(ctx, pikeCatch(spot.ID))
	c.Notes = "evening bite"
	if _, err := s.UpdateCatchRemote(ctx, c); err != nil {
		t.Fatalf("update catch remote: %v", err)
	}
	if err := s.DeleteCatchRemote(ctx, c.ID); err != nil {
		t.Fatalf("delete catch remote: %v", err)
	}
	if _, ok := s.Catch(ctx, c.ID); ok {
		t.Error("expected catch removed locally")
	}

	if err := s.DeleteSpotRemote(ctx, spot.ID); err != nil {
		t.Fatalf("delete spot remote: %v", err)
	}
	if _, ok := rem.spot(spot.ID); ok {
		t.Error("expected spot removed remotely")
	}
}
