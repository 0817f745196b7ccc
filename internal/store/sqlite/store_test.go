package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"tidyspot/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestSpotCreateGetRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	sp, err := st.Spots().Create(ctx, &model.Spot{
		Name:         "Desk",
		CameraEntity: "camera.office",
		Definition:   "No loose papers, laptop closed",
		SpotType:     "work",
	})
	if err != nil {
		t.Fatalf("create spot: %v", err)
	}
	if sp.ID == 0 {
		t.Fatalf("expected assigned id")
	}

	got, err := st.Spots().Get(ctx, sp.ID)
	if err != nil {
		t.Fatalf("get spot: %v", err)
	}
	if got.Name != "Desk" || got.Status != model.StatusUnknown || got.Voice != "direct" {
		t.Fatalf("unexpected spot: %+v", got)
	}
}

func TestSpotCreateRequiresName(t *testing.T) {
	st := newTestStore(t)
	_, err := st.Spots().Create(context.Background(), &model.Spot{})
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCheckRoundTripPreservesItems(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	sp, err := st.Spots().Create(ctx, &model.Spot{Name: "Counter"})
	if err != nil {
		t.Fatalf("create spot: %v", err)
	}
	c, err := st.Checks().Create(ctx, &model.Check{
		SpotID: sp.ID,
		Status: model.StatusNeedsAttention,
		ToSort: []model.ToSortItem{{Item: "mug", Priority: "high"}},
		Notes:  "coffee again",
	})
	if err != nil {
		t.Fatalf("create check: %v", err)
	}

	got, err := st.Checks().Get(ctx, sp.ID, c.ID)
	if err != nil {
		t.Fatalf("get check: %v", err)
	}
	if len(got.ToSort) != 1 || got.ToSort[0].Item != "mug" || got.ToSort[0].Priority != "high" {
		t.Fatalf("items not preserved: %+v", got.ToSort)
	}
	if got.Notes != "coffee again" {
		t.Fatalf("notes not preserved: %q", got.Notes)
	}
}

func TestCheckCascadeOnSpotDelete(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	sp, _ := st.Spots().Create(ctx, &model.Spot{Name: "Shelf"})
	c, _ := st.Checks().Create(ctx, &model.Check{SpotID: sp.ID, Status: model.StatusSorted})

	if err := st.Spots().Delete(ctx, sp.ID); err != nil {
		t.Fatalf("delete spot: %v", err)
	}
	if _, err := st.Checks().Get(ctx, sp.ID, c.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected cascade delete, got %v", err)
	}
}

func TestChecksListSinceWindow(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	sp, _ := st.Spots().Create(ctx, &model.Spot{Name: "Entry"})
	old := time.Now().UTC().Add(-40 * 24 * time.Hour)
	recent := time.Now().UTC().Add(-time.Hour)
	_, _ = st.Checks().Create(ctx, &model.Check{SpotID: sp.ID, Status: model.StatusSorted, Timestamp: old})
	_, _ = st.Checks().Create(ctx, &model.Check{SpotID: sp.ID, Status: model.StatusSorted, Timestamp: recent})

	got, err := st.Checks().ListSince(ctx, sp.ID, time.Now().UTC().Add(-30*24*time.Hour))
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 check in window, got %d", len(got))
	}
}

func TestTokenVerifyAndRevoke(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	tok, err := st.Tokens().Create(ctx, &model.APIToken{Name: "cli"})
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	other, err := st.Tokens().Create(ctx, &model.APIToken{Name: "dashboard"})
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	got, err := st.Tokens().Verify(ctx, tok.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.LastUsedAt == nil {
		t.Fatalf("expected last_used_at to be stamped")
	}

	if err := st.Tokens().Revoke(ctx, tok.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := st.Tokens().Verify(ctx, tok.Token); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("revoked token must fail verification, got %v", err)
	}
	// Unrelated active tokens remain valid.
	if _, err := st.Tokens().Verify(ctx, other.Token); err != nil {
		t.Fatalf("unrelated token should still verify: %v", err)
	}
}

func TestGameStateSingleton(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	g, err := st.Game().Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if g.TotalXP != 0 {
		t.Fatalf("fresh state should be zero, got %d", g.TotalXP)
	}

	g.TotalXP = 325
	g.Unlocked = []string{"first_blood"}
	if err := st.Game().Save(ctx, g); err != nil {
		t.Fatalf("save: %v", err)
	}

	again, err := st.Game().Load(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.TotalXP != 325 || len(again.Unlocked) != 1 {
		t.Fatalf("state not persisted: %+v", again)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	st := newTestStore(t)
	// Second run must not error on existing columns.
	if err := Migrate(context.Background(), st.db); err != nil {
		t.Fatalf("re-migrate: %v", err)
	}
}

func TestSnoozeSetsStatus(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	sp, _ := st.Spots().Create(ctx, &model.Spot{Name: "Sofa"})
	until := time.Now().UTC().Add(2 * time.Hour)
	if err := st.Spots().Snooze(ctx, sp.ID, &until); err != nil {
		t.Fatalf("snooze: %v", err)
	}
	got, _ := st.Spots().Get(ctx, sp.ID)
	if got.Status != model.StatusSnoozed || got.SnoozedUntil == nil {
		t.Fatalf("expected snoozed spot, got %+v", got)
	}
	if !got.IsSnoozed(time.Now()) {
		t.Fatalf("IsSnoozed should be true before the deadline")
	}
}
