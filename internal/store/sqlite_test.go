package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/akiii/botforge/internal/domain"
)

func newTestStore(t *testing.T) Repository {
	t.Helper()
	repo, err := NewSQLite(filepath.Join(t.TempDir(), "builds.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func record(buildID, userID string, outcome domain.BuildOutcome, createdAt time.Time) *domain.BuildRecord {
	return &domain.BuildRecord{
		BuildID:      buildID,
		UserID:       userID,
		ChannelID:    "chan-1",
		BotName:      "EchoBot",
		Spec:         "echo messages",
		CommandCount: 2,
		Outcome:      outcome,
		CreatedAt:    createdAt,
	}
}

func TestInsertAndRecentBuilds(t *testing.T) {
	t.Parallel()

	repo := newTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"b1", "b2", "b3"} {
		rec := record(id, "u1", domain.BuildOutcomeDelivered, base.Add(time.Duration(i)*time.Minute))
		if err := repo.InsertBuild(ctx, rec); err != nil {
			t.Fatalf("InsertBuild(%s) failed: %v", id, err)
		}
	}

	recent, err := repo.RecentBuilds(ctx, 2)
	if err != nil {
		t.Fatalf("RecentBuilds failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("RecentBuilds returned %d records, want 2", len(recent))
	}
	if recent[0].BuildID != "b3" || recent[1].BuildID != "b2" {
		t.Errorf("unexpected order: %s, %s", recent[0].BuildID, recent[1].BuildID)
	}
	if recent[0].Outcome != domain.BuildOutcomeDelivered {
		t.Errorf("Outcome = %q, want delivered", recent[0].Outcome)
	}
	if recent[0].BotName != "EchoBot" || recent[0].CommandCount != 2 {
		t.Errorf("record fields not round-tripped: %+v", recent[0])
	}
}

func TestFailedBuildKeepsDetail(t *testing.T) {
	t.Parallel()

	repo := newTestStore(t)
	ctx := context.Background()

	rec := record("b1", "u1", domain.BuildOutcomeNoSource, time.Now())
	rec.Detail = "response contained no python block"
	if err := repo.InsertBuild(ctx, rec); err != nil {
		t.Fatalf("InsertBuild failed: %v", err)
	}

	recent, err := repo.RecentBuilds(ctx, 1)
	if err != nil {
		t.Fatalf("RecentBuilds failed: %v", err)
	}
	if recent[0].Detail != rec.Detail {
		t.Errorf("Detail = %q, want %q", recent[0].Detail, rec.Detail)
	}
}

func TestCountBuildsByUser(t *testing.T) {
	t.Parallel()

	repo := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	for i, userID := range []string{"u1", "u1", "u2"} {
		rec := record("b"+string(rune('1'+i)), userID, domain.BuildOutcomeDelivered, now)
		if err := repo.InsertBuild(ctx, rec); err != nil {
			t.Fatalf("InsertBuild failed: %v", err)
		}
	}

	count, err := repo.CountBuildsByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("CountBuildsByUser failed: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	count, err = repo.CountBuildsByUser(ctx, "nobody")
	if err != nil {
		t.Fatalf("CountBuildsByUser failed: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}
