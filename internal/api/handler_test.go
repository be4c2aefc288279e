package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/akiii/botforge/internal/domain"
)

type fakeRepo struct {
	builds  []*domain.BuildRecord
	pingErr error
}

func (f *fakeRepo) InsertBuild(_ context.Context, rec *domain.BuildRecord) error {
	f.builds = append(f.builds, rec)
	return nil
}

func (f *fakeRepo) RecentBuilds(_ context.Context, limit int) ([]*domain.BuildRecord, error) {
	if limit > len(f.builds) {
		limit = len(f.builds)
	}
	return f.builds[:limit], nil
}

func (f *fakeRepo) CountBuildsByUser(_ context.Context, _ string) (int64, error) {
	return int64(len(f.builds)), nil
}

func (f *fakeRepo) Ping(_ context.Context) error { return f.pingErr }
func (f *fakeRepo) Close() error                 { return nil }

func newTestServer(repo *fakeRepo) *httptest.Server {
	r := chi.NewRouter()
	NewHandler(repo).RegisterRoutes(r)
	return httptest.NewServer(r)
}

func TestHealthOK(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&fakeRepo{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestHealthDegradedWhenDBUnreachable(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&fakeRepo{pingErr: errors.New("db down")})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestRecentBuilds(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{builds: []*domain.BuildRecord{
		{BuildID: "b1", UserID: "u1", BotName: "EchoBot", CommandCount: 2, Outcome: domain.BuildOutcomeDelivered, CreatedAt: time.Now()},
	}}
	srv := newTestServer(repo)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/builds/recent")
	if err != nil {
		t.Fatalf("GET /api/builds/recent failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var body struct {
		Builds []buildResponse `json:"builds"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Builds) != 1 {
		t.Fatalf("builds = %d, want 1", len(body.Builds))
	}
	if body.Builds[0].BotName != "EchoBot" || body.Builds[0].Outcome != "delivered" {
		t.Errorf("unexpected build payload: %+v", body.Builds[0])
	}
}

func TestRecentBuildsRejectsBadLimit(t *testing.T) {
	t.Parallel()

	srv := newTestServer(&fakeRepo{})
	defer srv.Close()

	for _, limit := range []string{"0", "-5", "abc", "1000"} {
		resp, err := http.Get(srv.URL + "/api/builds/recent?limit=" + limit)
		if err != nil {
			t.Fatalf("GET failed: %v", err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("limit=%s: status = %d, want 400", limit, resp.StatusCode)
		}
	}
}
