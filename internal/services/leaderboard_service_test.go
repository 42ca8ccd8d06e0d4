package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"classroom-api/internal/logger"
	"classroom-api/internal/models"
	"classroom-api/pkg/memorydb"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

type fakeLeaderboardRepo struct {
	entries []models.LeaderboardEntry
	err     error
	calls   int
}

func (f *fakeLeaderboardRepo) ListByRoom(context.Context, uuid.UUID) ([]models.LeaderboardEntry, error) {
	f.calls++
	return f.entries, f.err
}

func sampleEntries() []models.LeaderboardEntry {
	return []models.LeaderboardEntry{
		{StudentID: uuid.New(), DisplayName: "Ayesha", Score: 95},
		{StudentID: uuid.New(), DisplayName: "Bilal", Score: 82},
	}
}

func newCachedService(t *testing.T, repo *fakeLeaderboardRepo) *LeaderboardService {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := memorydb.NewRedisClientFromAddr(mr.Addr())
	return NewLeaderboardService(repo, cache, logger.Discard().Entry)
}

func TestListByRoomCachesResult(t *testing.T) {
	repo := &fakeLeaderboardRepo{entries: sampleEntries()}
	svc := newCachedService(t, repo)
	roomID := uuid.New()

	first, err := svc.ListByRoom(context.Background(), roomID)
	if err != nil {
		t.Fatalf("first ListByRoom: %v", err)
	}
	second, err := svc.ListByRoom(context.Background(), roomID)
	if err != nil {
		t.Fatalf("second ListByRoom: %v", err)
	}

	if repo.calls != 1 {
		t.Fatalf("repository hit %d times, want 1", repo.calls)
	}
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("entry counts = %d, %d, want 2, 2", len(first), len(second))
	}
	if second[0].DisplayName != "Ayesha" {
		t.Fatalf("cached entry = %q", second[0].DisplayName)
	}
}

func TestListByRoomWithoutCache(t *testing.T) {
	repo := &fakeLeaderboardRepo{entries: sampleEntries()}
	svc := NewLeaderboardService(repo, nil, logger.Discard().Entry)
	roomID := uuid.New()

	for i := 0; i < 2; i++ {
		if _, err := svc.ListByRoom(context.Background(), roomID); err != nil {
			t.Fatalf("ListByRoom #%d: %v", i+1, err)
		}
	}
	if repo.calls != 2 {
		t.Fatalf("repository hit %d times, want 2", repo.calls)
	}
}

func TestListByRoomRepositoryError(t *testing.T) {
	repo := &fakeLeaderboardRepo{err: errors.New("connection refused")}
	svc := newCachedService(t, repo)

	if _, err := svc.ListByRoom(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected repository error to surface")
	}
}

func TestExportXLSX(t *testing.T) {
	repo := &fakeLeaderboardRepo{entries: sampleEntries()}
	svc := newCachedService(t, repo)

	buf, err := svc.ExportXLSX(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("ExportXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Leaderboard")
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header plus 2 entries", len(rows))
	}
	if rows[0][1] != "Student" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][1] != "Ayesha" || rows[2][1] != "Bilal" {
		t.Errorf("rows = %v", rows[1:])
	}
}
