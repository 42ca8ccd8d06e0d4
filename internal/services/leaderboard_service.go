package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"classroom-api/internal/models"
	"classroom-api/internal/repositories"
	"classroom-api/pkg/memorydb"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

const leaderboardCacheTTL = 30 * time.Second

// LeaderboardLister is the slice of the leaderboard repository the service
// reads from.
type LeaderboardLister interface {
	ListByRoom(ctx context.Context, roomID uuid.UUID) ([]models.LeaderboardEntry, error)
}

var _ LeaderboardLister = (*repositories.LeaderboardRepository)(nil)

// LeaderboardService serves per-room standings with a short redis cache in
// front of the database.
type LeaderboardService struct {
	repo  LeaderboardLister
	cache *memorydb.RedisClient
	log   *logrus.Entry
}

func NewLeaderboardService(repo LeaderboardLister, cache *memorydb.RedisClient, log *logrus.Entry) *LeaderboardService {
	return &LeaderboardService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

func leaderboardCacheKey(roomID uuid.UUID) string {
	return "leaderboard:" + roomID.String()
}

func (s *LeaderboardService) ListByRoom(ctx context.Context, roomID uuid.UUID) ([]models.LeaderboardEntry, error) {
	key := leaderboardCacheKey(roomID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key); err == nil {
			var entries []models.LeaderboardEntry
			if err := json.Unmarshal([]byte(cached), &entries); err == nil {
				return entries, nil
			}
		} else if !memorydb.IsNil(err) {
			s.log.WithError(err).Warn("Leaderboard cache read failed")
		}
	}

	entries, err := s.repo.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(entries); err == nil {
			if err := s.cache.Set(ctx, key, encoded, leaderboardCacheTTL); err != nil {
				s.log.WithError(err).Warn("Leaderboard cache write failed")
			}
		}
	}

	return entries, nil
}

// ExportXLSX renders the room standings as a spreadsheet for download.
func (s *LeaderboardService) ExportXLSX(ctx context.Context, roomID uuid.UUID) (*bytes.Buffer, error) {
	entries, err := s.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Leaderboard"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headers := []string{"Rank", "Student", "Score"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for row, e := range entries {
		values := []any{row + 1, e.DisplayName, e.Score}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", row+1, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf, nil
}
