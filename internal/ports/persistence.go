package ports

import (
	"context"
	"time"

	"tictactoe/internal/domain"
)

// Storage permissions, mirroring the hosting runtime's values.
const (
	PermissionNoRead     = 0
	PermissionOwnerRead  = 1
	PermissionPublicRead = 2

	PermissionNoWrite    = 0
	PermissionOwnerWrite = 1
)

// LeaderboardEntry is a single per-player score submission.
type LeaderboardEntry struct {
	LeaderboardID string
	OwnerID       string
	Username      string
	Score         int64
	Subscore      int64
	Metadata      map[string]interface{}
}

// LeaderboardPort submits leaderboard scores.
type LeaderboardPort interface {
	// WriteRecord submits one score for the entry's owner.
	WriteRecord(ctx context.Context, entry LeaderboardEntry) error
}

// MatchRecordValue is the durable record of a finished match.
type MatchRecordValue struct {
	Result     domain.Result   `json:"result"`
	Moves      []domain.Move   `json:"moves"`
	Players    []domain.Player `json:"players"`
	CreatedAt  time.Time       `json:"created_at"`
	FinishedAt time.Time       `json:"finished_at"`
}

// MatchRecord is a storage write for a finished match.
type MatchRecord struct {
	Collection      string
	Key             string
	Value           MatchRecordValue
	PermissionRead  int
	PermissionWrite int
}

// ResultStorePort persists finished match records.
type ResultStorePort interface {
	// SaveMatchRecord writes the record as a system-owned object.
	SaveMatchRecord(ctx context.Context, record MatchRecord) error
}
