// Package repository defines the per-mode ranking table and its errors.
package repository

import (
	"context"

	"github.com/okian/arena/internal/domain/mode"
	"github.com/okian/arena/internal/domain/rating"
)

// Entry represents a ranking table row: the denormalized, queryable
// projection of a player's rating plus identity metadata.
type Entry struct {
	Rank        int         `json:"rank"`
	PlayerID    string      `json:"player_id"`
	DisplayName string      `json:"display_name"`
	Rating      int         `json:"rating"`
	Wins        int         `json:"wins"`
	Losses      int         `json:"losses"`
	Tier        rating.Tier `json:"tier"`
}

// Store provides read/write access to the per-mode ranking tables.
type Store interface {
	// Upsert inserts or updates a player's row, recomputes its tier, and
	// resorts the mode's table (descending by rating, contiguous 1-based
	// ranks).
	Upsert(ctx context.Context, m mode.Mode, playerID, displayName string, ratingValue, wins, losses int) error

	// Top returns the best n entries of the mode's table.
	Top(ctx context.Context, m mode.Mode, n int) ([]Entry, error)

	// Page returns one fixed-size, rank-ordered slice of the table.
	// Pages are 1-based; paging beyond the last page returns an empty
	// slice, not an error.
	Page(ctx context.Context, m mode.Mode, page, size int) ([]Entry, error)

	// Entry returns a single player's row.
	// Returns ErrNotFound if the player is unknown in that mode.
	Entry(ctx context.Context, m mode.Mode, playerID string) (Entry, error)

	// SearchByName returns rows whose display name contains the
	// substring, case-insensitively, in rank order.
	SearchByName(ctx context.Context, m mode.Mode, substring string) ([]Entry, error)

	// Count returns the number of rows in the mode's table.
	Count(ctx context.Context, m mode.Mode) int
}
