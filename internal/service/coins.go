package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/civicai/backend/internal/models"
)

// CoinService keeps the civic-coin ledger. The append-only transaction log
// is the source of truth; the per-user balance is a denormalized cache
// recomputed at each write and clamped at zero.
type CoinService struct {
	Store Store
}

func (s *CoinService) Credit(ctx context.Context, userID, userName string, amount int, reason, issueID string) (models.CoinTransaction, error) {
	if amount < 0 {
		amount = -amount
	}
	return s.append(ctx, models.CoinTransaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		UserName:  userName,
		Amount:    amount,
		Reason:    reason,
		IssueID:   issueID,
		CreatedAt: time.Now().UTC(),
	})
}

// Debit records a spend as a negative transaction. The cached balance never
// goes below zero even when the raw ledger sums negative.
func (s *CoinService) Debit(ctx context.Context, userID, userName string, amount int, reason string) (models.CoinTransaction, error) {
	if amount < 0 {
		amount = -amount
	}
	return s.append(ctx, models.CoinTransaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		UserName:  userName,
		Amount:    -amount,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	})
}

func (s *CoinService) append(ctx context.Context, tx models.CoinTransaction) (models.CoinTransaction, error) {
	if err := s.Store.AppendTransaction(ctx, tx); err != nil {
		return models.CoinTransaction{}, err
	}

	all, err := s.Store.ListTransactions(ctx, tx.UserID)
	if err != nil {
		return models.CoinTransaction{}, err
	}
	sum := 0
	for _, t := range all {
		sum += t.Amount
	}
	if sum < 0 {
		sum = 0
	}
	if err := s.Store.SetBalance(ctx, tx.UserID, sum); err != nil {
		return models.CoinTransaction{}, err
	}
	return tx, nil
}

func (s *CoinService) Balance(ctx context.Context, userID string) (int, error) {
	return s.Store.GetBalance(ctx, userID)
}

// Leaderboard ranks users by total ledgered coins, descending. Ties keep
// first-encountered insertion order.
func (s *CoinService) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	all, err := s.Store.ListTransactions(ctx, "")
	if err != nil {
		return nil, err
	}

	totals := map[string]*models.LeaderboardEntry{}
	var order []string
	for _, t := range all {
		entry, ok := totals[t.UserID]
		if !ok {
			entry = &models.LeaderboardEntry{UserID: t.UserID, UserName: t.UserName}
			totals[t.UserID] = entry
			order = append(order, t.UserID)
		}
		entry.Total += t.Amount
	}

	board := make([]models.LeaderboardEntry, 0, len(order))
	for _, id := range order {
		board = append(board, *totals[id])
	}
	sort.SliceStable(board, func(i, j int) bool {
		return board[i].Total > board[j].Total
	})
	if len(board) > limit {
		board = board[:limit]
	}
	return board, nil
}
