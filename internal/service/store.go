package service

import (
	"context"

	"github.com/civicai/backend/internal/models"
)

// Store is the persistence contract for the engine's four collections.
// Implementations: internal/db (pgx) and internal/memstore (demo/tests).
//
// Issues are never deleted; notifications are capped at the 200 most recent
// entries by AddNotification; coin transactions are append-only.
type Store interface {
	Ping(ctx context.Context) error

	NextIssueSeq(ctx context.Context) (int, error)
	CreateIssue(ctx context.Context, issue models.Issue) error
	GetIssue(ctx context.Context, id string) (models.Issue, error)
	ListIssues(ctx context.Context, status, department string) ([]models.Issue, error)
	UpdateIssue(ctx context.Context, issue models.Issue) error

	CreateResponder(ctx context.Context, r models.Responder) error
	GetResponder(ctx context.Context, id string) (models.Responder, error)
	// ListResponders returns responders in registration order, optionally
	// filtered by department.
	ListResponders(ctx context.Context, department string) ([]models.Responder, error)
	DeleteResponder(ctx context.Context, id string) error
	SetResponderAvailability(ctx context.Context, id string, available bool) error

	AddNotification(ctx context.Context, n models.Notification) error
	// ListNotifications returns notifications newest first.
	ListNotifications(ctx context.Context) ([]models.Notification, error)
	DeleteNotifications(ctx context.Context, ids []string) error

	AppendTransaction(ctx context.Context, tx models.CoinTransaction) error
	// ListTransactions returns transactions oldest first; userID "" means all users.
	ListTransactions(ctx context.Context, userID string) ([]models.CoinTransaction, error)
	GetBalance(ctx context.Context, userID string) (int, error)
	SetBalance(ctx context.Context, userID string, balance int) error
}
