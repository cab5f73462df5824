// Package memstore is the in-memory Store used when no DATABASE_URL is
// configured and by the test suites. Collections live behind per-collection
// mutexes; notification retention is enforced on every append.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/civicai/backend/internal/models"
	"github.com/civicai/backend/internal/service"
)

const maxNotifications = 200

type Store struct {
	issuesMu sync.Mutex
	issues   []models.Issue
	issueSeq int

	respondersMu sync.Mutex
	responders   []models.Responder

	notificationsMu sync.Mutex
	notifications   []models.Notification // newest first

	coinsMu      sync.Mutex
	transactions []models.CoinTransaction // oldest first
	balances     map[string]int
}

func New() *Store {
	return &Store{balances: map[string]int{}}
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) NextIssueSeq(ctx context.Context) (int, error) {
	s.issuesMu.Lock()
	defer s.issuesMu.Unlock()
	s.issueSeq++
	return s.issueSeq, nil
}

func (s *Store) CreateIssue(ctx context.Context, issue models.Issue) error {
	s.issuesMu.Lock()
	defer s.issuesMu.Unlock()
	for _, existing := range s.issues {
		if existing.ID == issue.ID {
			return fmt.Errorf("issue %s already exists", issue.ID)
		}
	}
	s.issues = append(s.issues, issue)
	return nil
}

func (s *Store) GetIssue(ctx context.Context, id string) (models.Issue, error) {
	s.issuesMu.Lock()
	defer s.issuesMu.Unlock()
	for _, issue := range s.issues {
		if issue.ID == id {
			return issue, nil
		}
	}
	return models.Issue{}, fmt.Errorf("issue %s: %w", id, service.ErrNotFound)
}

func (s *Store) ListIssues(ctx context.Context, status, department string) ([]models.Issue, error) {
	s.issuesMu.Lock()
	defer s.issuesMu.Unlock()
	out := make([]models.Issue, 0, len(s.issues))
	for _, issue := range s.issues {
		if status != "" && issue.Status != status {
			continue
		}
		if department != "" && issue.Department != department {
			continue
		}
		out = append(out, issue)
	}
	return out, nil
}

func (s *Store) UpdateIssue(ctx context.Context, issue models.Issue) error {
	s.issuesMu.Lock()
	defer s.issuesMu.Unlock()
	for i := range s.issues {
		if s.issues[i].ID == issue.ID {
			s.issues[i] = issue
			return nil
		}
	}
	return fmt.Errorf("issue %s: %w", issue.ID, service.ErrNotFound)
}

func (s *Store) CreateResponder(ctx context.Context, r models.Responder) error {
	s.respondersMu.Lock()
	defer s.respondersMu.Unlock()
	for _, existing := range s.responders {
		if existing.ID == r.ID {
			return fmt.Errorf("responder %s already exists", r.ID)
		}
	}
	s.responders = append(s.responders, r)
	return nil
}

func (s *Store) GetResponder(ctx context.Context, id string) (models.Responder, error) {
	s.respondersMu.Lock()
	defer s.respondersMu.Unlock()
	for _, r := range s.responders {
		if r.ID == id {
			return r, nil
		}
	}
	return models.Responder{}, fmt.Errorf("responder %s: %w", id, service.ErrNotFound)
}

func (s *Store) ListResponders(ctx context.Context, department string) ([]models.Responder, error) {
	s.respondersMu.Lock()
	defer s.respondersMu.Unlock()
	out := make([]models.Responder, 0, len(s.responders))
	for _, r := range s.responders {
		if department != "" && r.Department != department {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) DeleteResponder(ctx context.Context, id string) error {
	s.respondersMu.Lock()
	defer s.respondersMu.Unlock()
	for i, r := range s.responders {
		if r.ID == id {
			s.responders = append(s.responders[:i], s.responders[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("responder %s: %w", id, service.ErrNotFound)
}

func (s *Store) SetResponderAvailability(ctx context.Context, id string, available bool) error {
	s.respondersMu.Lock()
	defer s.respondersMu.Unlock()
	for i := range s.responders {
		if s.responders[i].ID == id {
			s.responders[i].Available = available
			return nil
		}
	}
	return fmt.Errorf("responder %s: %w", id, service.ErrNotFound)
}

func (s *Store) AddNotification(ctx context.Context, n models.Notification) error {
	s.notificationsMu.Lock()
	defer s.notificationsMu.Unlock()
	s.notifications = append([]models.Notification{n}, s.notifications...)
	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[:maxNotifications]
	}
	return nil
}

func (s *Store) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	s.notificationsMu.Lock()
	defer s.notificationsMu.Unlock()
	out := make([]models.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out, nil
}

func (s *Store) DeleteNotifications(ctx context.Context, ids []string) error {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	s.notificationsMu.Lock()
	defer s.notificationsMu.Unlock()
	kept := s.notifications[:0]
	for _, n := range s.notifications {
		if !drop[n.ID] {
			kept = append(kept, n)
		}
	}
	s.notifications = kept
	return nil
}

func (s *Store) AppendTransaction(ctx context.Context, tx models.CoinTransaction) error {
	s.coinsMu.Lock()
	defer s.coinsMu.Unlock()
	s.transactions = append(s.transactions, tx)
	return nil
}

func (s *Store) ListTransactions(ctx context.Context, userID string) ([]models.CoinTransaction, error) {
	s.coinsMu.Lock()
	defer s.coinsMu.Unlock()
	out := make([]models.CoinTransaction, 0, len(s.transactions))
	for _, tx := range s.transactions {
		if userID != "" && tx.UserID != userID {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (s *Store) GetBalance(ctx context.Context, userID string) (int, error) {
	s.coinsMu.Lock()
	defer s.coinsMu.Unlock()
	return s.balances[userID], nil
}

func (s *Store) SetBalance(ctx context.Context, userID string, balance int) error {
	s.coinsMu.Lock()
	defer s.coinsMu.Unlock()
	s.balances[userID] = balance
	return nil
}
