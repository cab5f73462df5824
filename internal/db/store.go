package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicai/backend/internal/models"
	"github.com/civicai/backend/internal/service"
)

// Store implements service.Store on PostgreSQL. Schema in migrations/.
type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) NextIssueSeq(ctx context.Context) (int, error) {
	var seq int
	err := s.Pool.QueryRow(ctx, `SELECT nextval('issue_display_seq')`).Scan(&seq)
	return seq, err
}

func (s *Store) CreateIssue(ctx context.Context, i models.Issue) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO issues (id, category, confidence, severity, department, lat, lng, address, description,
			reporter_name, reporter_phone, reporter_id, status, created_at, resolved_at,
			contractor, assigned_to, assigned_contact, priority_score, size_estimate, cost_estimate,
			photo, voice, voice_transcript)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)
	`, i.ID, i.Category, i.Confidence, i.Severity, i.Department, i.Lat, i.Lng, i.Address, i.Description,
		i.ReporterName, i.ReporterPhone, i.ReporterID, i.Status, i.CreatedAt, i.ResolvedAt,
		i.Contractor, i.AssignedTo, i.AssignedContact, i.PriorityScore, i.Size, i.CostEstimate,
		i.Photo, i.Voice, i.VoiceTranscript)
	return err
}

const issueColumns = `id, category, confidence, severity, department, lat, lng, address, description,
	reporter_name, reporter_phone, reporter_id, status, created_at, resolved_at,
	contractor, assigned_to, assigned_contact, priority_score, size_estimate, cost_estimate,
	photo, voice, voice_transcript`

func scanIssue(row pgx.Row) (models.Issue, error) {
	var i models.Issue
	err := row.Scan(&i.ID, &i.Category, &i.Confidence, &i.Severity, &i.Department, &i.Lat, &i.Lng,
		&i.Address, &i.Description, &i.ReporterName, &i.ReporterPhone, &i.ReporterID, &i.Status,
		&i.CreatedAt, &i.ResolvedAt, &i.Contractor, &i.AssignedTo, &i.AssignedContact,
		&i.PriorityScore, &i.Size, &i.CostEstimate, &i.Photo, &i.Voice, &i.VoiceTranscript)
	return i, err
}

func (s *Store) GetIssue(ctx context.Context, id string) (models.Issue, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+issueColumns+` FROM issues WHERE id = $1`, id)
	issue, err := scanIssue(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Issue{}, fmt.Errorf("issue %s: %w", id, service.ErrNotFound)
		}
		return models.Issue{}, err
	}
	return issue, nil
}

func (s *Store) ListIssues(ctx context.Context, status, department string) ([]models.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues`
	var args []any
	var wheres []string
	if status != "" {
		args = append(args, status)
		wheres = append(wheres, fmt.Sprintf("status = $%d", len(args)))
	}
	if department != "" {
		args = append(args, department)
		wheres = append(wheres, fmt.Sprintf("department = $%d", len(args)))
	}
	if len(wheres) > 0 {
		query += " WHERE " + strings.Join(wheres, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Issue
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, issue)
	}
	return out, rows.Err()
}

func (s *Store) UpdateIssue(ctx context.Context, i models.Issue) error {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE issues SET status = $1, resolved_at = $2, assigned_to = $3, assigned_contact = $4,
			contractor = $5, priority_score = $6
		WHERE id = $7
	`, i.Status, i.ResolvedAt, i.AssignedTo, i.AssignedContact, i.Contractor, i.PriorityScore, i.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("issue %s: %w", i.ID, service.ErrNotFound)
	}
	return nil
}

func (s *Store) CreateResponder(ctx context.Context, r models.Responder) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO responders (id, name, contact, department, available, lat, lng)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, r.ID, r.Name, r.Contact, r.Department, r.Available, r.Lat, r.Lng)
	return err
}

func (s *Store) GetResponder(ctx context.Context, id string) (models.Responder, error) {
	var r models.Responder
	err := s.Pool.QueryRow(ctx, `
		SELECT id, name, contact, department, available, lat, lng FROM responders WHERE id = $1
	`, id).Scan(&r.ID, &r.Name, &r.Contact, &r.Department, &r.Available, &r.Lat, &r.Lng)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Responder{}, fmt.Errorf("responder %s: %w", id, service.ErrNotFound)
		}
		return models.Responder{}, err
	}
	return r, nil
}

func (s *Store) ListResponders(ctx context.Context, department string) ([]models.Responder, error) {
	query := `SELECT id, name, contact, department, available, lat, lng FROM responders`
	var args []any
	if department != "" {
		args = append(args, department)
		query += " WHERE department = $1"
	}
	query += " ORDER BY seq ASC"

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Responder
	for rows.Next() {
		var r models.Responder
		if err := rows.Scan(&r.ID, &r.Name, &r.Contact, &r.Department, &r.Available, &r.Lat, &r.Lng); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) DeleteResponder(ctx context.Context, id string) error {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM responders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("responder %s: %w", id, service.ErrNotFound)
	}
	return nil
}

func (s *Store) SetResponderAvailability(ctx context.Context, id string, available bool) error {
	tag, err := s.Pool.Exec(ctx, `UPDATE responders SET available = $1 WHERE id = $2`, available, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("responder %s: %w", id, service.ErrNotFound)
	}
	return nil
}

// AddNotification appends and trims the stream to the 200 most recent rows
// in one transaction.
func (s *Store) AddNotification(ctx context.Context, n models.Notification) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO notifications (id, message, created_at, type, issue_id, department,
				target_role, target_department, target_user_id, reporter_id)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		`, n.ID, n.Message, n.CreatedAt, n.Type, n.IssueID, n.Department,
			n.TargetRole, n.TargetDepartment, n.TargetUserID, n.ReporterID)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			DELETE FROM notifications WHERE seq NOT IN (
				SELECT seq FROM notifications ORDER BY seq DESC LIMIT 200
			)
		`)
		return err
	})
}

func (s *Store) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, message, created_at, type, issue_id, department,
			target_role, target_department, target_user_id, reporter_id
		FROM notifications ORDER BY seq DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.Message, &n.CreatedAt, &n.Type, &n.IssueID, &n.Department,
			&n.TargetRole, &n.TargetDepartment, &n.TargetUserID, &n.ReporterID); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) DeleteNotifications(ctx context.Context, ids []string) error {
	_, err := s.Pool.Exec(ctx, `DELETE FROM notifications WHERE id = ANY($1)`, ids)
	return err
}

func (s *Store) AppendTransaction(ctx context.Context, t models.CoinTransaction) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO coin_transactions (id, user_id, user_name, amount, reason, issue_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, t.ID, t.UserID, t.UserName, t.Amount, t.Reason, t.IssueID, t.CreatedAt)
	return err
}

func (s *Store) ListTransactions(ctx context.Context, userID string) ([]models.CoinTransaction, error) {
	query := `SELECT id, user_id, user_name, amount, reason, issue_id, created_at FROM coin_transactions`
	var args []any
	if userID != "" {
		args = append(args, userID)
		query += " WHERE user_id = $1"
	}
	query += " ORDER BY seq ASC"

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CoinTransaction
	for rows.Next() {
		var t models.CoinTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.UserName, &t.Amount, &t.Reason, &t.IssueID, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) GetBalance(ctx context.Context, userID string) (int, error) {
	var balance int
	err := s.Pool.QueryRow(ctx, `SELECT balance FROM coin_balances WHERE user_id = $1`, userID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return balance, err
}

func (s *Store) SetBalance(ctx context.Context, userID string, balance int) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO coin_balances (user_id, balance) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET balance = EXCLUDED.balance
	`, userID, balance)
	return err
}
