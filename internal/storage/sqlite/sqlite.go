// Package sqlite persists the ticket backlog and the model completion cache
// in a single database file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"uiregression/internal/backlog"
	"uiregression/internal/domain"
)

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS tickets (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL,
		status      TEXT NOT NULL DEFAULT 'todo',
		priority    TEXT NOT NULL DEFAULT 'medium',
		type        TEXT NOT NULL DEFAULT 'fix',
		created     DATETIME NOT NULL,
		updated     DATETIME NOT NULL,
		assignee    TEXT NOT NULL DEFAULT '',
		reporter    TEXT NOT NULL DEFAULT '',
		comment     TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_tickets_status ON tickets(status);

	CREATE TABLE IF NOT EXISTS llm_cache (
		key        TEXT PRIMARY KEY,
		response   TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}
	return db, nil
}

// Store implements backlog.Gateway over sqlite. All ids it allocates carry
// the configured prefix.
type Store struct {
	db     *sql.DB
	prefix string
}

func NewStore(db *sql.DB, prefix string) *Store {
	return &Store{db: db, prefix: prefix}
}

const ticketColumns = "id, title, description, status, priority, type, created, updated, assignee, reporter, comment"

func scanTicket(row interface{ Scan(...any) error }) (*domain.Ticket, error) {
	var t domain.Ticket
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.Type,
		&t.Created, &t.Updated, &t.Assignee, &t.Reporter, &t.Comment)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+ticketColumns+" FROM tickets WHERE id = ?", id)
	t, err := scanTicket(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", backlog.ErrUnavailable, id, err)
	}
	return t, nil
}

func (s *Store) ListByPrefix(ctx context.Context, prefix string) ([]domain.Ticket, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+ticketColumns+" FROM tickets WHERE id LIKE ? || '-%' ORDER BY id", prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: list prefix %s: %v", backlog.ErrUnavailable, prefix, err)
	}
	defer rows.Close()
	return collectTickets(rows)
}

func (s *Store) Search(ctx context.Context, query string) ([]domain.Ticket, error) {
	pattern := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+ticketColumns+" FROM tickets WHERE title LIKE ? OR description LIKE ? ORDER BY id",
		pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: search %q: %v", backlog.ErrUnavailable, query, err)
	}
	defer rows.Close()
	return collectTickets(rows)
}

func collectTickets(rows *sql.Rows) ([]domain.Ticket, error) {
	var tickets []domain.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan ticket: %v", backlog.ErrUnavailable, err)
		}
		tickets = append(tickets, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate tickets: %v", backlog.ErrUnavailable, err)
	}
	return tickets, nil
}

// Create allocates the next sequential id and inserts the ticket in one
// transaction. The next suffix is derived from the current maximum numeric
// suffix among existing ids with the same prefix, so gaps and out-of-order
// ids never cause a collision, even across repeated runs.
func (s *Store) Create(ctx context.Context, req backlog.CreateRequest) (*domain.Ticket, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin create: %v", backlog.ErrUnavailable, err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, "SELECT id FROM tickets WHERE id LIKE ? || '-%'", s.prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: scan ids: %v", backlog.ErrUnavailable, err)
	}
	maxSuffix := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("%w: scan id: %v", backlog.ErrUnavailable, err)
		}
		if n, ok := numericSuffix(id, s.prefix); ok && n > maxSuffix {
			maxSuffix = n
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate ids: %v", backlog.ErrUnavailable, err)
	}

	now := time.Now().UTC()
	t := domain.Ticket{
		ID:          fmt.Sprintf("%s-%03d", s.prefix, maxSuffix+1),
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Type:        req.Type,
		Created:     now,
		Updated:     now,
		Assignee:    req.Assignee,
		Reporter:    req.Reporter,
	}
	if !domain.ValidStatus(t.Status) {
		t.Status = domain.StatusTodo
	}
	if !domain.ValidPriority(t.Priority) {
		t.Priority = domain.PriorityMedium
	}
	if !domain.ValidType(t.Type) {
		t.Type = domain.TypeFix
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO tickets (`+ticketColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Description, t.Status, t.Priority, t.Type,
		t.Created, t.Updated, t.Assignee, t.Reporter, t.Comment)
	if err != nil {
		return nil, fmt.Errorf("%w: insert %s: %v", backlog.ErrUnavailable, t.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit %s: %v", backlog.ErrUnavailable, t.ID, err)
	}
	return &t, nil
}

func numericSuffix(id, prefix string) (int, bool) {
	rest, ok := strings.CutPrefix(id, prefix+"-")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func (s *Store) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) (*domain.Ticket, error) {
	if !domain.ValidStatus(status) {
		return nil, fmt.Errorf("invalid ticket status %q", status)
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE tickets SET status = ?, updated = ? WHERE id = ?",
		status, time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("%w: update status %s: %v", backlog.ErrUnavailable, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.Get(ctx, id)
}

func (s *Store) UpdateComment(ctx context.Context, id, text string) (*domain.Ticket, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE tickets SET comment = ?, updated = ? WHERE id = ?",
		text, time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("%w: update comment %s: %v", backlog.ErrUnavailable, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.Get(ctx, id)
}
