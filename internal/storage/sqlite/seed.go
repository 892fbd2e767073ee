package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"uiregression/internal/domain"
)

// SeedFromFile loads a YAML ticket fixture into the store. Existing ids are
// left untouched so reseeding an already-populated database is a no-op for
// tickets the agent has since mutated.
func SeedFromFile(db *sql.DB, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading seed file: %w", err)
	}

	var fixture struct {
		Tickets []domain.Ticket `yaml:"tickets"`
	}
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return 0, fmt.Errorf("parsing seed file %s: %w", path, err)
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT OR IGNORE INTO tickets (` + ticketColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	inserted := 0
	for i, t := range fixture.Tickets {
		if t.ID == "" || t.Title == "" {
			return inserted, fmt.Errorf("seed ticket %d missing id or title", i)
		}
		if !domain.ValidStatus(t.Status) {
			return inserted, fmt.Errorf("seed ticket %s has invalid status %q", t.ID, t.Status)
		}
		if t.Created.IsZero() {
			t.Created = now
		}
		if t.Updated.IsZero() {
			t.Updated = t.Created
		}
		res, err := stmt.Exec(t.ID, t.Title, t.Description, t.Status, t.Priority, t.Type,
			t.Created, t.Updated, t.Assignee, t.Reporter, t.Comment)
		if err != nil {
			return inserted, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	return inserted, tx.Commit()
}
