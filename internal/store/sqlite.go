package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/teemow/inboxgroups/internal/cluster"
)

// EmailRecord is a persisted email row.
type EmailRecord struct {
	GmailID      string
	Subject      string
	Sender       string
	Body         string
	DateReceived time.Time
	IsArchived   bool
}

// ClusterRecord is a persisted cluster with its member emails.
type ClusterRecord struct {
	ID          int
	Label       string
	Description string
	EmailCount  int
	Emails      []EmailRecord
}

// RunRecord summarizes one clustering run.
type RunRecord struct {
	ID           string
	EmailCount   int
	ClusterCount int
	Silhouette   float64
	CreatedAt    time.Time
}

// Stats aggregates the current database state.
type Stats struct {
	TotalEmails    int
	ArchivedEmails int
	ClusterCount   int
	LastRun        *RunRecord
}

// Store persists emails, clusters and run summaries in sqlite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the sqlite database at path. An empty path
// or ":memory:" opens an in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	trimmed := strings.TrimSpace(path)
	inMemory := false
	if trimmed == "" {
		trimmed = ":memory:"
	}
	if strings.Contains(trimmed, "mode=memory") || trimmed == ":memory:" || trimmed == "file::memory:" {
		inMemory = true
	}

	if !inMemory {
		if dir := filepath.Dir(trimmed); dir != "." {
			if err := os.MkdirAll(dir, 0700); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", trimmed)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if !inMemory {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
			return nil, fmt.Errorf("enable WAL: %w", err)
		}
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection is still usable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// EnsureSchema creates the tables and indexes if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS emails (
            gmail_id TEXT PRIMARY KEY,
            subject TEXT,
            sender TEXT,
            body TEXT,
            date_received INTEGER,
            is_archived INTEGER NOT NULL DEFAULT 0,
            created_at INTEGER NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS clusters (
            id INTEGER PRIMARY KEY,
            label TEXT NOT NULL,
            description TEXT,
            email_count INTEGER NOT NULL,
            run_id TEXT NOT NULL,
            created_at INTEGER NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS email_clusters (
            gmail_id TEXT NOT NULL,
            cluster_id INTEGER NOT NULL,
            PRIMARY KEY (gmail_id, cluster_id),
            FOREIGN KEY (gmail_id) REFERENCES emails(gmail_id) ON DELETE CASCADE,
            FOREIGN KEY (cluster_id) REFERENCES clusters(id) ON DELETE CASCADE
        );`,
		`CREATE TABLE IF NOT EXISTS runs (
            id TEXT PRIMARY KEY,
            email_count INTEGER NOT NULL,
            cluster_count INTEGER NOT NULL,
            silhouette REAL NOT NULL,
            created_at INTEGER NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_emails_archived ON emails(is_archived);`,
		`CREATE INDEX IF NOT EXISTS idx_email_clusters_cluster ON email_clusters(cluster_id);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);`,
	}

	for _, statement := range statements {
		if _, err := s.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// SaveEmails upserts a batch of fetched emails.
func (s *Store) SaveEmails(ctx context.Context, emails []cluster.RawEmail) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, e := range emails {
		_, err := tx.ExecContext(ctx, `INSERT INTO emails
            (gmail_id, subject, sender, body, date_received, is_archived, created_at)
            VALUES (?, ?, ?, ?, ?, ?, ?)
            ON CONFLICT(gmail_id) DO UPDATE SET
                subject = excluded.subject,
                sender = excluded.sender,
                body = excluded.body,
                date_received = excluded.date_received,
                is_archived = excluded.is_archived;`,
			e.GmailID, e.Subject, e.Sender, e.Body, e.DateReceived.Unix(), boolToInt(e.IsArchived), now)
		if err != nil {
			return fmt.Errorf("insert email: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit emails: %w", err)
	}
	return nil
}

// SaveClusters replaces the stored clusters and assignments with the
// result of one clustering run and records the run summary. It returns
// the generated run id.
func (s *Store) SaveClusters(ctx context.Context, clusters []cluster.Cluster, emailCount int, silhouette float64) (string, error) {
	runID := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Clusters reflect the latest run only.
	if _, err := tx.ExecContext(ctx, `DELETE FROM email_clusters;`); err != nil {
		return "", fmt.Errorf("clear assignments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM clusters;`); err != nil {
		return "", fmt.Errorf("clear clusters: %w", err)
	}

	now := time.Now().Unix()
	for _, c := range clusters {
		_, err := tx.ExecContext(ctx, `INSERT INTO clusters
            (id, label, description, email_count, run_id, created_at)
            VALUES (?, ?, ?, ?, ?, ?);`,
			c.ID, c.Label, c.Description, c.EmailCount, runID, now)
		if err != nil {
			return "", fmt.Errorf("insert cluster: %w", err)
		}

		for _, gmailID := range c.EmailIDs {
			_, err := tx.ExecContext(ctx, `INSERT INTO email_clusters (gmail_id, cluster_id)
                VALUES (?, ?);`, gmailID, c.ID)
			if err != nil {
				return "", fmt.Errorf("insert assignment: %w", err)
			}
		}
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO runs (id, email_count, cluster_count, silhouette, created_at)
        VALUES (?, ?, ?, ?, ?);`, runID, emailCount, len(clusters), silhouette, now)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit clusters: %w", err)
	}
	return runID, nil
}

// GetClustersWithEmails returns the stored clusters ordered by size
// descending, each with its unarchived member emails ordered by date
// received descending.
func (s *Store) GetClustersWithEmails(ctx context.Context) ([]ClusterRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, label, description, email_count
        FROM clusters ORDER BY email_count DESC, id ASC;`)
	if err != nil {
		return nil, fmt.Errorf("list clusters: %w", err)
	}
	defer rows.Close()

	var clusters []ClusterRecord
	for rows.Next() {
		var c ClusterRecord
		if err := rows.Scan(&c.ID, &c.Label, &c.Description, &c.EmailCount); err != nil {
			return nil, fmt.Errorf("scan cluster: %w", err)
		}
		clusters = append(clusters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list clusters: %w", err)
	}

	for i := range clusters {
		emails, err := s.clusterEmails(ctx, clusters[i].ID)
		if err != nil {
			return nil, err
		}
		clusters[i].Emails = emails
	}
	return clusters, nil
}

func (s *Store) clusterEmails(ctx context.Context, clusterID int) ([]EmailRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT e.gmail_id, e.subject, e.sender, e.body, e.date_received, e.is_archived
        FROM emails e
        JOIN email_clusters ec ON e.gmail_id = ec.gmail_id
        WHERE ec.cluster_id = ? AND e.is_archived = 0
        ORDER BY e.date_received DESC;`, clusterID)
	if err != nil {
		return nil, fmt.Errorf("list cluster emails: %w", err)
	}
	defer rows.Close()

	var emails []EmailRecord
	for rows.Next() {
		var e EmailRecord
		var dateReceived int64
		var archived int
		if err := rows.Scan(&e.GmailID, &e.Subject, &e.Sender, &e.Body, &dateReceived, &archived); err != nil {
			return nil, fmt.Errorf("scan email: %w", err)
		}
		e.DateReceived = time.Unix(dateReceived, 0)
		e.IsArchived = archived != 0
		emails = append(emails, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cluster emails: %w", err)
	}
	return emails, nil
}

// ArchiveClusterEmails marks all emails of a cluster as archived and
// returns their Gmail ids for the API-side archive calls.
func (s *Store) ArchiveClusterEmails(ctx context.Context, clusterID int) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT e.gmail_id FROM emails e
        JOIN email_clusters ec ON e.gmail_id = ec.gmail_id
        WHERE ec.cluster_id = ?;`, clusterID)
	if err != nil {
		return nil, fmt.Errorf("list cluster emails: %w", err)
	}

	var gmailIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan gmail id: %w", err)
		}
		gmailIDs = append(gmailIDs, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("list cluster emails: %w", err)
	}
	rows.Close()

	_, err = tx.ExecContext(ctx, `UPDATE emails SET is_archived = 1
        WHERE gmail_id IN (SELECT gmail_id FROM email_clusters WHERE cluster_id = ?);`, clusterID)
	if err != nil {
		return nil, fmt.Errorf("archive cluster emails: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit archive: %w", err)
	}
	return gmailIDs, nil
}

// GetStats returns aggregate counts and the most recent run summary.
func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	var stats Stats

	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1),
        COALESCE(SUM(CASE WHEN is_archived = 1 THEN 1 ELSE 0 END), 0) FROM emails;`)
	if err := row.Scan(&stats.TotalEmails, &stats.ArchivedEmails); err != nil {
		return Stats{}, fmt.Errorf("count emails: %w", err)
	}

	row = s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM clusters;`)
	if err := row.Scan(&stats.ClusterCount); err != nil {
		return Stats{}, fmt.Errorf("count clusters: %w", err)
	}

	row = s.db.QueryRowContext(ctx, `SELECT id, email_count, cluster_count, silhouette, created_at
        FROM runs ORDER BY created_at DESC, id DESC LIMIT 1;`)
	var run RunRecord
	var createdAt int64
	err := row.Scan(&run.ID, &run.EmailCount, &run.ClusterCount, &run.Silhouette, &createdAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// No runs yet.
	case err != nil:
		return Stats{}, fmt.Errorf("last run: %w", err)
	default:
		run.CreatedAt = time.Unix(createdAt, 0)
		stats.LastRun = &run
	}

	return stats, nil
}

// ClearAll removes all stored data.
func (s *Store) ClearAll(ctx context.Context) error {
	for _, table := range []string{"email_clusters", "clusters", "emails", "runs"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table+";"); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
