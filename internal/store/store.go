// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists finished runs in SQLite so shortlists can be
// listed, reopened, searched and exported after the process exits.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/talent-scout/pkg/types"
)

const (
	dbFile    = "talent-scout.db"
	exportDir = "exports"
)

// Store manages the run database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// NewStore opens or creates the run database at cfg.Dir/talent-scout.db
// and creates the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if cfg.Dir == "" {
		cfg.Dir = "runs"
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}
	s := &Store{db: db, dir: cfg.Dir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			query TEXT NOT NULL,
			rounds INTEGER NOT NULL,
			spec_json TEXT,
			plan_json TEXT,
			report TEXT,
			need_more INTEGER NOT NULL,
			followups TEXT,
			citations TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
		`CREATE TABLE IF NOT EXISTS candidates (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			rank INTEGER NOT NULL,
			name TEXT NOT NULL,
			evidence TEXT,
			card_json TEXT NOT NULL,
			UNIQUE(run_id, rank)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_candidates_run_id ON candidates(run_id)`,
		`CREATE TABLE IF NOT EXISTS visited (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			url TEXT NOT NULL,
			PRIMARY KEY (run_id, url)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='candidates_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		return nil
	}

	ftsStatements := []string{
		`CREATE VIRTUAL TABLE candidates_fts USING fts5(name, evidence, content=candidates, content_rowid=rowid)`,
		`CREATE TRIGGER candidates_ai AFTER INSERT ON candidates BEGIN
			INSERT INTO candidates_fts(rowid, name, evidence) VALUES (new.rowid, new.name, new.evidence);
		END`,
		`CREATE TRIGGER candidates_ad AFTER DELETE ON candidates BEGIN
			INSERT INTO candidates_fts(candidates_fts, rowid, name, evidence) VALUES('delete', old.rowid, old.name, old.evidence);
		END`,
		`CREATE TRIGGER candidates_au AFTER UPDATE ON candidates BEGIN
			INSERT INTO candidates_fts(candidates_fts, rowid, name, evidence) VALUES('delete', old.rowid, old.name, old.evidence);
			INSERT INTO candidates_fts(rowid, name, evidence) VALUES (new.rowid, new.name, new.evidence);
		END`,
	}
	for _, stmt := range ftsStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	return nil
}

// SaveRun stores res under its run ID. Saving the same run again replaces
// the earlier snapshot.
func (s *Store) SaveRun(ctx context.Context, res types.Result, startedAt time.Time) error {
	if res.RunID == "" {
		return ErrNoRunID
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	specJSON, _ := json.Marshal(res.Spec)
	followupsJSON, _ := json.Marshal(res.Followups)
	citationsJSON, _ := json.Marshal(res.Citations)
	var planJSON []byte
	if res.State != nil {
		planJSON, _ = json.Marshal(res.State.Plan)
	}

	for _, stmt := range []string{
		`DELETE FROM candidates WHERE run_id = ?`,
		`DELETE FROM visited WHERE run_id = ?`,
		`DELETE FROM runs WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, res.RunID); err != nil {
			return fmt.Errorf("replacing run: %w", err)
		}
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, query, rounds, spec_json, plan_json, report, need_more, followups, citations)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.RunID, startedAt.UTC().Format(time.RFC3339Nano), res.Query, res.Rounds,
		string(specJSON), string(planJSON), res.Report, res.NeedMore,
		string(followupsJSON), string(citationsJSON),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO candidates (run_id, rank, name, evidence, card_json) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing candidate insert: %w", err)
	}
	defer stmt.Close()
	for i, card := range res.Cards {
		cardJSON, err := json.Marshal(card)
		if err != nil {
			return fmt.Errorf("encoding card %s: %w", card.Name, err)
		}
		if _, err := stmt.ExecContext(ctx, res.RunID, i+1, card.Name, evidenceText(card), string(cardJSON)); err != nil {
			return fmt.Errorf("inserting candidate %s: %w", card.Name, err)
		}
	}

	if res.State != nil {
		urls := make([]string, 0, len(res.State.Visited))
		for u := range res.State.Visited {
			urls = append(urls, u)
		}
		sort.Strings(urls)
		for _, u := range urls {
			if _, err := tx.ExecContext(ctx, `INSERT INTO visited (run_id, url) VALUES (?, ?)`, res.RunID, u); err != nil {
				return fmt.Errorf("inserting visited url: %w", err)
			}
		}
	}
	return tx.Commit()
}

// evidenceText is the searchable text of a card besides its name.
func evidenceText(c types.CandidateCard) string {
	parts := []string{c.CurrentRoleAndAffiliation, strings.Join(c.ResearchFocus, ", "), c.Notable, c.EvidenceNotes}
	return strings.Join(parts, "\n")
}

// RunSummary is one row of ListRuns.
type RunSummary struct {
	ID         string    `json:"id" yaml:"id"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	Query      string    `json:"query" yaml:"query"`
	Rounds     int       `json:"rounds" yaml:"rounds"`
	Candidates int       `json:"candidate_count" yaml:"candidate_count"`
	NeedMore   bool      `json:"need_more" yaml:"need_more"`
}

// Run is a stored run with its shortlist.
type Run struct {
	RunSummary `yaml:",inline"`
	Spec       types.QuerySpec       `json:"spec" yaml:"spec"`
	Plan       types.Plan            `json:"plan" yaml:"plan"`
	Cards      []types.CandidateCard `json:"candidates" yaml:"candidates"`
	Citations  []string              `json:"citations" yaml:"citations"`
	Followups  []string              `json:"followups,omitempty" yaml:"followups,omitempty"`
	Report     string                `json:"report" yaml:"report"`
	Visited    []string              `json:"visited,omitempty" yaml:"visited,omitempty"`
}

// ListRuns returns the most recent runs first. limit ≤ 0 uses the store
// default.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = s.maxResults
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.started_at, r.query, r.rounds, r.need_more,
			(SELECT count(*) FROM candidates c WHERE c.run_id = r.id)
		FROM runs r
		ORDER BY r.started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			rs      RunSummary
			started string
		)
		if err := rows.Scan(&rs.ID, &started, &rs.Query, &rs.Rounds, &rs.NeedMore, &rs.Candidates); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		rs.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		out = append(out, rs)
	}
	return out, rows.Err()
}

// LoadRun returns the run whose ID is id or starts with id. A prefix
// shared by several runs is an error.
func (s *Store) LoadRun(ctx context.Context, id string) (Run, error) {
	fullID, err := s.resolveID(ctx, id)
	if err != nil {
		return Run{}, err
	}

	var (
		r                                            Run
		started                                      string
		specJSON, planJSON, followupsJSON, citesJSON sql.NullString
		report                                       sql.NullString
	)
	err = s.db.QueryRowContext(ctx,
		`SELECT id, started_at, query, rounds, need_more, spec_json, plan_json, report, followups, citations
		FROM runs WHERE id = ?`, fullID,
	).Scan(&r.ID, &started, &r.Query, &r.Rounds, &r.NeedMore, &specJSON, &planJSON, &report, &followupsJSON, &citesJSON)
	if err != nil {
		return Run{}, fmt.Errorf("loading run %s: %w", fullID, err)
	}
	r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
	r.Report = report.String
	unmarshal(specJSON, &r.Spec)
	unmarshal(planJSON, &r.Plan)
	unmarshal(followupsJSON, &r.Followups)
	unmarshal(citesJSON, &r.Citations)

	if r.Cards, err = s.cards(ctx, fullID); err != nil {
		return Run{}, err
	}
	r.Candidates = len(r.Cards)

	rows, err := s.db.QueryContext(ctx, `SELECT url FROM visited WHERE run_id = ? ORDER BY url`, fullID)
	if err != nil {
		return Run{}, fmt.Errorf("loading visited urls: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return Run{}, fmt.Errorf("scanning visited url: %w", err)
		}
		r.Visited = append(r.Visited, u)
	}
	return r, rows.Err()
}

func (s *Store) resolveID(ctx context.Context, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrRunNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM runs WHERE id = ? OR id LIKE ? ESCAPE '\' LIMIT 2`, id, escapeLike(id)+"%")
	if err != nil {
		return "", fmt.Errorf("looking up run: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var got string
		if err := rows.Scan(&got); err != nil {
			return "", fmt.Errorf("scanning run id: %w", err)
		}
		if got == id {
			return got, nil
		}
		ids = append(ids, got)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousRun, id)
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (s *Store) cards(ctx context.Context, runID string) ([]types.CandidateCard, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT card_json FROM candidates WHERE run_id = ? ORDER BY rank`, runID)
	if err != nil {
		return nil, fmt.Errorf("loading candidates: %w", err)
	}
	defer rows.Close()

	var out []types.CandidateCard
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning candidate: %w", err)
		}
		var c types.CandidateCard
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, fmt.Errorf("decoding candidate: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func unmarshal(v sql.NullString, out any) {
	if v.Valid && v.String != "" {
		_ = json.Unmarshal([]byte(v.String), out)
	}
}

// CandidateHit is a stored card matched by SearchCandidates.
type CandidateHit struct {
	RunID string              `json:"run_id" yaml:"run_id"`
	Query string              `json:"query" yaml:"query"`
	Rank  int                 `json:"rank" yaml:"rank"`
	Card  types.CandidateCard `json:"card" yaml:"card"`
}

// SearchCandidates runs an FTS5 query over candidate names and evidence
// across all runs, best matches first.
func (s *Store) SearchCandidates(ctx context.Context, q string, limit int) ([]CandidateHit, error) {
	if strings.TrimSpace(q) == "" {
		return nil, ErrEmptySearch
	}
	if limit <= 0 {
		limit = s.maxResults
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.run_id, r.query, c.rank, c.card_json
		FROM candidates_fts
		JOIN candidates c ON c.rowid = candidates_fts.rowid
		JOIN runs r ON r.id = c.run_id
		WHERE candidates_fts MATCH ?
		ORDER BY candidates_fts.rank
		LIMIT ?`, q, limit)
	if err != nil {
		return nil, fmt.Errorf("searching candidates: %w", err)
	}
	defer rows.Close()

	var out []CandidateHit
	for rows.Next() {
		var (
			h   CandidateHit
			raw string
		)
		if err := rows.Scan(&h.RunID, &h.Query, &h.Rank, &raw); err != nil {
			return nil, fmt.Errorf("scanning candidate hit: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &h.Card); err != nil {
			return nil, fmt.Errorf("decoding candidate: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
