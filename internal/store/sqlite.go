package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/RaffaelSchaefer/gc25-sub000/pkg/models"
)

// SQLiteStore implements the Store interface using sqlite.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT '',
	url TEXT NOT NULL DEFAULT '',
	start_date TIMESTAMP NOT NULL,
	end_date TIMESTAMP NOT NULL,
	created_by_id TEXT NOT NULL,
	category TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS participants (
	event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
	user_id TEXT NOT NULL,
	joined_at TIMESTAMP NOT NULL,
	PRIMARY KEY (event_id, user_id)
);
CREATE TABLE IF NOT EXISTS goodies (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT '',
	created_by_id TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS goodie_votes (
	goodie_id TEXT NOT NULL REFERENCES goodies(id) ON DELETE CASCADE,
	user_id TEXT NOT NULL,
	value INTEGER NOT NULL,
	voted_at TIMESTAMP NOT NULL,
	PRIMARY KEY (goodie_id, user_id)
);
CREATE TABLE IF NOT EXISTS goodie_collections (
	goodie_id TEXT NOT NULL REFERENCES goodies(id) ON DELETE CASCADE,
	user_id TEXT NOT NULL,
	collected_at TIMESTAMP NOT NULL,
	PRIMARY KEY (goodie_id, user_id)
);
CREATE TABLE IF NOT EXISTS comments (
	id TEXT PRIMARY KEY,
	event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
	author_id TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_comments_event ON comments(event_id);
CREATE INDEX IF NOT EXISTS idx_events_category ON events(category);
`

// NewSQLiteStore opens (and migrates) a sqlite-backed planner store at the
// given path. Use ":memory:" for an ephemeral database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY on concurrent transactions.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// DB exposes the underlying database connection.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) CreateEvent(ctx context.Context, event *models.Event) error {
	if event == nil {
		return errors.New("event is required")
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	event.UpdatedAt = event.CreatedAt
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, title, description, location, url, start_date, end_date, created_by_id, category, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.Title, event.Description, event.Location, event.URL,
		event.StartDate, event.EndDate, event.CreatedByID, string(event.Category),
		event.CreatedAt, event.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func scanEvent(row interface{ Scan(...any) error }) (*models.Event, error) {
	var event models.Event
	var category string
	err := row.Scan(&event.ID, &event.Title, &event.Description, &event.Location,
		&event.URL, &event.StartDate, &event.EndDate, &event.CreatedByID,
		&category, &event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return nil, err
	}
	event.Category = models.EventCategory(category)
	return &event, nil
}

const eventColumns = "id, title, description, location, url, start_date, end_date, created_by_id, category, created_at, updated_at"

func (s *SQLiteStore) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+eventColumns+" FROM events WHERE id = ?", id)
	event, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *SQLiteStore) UpdateEvent(ctx context.Context, event *models.Event) error {
	if event == nil {
		return errors.New("event is required")
	}
	event.UpdatedAt = time.Now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE events SET title = ?, description = ?, location = ?, url = ?,
			start_date = ?, end_date = ?, category = ?, updated_at = ?
		WHERE id = ?`,
		event.Title, event.Description, event.Location, event.URL,
		event.StartDate, event.EndDate, string(event.Category), event.UpdatedAt, event.ID)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return requireRow(res)
}

func (s *SQLiteStore) DeleteEvent(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return requireRow(res)
}

func (s *SQLiteStore) ListEvents(ctx context.Context, filter EventFilter) ([]*models.Event, error) {
	query := strings.Builder{}
	query.WriteString("SELECT DISTINCT e.id, e.title, e.description, e.location, e.url, e.start_date, e.end_date, e.created_by_id, e.category, e.created_at, e.updated_at FROM events e")
	args := []any{}
	where := []string{}

	if filter.JoinedByID != "" {
		query.WriteString(" JOIN participants p ON p.event_id = e.id AND p.user_id = ?")
		args = append(args, filter.JoinedByID)
	}
	if filter.Category != "" {
		where = append(where, "e.category = ?")
		args = append(args, string(filter.Category))
	}
	if !filter.From.IsZero() {
		where = append(where, "e.end_date >= ?")
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		where = append(where, "e.start_date <= ?")
		args = append(args, filter.To)
	}
	if filter.CreatedByID != "" {
		where = append(where, "e.created_by_id = ?")
		args = append(args, filter.CreatedByID)
	}
	if filter.Search != "" {
		where = append(where, "(e.title LIKE ? OR e.description LIKE ? OR e.location LIKE ?)")
		needle := "%" + filter.Search + "%"
		args = append(args, needle, needle, needle)
	}
	if len(where) > 0 {
		query.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	query.WriteString(" ORDER BY e.created_at, e.id")
	if filter.Limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	out := []*models.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, event)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) JoinEvent(ctx context.Context, eventID, userID string) (int, error) {
	return s.participantWrite(ctx, eventID, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO participants (event_id, user_id, joined_at) VALUES (?, ?, ?)
			ON CONFLICT (event_id, user_id) DO NOTHING`,
			eventID, userID, time.Now())
		return err
	})
}

func (s *SQLiteStore) LeaveEvent(ctx context.Context, eventID, userID string) (int, error) {
	return s.participantWrite(ctx, eventID, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "DELETE FROM participants WHERE event_id = ? AND user_id = ?", eventID, userID)
		return err
	})
}

// participantWrite applies a participant mutation and re-reads the attendee
// count inside one transaction.
func (s *SQLiteStore) participantWrite(ctx context.Context, eventID string, write func(*sql.Tx) error) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM events WHERE id = ?", eventID).Scan(&exists); err != nil {
		return 0, fmt.Errorf("check event: %w", err)
	}
	if exists == 0 {
		return 0, ErrNotFound
	}
	if err := write(tx); err != nil {
		return 0, fmt.Errorf("write participant: %w", err)
	}
	var attendees int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM participants WHERE event_id = ?", eventID).Scan(&attendees); err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return attendees, nil
}

func (s *SQLiteStore) CountParticipants(ctx context.Context, eventID string) (int, error) {
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return 0, err
	}
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM participants WHERE event_id = ?", eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) ListParticipants(ctx context.Context, eventID string, limit int) ([]*models.Participant, error) {
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	query := "SELECT event_id, user_id, joined_at FROM participants WHERE event_id = ? ORDER BY joined_at, user_id"
	args := []any{eventID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	out := []*models.Participant{}
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.EventID, &p.UserID, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) HasJoined(ctx context.Context, eventID, userID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM participants WHERE event_id = ? AND user_id = ?", eventID, userID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check participant: %w", err)
	}
	return count > 0, nil
}

func (s *SQLiteStore) CreateGoodie(ctx context.Context, goodie *models.Goodie) error {
	if goodie == nil {
		return errors.New("goodie is required")
	}
	if goodie.ID == "" {
		goodie.ID = uuid.NewString()
	}
	if goodie.CreatedAt.IsZero() {
		goodie.CreatedAt = time.Now()
	}
	goodie.UpdatedAt = goodie.CreatedAt
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO goodies (id, name, description, location, created_by_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		goodie.ID, goodie.Name, goodie.Description, goodie.Location,
		goodie.CreatedByID, goodie.CreatedAt, goodie.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert goodie: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetGoodie(ctx context.Context, id string) (*models.Goodie, error) {
	var goodie models.Goodie
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, location, created_by_id, created_at, updated_at
		FROM goodies WHERE id = ?`, id).
		Scan(&goodie.ID, &goodie.Name, &goodie.Description, &goodie.Location,
			&goodie.CreatedByID, &goodie.CreatedAt, &goodie.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get goodie: %w", err)
	}
	return &goodie, nil
}

func (s *SQLiteStore) UpdateGoodie(ctx context.Context, goodie *models.Goodie) error {
	if goodie == nil {
		return errors.New("goodie is required")
	}
	goodie.UpdatedAt = time.Now()
	res, err := s.db.ExecContext(ctx, `
		UPDATE goodies SET name = ?, description = ?, location = ?, updated_at = ?
		WHERE id = ?`,
		goodie.Name, goodie.Description, goodie.Location, goodie.UpdatedAt, goodie.ID)
	if err != nil {
		return fmt.Errorf("update goodie: %w", err)
	}
	return requireRow(res)
}

func (s *SQLiteStore) DeleteGoodie(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM goodies WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete goodie: %w", err)
	}
	return requireRow(res)
}

func (s *SQLiteStore) ListGoodies(ctx context.Context, search string, limit int) ([]*models.Goodie, error) {
	query := strings.Builder{}
	query.WriteString("SELECT id, name, description, location, created_by_id, created_at, updated_at FROM goodies")
	args := []any{}
	if search != "" {
		query.WriteString(" WHERE name LIKE ? OR description LIKE ? OR location LIKE ?")
		needle := "%" + search + "%"
		args = append(args, needle, needle, needle)
	}
	query.WriteString(" ORDER BY created_at, id")
	if limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list goodies: %w", err)
	}
	defer rows.Close()

	out := []*models.Goodie{}
	for rows.Next() {
		var goodie models.Goodie
		if err := rows.Scan(&goodie.ID, &goodie.Name, &goodie.Description, &goodie.Location,
			&goodie.CreatedByID, &goodie.CreatedAt, &goodie.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan goodie: %w", err)
		}
		out = append(out, &goodie)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpsertVote(ctx context.Context, goodieID, userID string, value int) (int, error) {
	if value != 1 && value != -1 {
		return 0, errors.New("vote value must be 1 or -1")
	}
	return s.voteWrite(ctx, goodieID, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO goodie_votes (goodie_id, user_id, value, voted_at) VALUES (?, ?, ?, ?)
			ON CONFLICT (goodie_id, user_id) DO UPDATE SET value = excluded.value, voted_at = excluded.voted_at`,
			goodieID, userID, value, time.Now())
		return err
	})
}

func (s *SQLiteStore) ClearVote(ctx context.Context, goodieID, userID string) (int, error) {
	return s.voteWrite(ctx, goodieID, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "DELETE FROM goodie_votes WHERE goodie_id = ? AND user_id = ?", goodieID, userID)
		return err
	})
}

// voteWrite applies a vote mutation and recomputes the aggregate sum with a
// fresh query inside the same transaction. Concurrent readers observe
// either the pre- or post-write aggregate, never a partial one.
func (s *SQLiteStore) voteWrite(ctx context.Context, goodieID string, write func(*sql.Tx) error) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM goodies WHERE id = ?", goodieID).Scan(&exists); err != nil {
		return 0, fmt.Errorf("check goodie: %w", err)
	}
	if exists == 0 {
		return 0, ErrNotFound
	}
	if err := write(tx); err != nil {
		return 0, fmt.Errorf("write vote: %w", err)
	}
	var sum int
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(SUM(value), 0) FROM goodie_votes WHERE goodie_id = ?", goodieID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum votes: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return sum, nil
}

func (s *SQLiteStore) GetUserVote(ctx context.Context, goodieID, userID string) (int, error) {
	var value int
	err := s.db.QueryRowContext(ctx, "SELECT value FROM goodie_votes WHERE goodie_id = ? AND user_id = ?", goodieID, userID).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get vote: %w", err)
	}
	return value, nil
}

func (s *SQLiteStore) ToggleCollection(ctx context.Context, goodieID, userID string) (bool, int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM goodies WHERE id = ?", goodieID).Scan(&exists); err != nil {
		return false, 0, fmt.Errorf("check goodie: %w", err)
	}
	if exists == 0 {
		return false, 0, ErrNotFound
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM goodie_collections WHERE goodie_id = ? AND user_id = ?", goodieID, userID)
	if err != nil {
		return false, 0, fmt.Errorf("delete collection: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return false, 0, fmt.Errorf("rows affected: %w", err)
	}
	collected := deleted == 0
	if collected {
		_, err = tx.ExecContext(ctx, "INSERT INTO goodie_collections (goodie_id, user_id, collected_at) VALUES (?, ?, ?)",
			goodieID, userID, time.Now())
		if err != nil {
			return false, 0, fmt.Errorf("insert collection: %w", err)
		}
	}

	var collectors int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM goodie_collections WHERE goodie_id = ?", goodieID).Scan(&collectors); err != nil {
		return false, 0, fmt.Errorf("count collectors: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, 0, fmt.Errorf("commit: %w", err)
	}
	return collected, collectors, nil
}

func (s *SQLiteStore) HasCollected(ctx context.Context, goodieID, userID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM goodie_collections WHERE goodie_id = ? AND user_id = ?", goodieID, userID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check collection: %w", err)
	}
	return count > 0, nil
}

func (s *SQLiteStore) ListCollectedGoodies(ctx context.Context, userID string) ([]*models.Goodie, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.id, g.name, g.description, g.location, g.created_by_id, g.created_at, g.updated_at
		FROM goodies g JOIN goodie_collections c ON c.goodie_id = g.id
		WHERE c.user_id = ? ORDER BY g.created_at, g.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list collected: %w", err)
	}
	defer rows.Close()

	out := []*models.Goodie{}
	for rows.Next() {
		var goodie models.Goodie
		if err := rows.Scan(&goodie.ID, &goodie.Name, &goodie.Description, &goodie.Location,
			&goodie.CreatedByID, &goodie.CreatedAt, &goodie.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan goodie: %w", err)
		}
		out = append(out, &goodie)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GoodieAggregates(ctx context.Context, goodieID string) (GoodieAggregates, error) {
	if _, err := s.GetGoodie(ctx, goodieID); err != nil {
		return GoodieAggregates{}, err
	}
	var agg GoodieAggregates
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE((SELECT SUM(value) FROM goodie_votes WHERE goodie_id = ?), 0),
			(SELECT COUNT(1) FROM goodie_collections WHERE goodie_id = ?)`,
		goodieID, goodieID).Scan(&agg.VoteSum, &agg.Collectors)
	if err != nil {
		return GoodieAggregates{}, fmt.Errorf("goodie aggregates: %w", err)
	}
	return agg, nil
}

func (s *SQLiteStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	if comment == nil {
		return errors.New("comment is required")
	}
	if _, err := s.GetEvent(ctx, comment.EventID); err != nil {
		return err
	}
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	comment.UpdatedAt = comment.CreatedAt
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (id, event_id, author_id, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		comment.ID, comment.EventID, comment.AuthorID, comment.Content,
		comment.CreatedAt, comment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	err := s.db.QueryRowContext(ctx, `
		SELECT id, event_id, author_id, content, created_at, updated_at
		FROM comments WHERE id = ?`, id).
		Scan(&comment.ID, &comment.EventID, &comment.AuthorID, &comment.Content,
			&comment.CreatedAt, &comment.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &comment, nil
}

func (s *SQLiteStore) UpdateComment(ctx context.Context, comment *models.Comment) error {
	if comment == nil {
		return errors.New("comment is required")
	}
	comment.UpdatedAt = time.Now()
	res, err := s.db.ExecContext(ctx, "UPDATE comments SET content = ?, updated_at = ? WHERE id = ?",
		comment.Content, comment.UpdatedAt, comment.ID)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	return requireRow(res)
}

func (s *SQLiteStore) DeleteComment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM comments WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return requireRow(res)
}

func (s *SQLiteStore) ListComments(ctx context.Context, eventID string, limit int) ([]*models.Comment, error) {
	query := "SELECT id, event_id, author_id, content, created_at, updated_at FROM comments WHERE event_id = ? ORDER BY created_at, id"
	args := []any{eventID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	out := []*models.Comment{}
	for rows.Next() {
		var comment models.Comment
		if err := rows.Scan(&comment.ID, &comment.EventID, &comment.AuthorID,
			&comment.Content, &comment.CreatedAt, &comment.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, &comment)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(1) FROM events),
			(SELECT COUNT(1) FROM participants),
			(SELECT COUNT(1) FROM goodies),
			(SELECT COUNT(1) FROM goodie_votes),
			(SELECT COUNT(1) FROM goodie_collections),
			(SELECT COUNT(1) FROM comments)`).
		Scan(&stats.Events, &stats.Participants, &stats.Goodies,
			&stats.Votes, &stats.Collections, &stats.Comments)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	return stats, nil
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
