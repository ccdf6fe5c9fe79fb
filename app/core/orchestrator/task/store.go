package task

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"helios/app/core/orchestrator/db"
	"helios/app/pkg/logger"
)

// ErrNotFound is returned when no task matches the given reference.
var ErrNotFound = sql.ErrNoRows

type Store struct {
	db *db.DB
}

func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

type CreateParams struct {
	Title       string
	Description string
	Priority    string
	Source      string
	SourceID    string
	SourceURL   string
	DueDate     int64
}

func (s *Store) Create(ctx context.Context, userID string, p CreateParams) (Task, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Task{}, fmt.Errorf("user_id is required")
	}
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return Task{}, fmt.Errorf("title is required")
	}

	priority, ok := NormalizePriority(p.Priority)
	if !ok && strings.TrimSpace(p.Priority) != "" {
		logger.Debug("unrecognized priority %q, defaulting to %s", p.Priority, priority)
	}
	source, ok := NormalizeSource(p.Source)
	if !ok && strings.TrimSpace(p.Source) != "" {
		logger.Debug("unrecognized source %q, defaulting to %s", p.Source, source)
	}

	now := time.Now().Unix()
	t := Task{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(p.Description),
		Status:      StatusTodo,
		Priority:    priority,
		Source:      source,
		SourceID:    p.SourceID,
		SourceURL:   p.SourceURL,
		DueDate:     p.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	query := `INSERT INTO tasks (id, user_id, title, description, status, priority, source, source_id, source_url, due_date, completed_at, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, ?, ?)`
	if _, err := s.db.Conn().ExecContext(ctx, query,
		t.ID, t.UserID, t.Title, t.Description, t.Status, t.Priority, t.Source,
		nullable(t.SourceID), nullable(t.SourceURL), nullableInt(t.DueDate), t.CreatedAt, t.UpdatedAt,
	); err != nil {
		return Task{}, err
	}
	return t, nil
}

const taskColumns = `id, user_id, title, COALESCE(description, ''), status, priority, source,
COALESCE(source_id, ''), COALESCE(source_url, ''), COALESCE(due_date, 0), COALESCE(completed_at, 0), created_at, updated_at`

func scanTask(row interface{ Scan(...interface{}) error }) (Task, error) {
	var t Task
	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.Source,
		&t.SourceID, &t.SourceURL, &t.DueDate, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (s *Store) Get(ctx context.Context, userID, taskID string) (Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ? AND user_id = ?`
	t, err := scanTask(s.db.Conn().QueryRowContext(ctx, query, taskID, userID))
	if err != nil {
		return Task{}, err
	}
	return t, nil
}

// List returns the user's tasks ordered by priority then recency, matching
// the board ordering. Status/priority filters accept any casing and are
// applied in the query, so the limit caps the filtered set. A limit of zero
// returns everything; analytics callers rely on that.
func (s *Store) List(ctx context.Context, userID string, statusFilter, priorityFilter string, limit int) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ?`
	args := []interface{}{userID}
	if strings.TrimSpace(statusFilter) != "" {
		want, _ := NormalizeStatus(statusFilter)
		query += ` AND status = ?`
		args = append(args, want)
	}
	if strings.TrimSpace(priorityFilter) != "" {
		want, _ := NormalizePriority(priorityFilter)
		query += ` AND priority = ?`
		args = append(args, want)
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := priorityRank(items[i].Priority), priorityRank(items[j].Priority)
		if ri != rj {
			return ri > rj
		}
		return items[i].CreatedAt > items[j].CreatedAt
	})
	return items, nil
}

// FindByRef resolves a loose reference: exact task ID first, then a
// case-insensitive exact title match. Titles are not unique; ties go to the
// most recently created task.
func (s *Store) FindByRef(ctx context.Context, userID, ref string) (Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Task{}, fmt.Errorf("task reference is required")
	}

	if t, err := s.Get(ctx, userID, ref); err == nil {
		return t, nil
	} else if err != sql.ErrNoRows {
		return Task{}, err
	}

	query := `SELECT ` + taskColumns + ` FROM tasks
WHERE user_id = ? AND title = ? COLLATE NOCASE
ORDER BY created_at DESC LIMIT 1`
	t, err := scanTask(s.db.Conn().QueryRowContext(ctx, query, userID, ref))
	if err != nil {
		return Task{}, err
	}
	return t, nil
}

// FindBySource locates the task mirroring a vendor item.
func (s *Store) FindBySource(ctx context.Context, userID, source, sourceID string) (Task, error) {
	if strings.TrimSpace(sourceID) == "" {
		return Task{}, fmt.Errorf("source id is required")
	}
	src, _ := NormalizeSource(source)
	query := `SELECT ` + taskColumns + ` FROM tasks
WHERE user_id = ? AND source = ? AND source_id = ?
ORDER BY created_at DESC LIMIT 1`
	t, err := scanTask(s.db.Conn().QueryRowContext(ctx, query, userID, src, sourceID))
	if err != nil {
		return Task{}, err
	}
	return t, nil
}

type UpdateParams struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *int64
}

// Update applies the non-nil fields. Setting status to DONE stamps a
// completion time; moving off DONE clears it.
func (s *Store) Update(ctx context.Context, userID, taskID string, p UpdateParams) (Task, error) {
	t, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return Task{}, err
	}

	now := time.Now().Unix()
	if p.Title != nil && strings.TrimSpace(*p.Title) != "" {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Status != nil {
		status, ok := NormalizeStatus(*p.Status)
		if !ok {
			logger.Debug("unrecognized status %q, defaulting to %s", *p.Status, status)
		}
		if status == StatusDone && t.Status != StatusDone {
			t.CompletedAt = now
		}
		if status != StatusDone {
			t.CompletedAt = 0
		}
		t.Status = status
	}
	if p.Priority != nil {
		priority, ok := NormalizePriority(*p.Priority)
		if !ok {
			logger.Debug("unrecognized priority %q, defaulting to %s", *p.Priority, priority)
		}
		t.Priority = priority
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	t.UpdatedAt = now

	query := `UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?, due_date = ?, completed_at = ?, updated_at = ?
WHERE id = ? AND user_id = ?`
	if _, err := s.db.Conn().ExecContext(ctx, query,
		t.Title, nullable(t.Description), t.Status, t.Priority, nullableInt(t.DueDate), nullableInt(t.CompletedAt), t.UpdatedAt,
		t.ID, t.UserID,
	); err != nil {
		return Task{}, err
	}
	return t, nil
}

func (s *Store) Delete(ctx context.Context, userID, taskID string) error {
	res, err := s.db.Conn().ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, taskID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) GetStats(ctx context.Context, userID string) (Stats, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `SELECT status, priority FROM tasks WHERE user_id = ?`, userID)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()

	var stats Stats
	for rows.Next() {
		var status, priority string
		if err := rows.Scan(&status, &priority); err != nil {
			return Stats{}, err
		}
		stats.Total++
		switch status {
		case StatusTodo:
			stats.Todo++
		case StatusInProgress:
			stats.InProgress++
		case StatusDone:
			stats.Done++
		case StatusBlocked:
			stats.Blocked++
		}
		if status != StatusDone {
			switch priority {
			case PriorityUrgent:
				stats.Urgent++
			case PriorityHigh:
				stats.High++
			}
		}
	}
	return stats, rows.Err()
}

func nullable(s string) interface{} {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func nullableInt(v int64) interface{} {
	if v == 0 {
		return nil
	}
	return v
}
