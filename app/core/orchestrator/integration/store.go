package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"helios/app/core/orchestrator/db"
)

// Integration statuses.
const (
	StatusPending  = "PENDING"
	StatusActive   = "ACTIVE"
	StatusError    = "ERROR"
	StatusDisabled = "DISABLED"
)

// Known integration types (vendor tags, lowercase).
const (
	TypeGitHub = "github"
	TypeJira   = "jira"
	TypeArgoCD = "argocd"
	TypeSlack  = "slack"
)

type Integration struct {
	ID           string
	UserID       string
	Type         string
	Name         string
	Status       string
	Config       string // non-secret JSON blob
	ErrorMessage string
	LastSyncAt   int64
	CreatedAt    int64
	UpdatedAt    int64
}

type Store struct {
	db *db.DB
}

func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

func NormalizeStatus(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case StatusActive:
		return StatusActive
	case StatusError:
		return StatusError
	case StatusDisabled:
		return StatusDisabled
	default:
		return StatusPending
	}
}

func (s *Store) Create(ctx context.Context, userID, vendorType, name, configJSON string) (Integration, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Integration{}, fmt.Errorf("user_id is required")
	}
	vendorType = strings.ToLower(strings.TrimSpace(vendorType))
	if vendorType == "" {
		return Integration{}, fmt.Errorf("integration type is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = vendorType
	}
	if strings.TrimSpace(configJSON) == "" {
		configJSON = "{}"
	}

	now := time.Now().Unix()
	in := Integration{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      vendorType,
		Name:      name,
		Status:    StatusPending,
		Config:    configJSON,
		CreatedAt: now,
		UpdatedAt: now,
	}
	query := `INSERT INTO integrations (id, user_id, type, name, status, config, error_message, last_sync_at, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, NULL, NULL, ?, ?)`
	if _, err := s.db.Conn().ExecContext(ctx, query, in.ID, in.UserID, in.Type, in.Name, in.Status, in.Config, in.CreatedAt, in.UpdatedAt); err != nil {
		return Integration{}, err
	}
	return in, nil
}

const integrationColumns = `id, user_id, type, name, status, COALESCE(config, '{}'),
COALESCE(error_message, ''), COALESCE(last_sync_at, 0), created_at, updated_at`

func scanIntegration(row interface{ Scan(...interface{}) error }) (Integration, error) {
	var in Integration
	err := row.Scan(
		&in.ID, &in.UserID, &in.Type, &in.Name, &in.Status, &in.Config,
		&in.ErrorMessage, &in.LastSyncAt, &in.CreatedAt, &in.UpdatedAt,
	)
	return in, err
}

func (s *Store) Get(ctx context.Context, userID, id string) (Integration, error) {
	query := `SELECT ` + integrationColumns + ` FROM integrations WHERE id = ? AND user_id = ?`
	return scanIntegration(s.db.Conn().QueryRowContext(ctx, query, id, userID))
}

func (s *Store) List(ctx context.Context, userID string) ([]Integration, error) {
	query := `SELECT ` + integrationColumns + ` FROM integrations WHERE user_id = ? ORDER BY created_at ASC`
	rows, err := s.db.Conn().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Integration
	for rows.Next() {
		in, err := scanIntegration(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, in)
	}
	return items, rows.Err()
}

// ListAllActive returns every ACTIVE integration across users, for the
// background sync loop.
func (s *Store) ListAllActive(ctx context.Context) ([]Integration, error) {
	query := `SELECT ` + integrationColumns + ` FROM integrations WHERE status = ? ORDER BY created_at ASC`
	rows, err := s.db.Conn().QueryContext(ctx, query, StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Integration
	for rows.Next() {
		in, err := scanIntegration(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, in)
	}
	return items, rows.Err()
}

// FindActiveByType returns the most recently created ACTIVE integration of
// the given vendor type, or sql.ErrNoRows.
func (s *Store) FindActiveByType(ctx context.Context, userID, vendorType string) (Integration, error) {
	query := `SELECT ` + integrationColumns + ` FROM integrations
WHERE user_id = ? AND type = ? AND status = ? ORDER BY created_at DESC LIMIT 1`
	return scanIntegration(s.db.Conn().QueryRowContext(ctx, query, userID, strings.ToLower(strings.TrimSpace(vendorType)), StatusActive))
}

func (s *Store) SetStatus(ctx context.Context, userID, id, status, errorMessage string) error {
	now := time.Now().Unix()
	query := `UPDATE integrations SET status = ?, error_message = ?, updated_at = ? WHERE id = ? AND user_id = ?`
	var errMsg interface{}
	if strings.TrimSpace(errorMessage) != "" {
		errMsg = errorMessage
	}
	res, err := s.db.Conn().ExecContext(ctx, query, NormalizeStatus(status), errMsg, now, id, userID)
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

func (s *Store) MarkSynced(ctx context.Context, userID, id string) error {
	now := time.Now().Unix()
	_, err := s.db.Conn().ExecContext(ctx,
		`UPDATE integrations SET last_sync_at = ?, updated_at = ? WHERE id = ? AND user_id = ?`, now, now, id, userID)
	return err
}

func (s *Store) Delete(ctx context.Context, userID, id string) error {
	tx, err := s.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM integration_credentials WHERE integration_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM integrations WHERE id = ? AND user_id = ?`, id, userID)
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
	return tx.Commit()
}

// PutCredentials stores the encrypted credential blob for an integration.
// Plaintext never reaches this store.
func (s *Store) PutCredentials(ctx context.Context, integrationID string, ciphertext []byte) error {
	if strings.TrimSpace(integrationID) == "" {
		return fmt.Errorf("integration_id is required")
	}
	if len(ciphertext) == 0 {
		return fmt.Errorf("ciphertext is required")
	}
	now := time.Now().Unix()
	query := `
INSERT INTO integration_credentials (integration_id, ciphertext, updated_at) VALUES (?, ?, ?)
ON CONFLICT(integration_id) DO UPDATE SET ciphertext = excluded.ciphertext, updated_at = excluded.updated_at`
	_, err := s.db.Conn().ExecContext(ctx, query, integrationID, ciphertext, now)
	return err
}

func (s *Store) GetCredentials(ctx context.Context, integrationID string) ([]byte, error) {
	var ciphertext []byte
	err := s.db.Conn().QueryRowContext(ctx,
		`SELECT ciphertext FROM integration_credentials WHERE integration_id = ?`, integrationID).Scan(&ciphertext)
	if err != nil {
		return nil, err
	}
	return ciphertext, nil
}
