// Package sync mirrors items from connected vendors into the task store.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"helios/app/core/integrations"
	"helios/app/core/integrations/argocd"
	"helios/app/core/integrations/github"
	"helios/app/core/integrations/jira"
	"helios/app/core/orchestrator/integration"
	"helios/app/core/orchestrator/task"
	"helios/app/core/vault"
	"helios/app/pkg/logger"
)

type fetcher interface {
	Fetch(ctx context.Context) ([]integrations.Record, error)
}

type Syncer struct {
	tasks         *task.Store
	integrations  *integration.Store
	vault         *vault.Vault
	vendorTimeout time.Duration
}

func NewSyncer(tasks *task.Store, ints *integration.Store, v *vault.Vault, vendorTimeout time.Duration) *Syncer {
	return &Syncer{
		tasks:         tasks,
		integrations:  ints,
		vault:         v,
		vendorTimeout: vendorTimeout,
	}
}

// SyncAll pulls every active integration once. Per-integration failures
// flip that integration to ERROR but do not stop the pass.
func (s *Syncer) SyncAll(ctx context.Context) error {
	active, err := s.integrations.ListAllActive(ctx)
	if err != nil {
		return fmt.Errorf("listing active integrations: %w", err)
	}

	var firstErr error
	for _, in := range active {
		if err := s.syncOne(ctx, in); err != nil {
			logger.Error("sync %s (%s) failed: %v", in.Name, in.Type, err)
			if setErr := s.integrations.SetStatus(ctx, in.UserID, in.ID, integration.StatusError, err.Error()); setErr != nil {
				logger.Error("marking integration %s as errored failed: %v", in.ID, setErr)
			}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := s.integrations.MarkSynced(ctx, in.UserID, in.ID); err != nil {
			logger.Error("marking integration %s synced failed: %v", in.ID, err)
		}
	}
	return firstErr
}

func (s *Syncer) syncOne(ctx context.Context, in integration.Integration) error {
	f, ok, err := s.buildFetcher(ctx, in)
	if err != nil {
		return err
	}
	if !ok {
		// Outbound-only vendors have nothing to pull.
		return nil
	}

	records, err := f.Fetch(ctx)
	if err != nil {
		return err
	}

	upserts := 0
	for _, rec := range records {
		changed, err := s.upsert(ctx, in, rec)
		if err != nil {
			return err
		}
		if changed {
			upserts++
		}
	}
	logger.Info("synced %s (%s): %d records, %d changed", in.Name, in.Type, len(records), upserts)
	return nil
}

func (s *Syncer) buildFetcher(ctx context.Context, in integration.Integration) (fetcher, bool, error) {
	cfg := parseConfig(in.Config)
	creds, err := s.credentials(ctx, in.ID)
	if err != nil {
		return nil, false, err
	}
	switch in.Type {
	case integration.TypeGitHub:
		return github.New(cfg, creds, s.vendorTimeout), true, nil
	case integration.TypeJira:
		return jira.New(cfg, creds, s.vendorTimeout), true, nil
	case integration.TypeArgoCD:
		return argocd.New(cfg, creds, s.vendorTimeout), true, nil
	case integration.TypeSlack:
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("unknown integration type %q", in.Type)
	}
}

// upsert mirrors one vendor record. The vendor owns status and priority
// for tasks it created.
func (s *Syncer) upsert(ctx context.Context, in integration.Integration, rec integrations.Record) (bool, error) {
	if rec.ID == "" || rec.Title == "" {
		return false, nil
	}
	existing, err := s.tasks.FindBySource(ctx, in.UserID, in.Type, rec.ID)
	if errors.Is(err, task.ErrNotFound) {
		created, err := s.tasks.Create(ctx, in.UserID, task.CreateParams{
			Title:     rec.Title,
			Priority:  rec.Priority,
			Source:    in.Type,
			SourceID:  rec.ID,
			SourceURL: rec.URL,
		})
		if err != nil {
			return false, err
		}
		if rec.Status != "" && rec.Status != created.Status {
			_, err = s.tasks.Update(ctx, in.UserID, created.ID, task.UpdateParams{Status: &rec.Status})
			if err != nil {
				return false, err
			}
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}

	var p task.UpdateParams
	if existing.Status != rec.Status && rec.Status != "" {
		p.Status = &rec.Status
	}
	if existing.Priority != rec.Priority && rec.Priority != "" {
		p.Priority = &rec.Priority
	}
	if existing.Title != rec.Title {
		p.Title = &rec.Title
	}
	if p.Status == nil && p.Priority == nil && p.Title == nil {
		return false, nil
	}
	if _, err := s.tasks.Update(ctx, in.UserID, existing.ID, p); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Syncer) credentials(ctx context.Context, integrationID string) (map[string]string, error) {
	ciphertext, err := s.integrations.GetCredentials(ctx, integrationID)
	if err != nil {
		return map[string]string{}, nil
	}
	raw, err := s.vault.Decrypt(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decrypting credentials: %w", err)
	}
	creds := make(map[string]string, len(raw))
	for k, v := range raw {
		if str, ok := v.(string); ok {
			creds[k] = str
		}
	}
	return creds, nil
}

func parseConfig(configJSON string) map[string]string {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(configJSON), &raw); err != nil {
		return map[string]string{}
	}
	cfg := make(map[string]string, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case string:
			cfg[k] = t
		case bool:
			cfg[k] = fmt.Sprintf("%t", t)
		case float64:
			cfg[k] = fmt.Sprintf("%g", t)
		}
	}
	return cfg
}
