package actions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"helios/app/core/integrations/argocd"
	"helios/app/core/integrations/github"
	"helios/app/core/integrations/jira"
	"helios/app/core/integrations/slack"
	"helios/app/core/orchestrator/integration"
)

// Credential keys per vendor. Everything else in the key=value args is
// non-secret config.
var secretKeys = map[string]map[string]bool{
	integration.TypeGitHub: {"token": true},
	integration.TypeJira:   {"email": true, "api_token": true},
	integration.TypeArgoCD: {"token": true},
	integration.TypeSlack:  {"bot_token": true},
}

// SetupIntegration creates an integration, stores its credentials
// encrypted, and verifies connectivity. The integration ends up ACTIVE
// or ERROR depending on the connection test.
func (r *Registry) SetupIntegration(ctx context.Context, userID, vendorType, name string, kv map[string]string) Result {
	vendorType = strings.ToLower(strings.TrimSpace(vendorType))
	secrets, known := secretKeys[vendorType]
	if !known {
		return failure("Unknown integration type '%s'. Supported: github, jira, argocd, slack", vendorType)
	}

	cfg := map[string]string{}
	creds := map[string]interface{}{}
	for k, v := range kv {
		if secrets[k] {
			creds[k] = v
		} else {
			cfg[k] = v
		}
	}

	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return failure("Couldn't encode integration config: %v", err)
	}
	in, err := r.integrations.Create(ctx, userID, vendorType, name, string(configJSON))
	if err != nil {
		return failure("Couldn't create the integration: %v", err)
	}

	if len(creds) > 0 {
		ciphertext, err := r.vault.Encrypt(creds)
		if err != nil {
			return failure("Couldn't encrypt credentials: %v", err)
		}
		if err := r.integrations.PutCredentials(ctx, in.ID, ciphertext); err != nil {
			return failure("Couldn't store credentials: %v", err)
		}
	}

	ok, detail := r.testConnection(ctx, in)
	if !ok {
		_ = r.integrations.SetStatus(ctx, userID, in.ID, integration.StatusError, detail)
		return failure("Created %s integration '%s' but the connection test failed: %s", vendorType, in.Name, detail)
	}
	if err := r.integrations.SetStatus(ctx, userID, in.ID, integration.StatusActive, ""); err != nil {
		return failure("Connection verified but couldn't activate the integration: %v", err)
	}
	return success("🔌 Connected %s integration '%s'. %s", vendorType, in.Name, detail)
}

// TestIntegration re-runs the connection check for an existing
// integration and updates its status.
func (r *Registry) TestIntegration(ctx context.Context, userID, ref string) Result {
	in, err := r.findIntegration(ctx, userID, ref)
	if errors.Is(err, sql.ErrNoRows) {
		return failure("I couldn't find an integration matching '%s'.", ref)
	}
	if err != nil {
		return failure("Couldn't look up the integration: %v", err)
	}

	ok, detail := r.testConnection(ctx, in)
	if !ok {
		_ = r.integrations.SetStatus(ctx, userID, in.ID, integration.StatusError, detail)
		return failure("Connection test for '%s' failed: %s", in.Name, detail)
	}
	if err := r.integrations.SetStatus(ctx, userID, in.ID, integration.StatusActive, ""); err != nil {
		return failure("Connection verified but couldn't update status: %v", err)
	}
	return success("✅ '%s' is connected. %s", in.Name, detail)
}

// RemoveIntegration deletes an integration and its stored credentials.
func (r *Registry) RemoveIntegration(ctx context.Context, userID, ref string) Result {
	in, err := r.findIntegration(ctx, userID, ref)
	if errors.Is(err, sql.ErrNoRows) {
		return failure("I couldn't find an integration matching '%s'.", ref)
	}
	if err != nil {
		return failure("Couldn't look up the integration: %v", err)
	}
	if err := r.integrations.Delete(ctx, userID, in.ID); err != nil {
		return failure("Couldn't remove '%s': %v", in.Name, err)
	}
	return success("🗑️ Removed integration '%s'", in.Name)
}

func (r *Registry) findIntegration(ctx context.Context, userID, ref string) (integration.Integration, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return integration.Integration{}, fmt.Errorf("integration reference is required")
	}
	if in, err := r.integrations.Get(ctx, userID, ref); err == nil {
		return in, nil
	} else if err != sql.ErrNoRows {
		return integration.Integration{}, err
	}

	all, err := r.integrations.List(ctx, userID)
	if err != nil {
		return integration.Integration{}, err
	}
	for _, in := range all {
		if strings.EqualFold(in.Name, ref) || strings.EqualFold(in.Type, ref) {
			return in, nil
		}
	}
	return integration.Integration{}, sql.ErrNoRows
}

func (r *Registry) testConnection(ctx context.Context, in integration.Integration) (bool, string) {
	cfg := parseConfig(in.Config)
	creds := r.decryptCredentials(ctx, in.ID)
	switch in.Type {
	case integration.TypeGitHub:
		return github.New(cfg, creds, r.vendorTimeout).TestConnection(ctx)
	case integration.TypeJira:
		return jira.New(cfg, creds, r.vendorTimeout).TestConnection(ctx)
	case integration.TypeArgoCD:
		return argocd.New(cfg, creds, r.vendorTimeout).TestConnection(ctx)
	case integration.TypeSlack:
		return slack.New(cfg, creds, r.vendorTimeout).TestConnection(ctx)
	default:
		return false, fmt.Sprintf("unknown integration type %q", in.Type)
	}
}
