// Package clients implements the faucet's public API-client registry:
// self-service registration, opaque token minting, and usage tracking
// for third-party consumers of the faucet HTTP surface.
package clients

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/suifx/faucet/internal/storage"
)

// ErrValidation is returned for malformed registration input; callers
// map it to a 400 response.
var ErrValidation = errors.New("clients: invalid registration input")

// RegistrationInput is the public, unauthenticated registration
// request body.
type RegistrationInput struct {
	Name        string
	Description string
	HomepageURL string
	CallbackURL string
}

// Registered is the one-time response to a successful registration: the
// only point at which ApiKey and ClientSecret are ever surfaced.
type Registered struct {
	ClientID     string
	APIKey       string
	ClientSecret string
}

// Registry mints tokens and manages the lifecycle of ApiClient records,
// backed by the persistence store.
type Registry struct {
	store        storage.Store
	clientPrefix string
	apiKeyPrefix string
}

// NewRegistry constructs a Registry. clientPrefix/apiKeyPrefix are
// prepended to every minted clientId/apiKey (e.g. "sfx").
func NewRegistry(store storage.Store, clientPrefix, apiKeyPrefix string) *Registry {
	return &Registry{store: store, clientPrefix: clientPrefix, apiKeyPrefix: apiKeyPrefix}
}

func validateInput(in RegistrationInput) error {
	name := strings.TrimSpace(in.Name)
	if len(name) < 1 || len(name) > 100 {
		return fmt.Errorf("%w: name must be 1-100 characters", ErrValidation)
	}
	if len(in.Description) > 500 {
		return fmt.Errorf("%w: description must be <=500 characters", ErrValidation)
	}
	if err := validateOptionalURL(in.HomepageURL); err != nil {
		return err
	}
	if err := validateOptionalURL(in.CallbackURL); err != nil {
		return err
	}
	return nil
}

func validateOptionalURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: url must be a valid http(s) URL", ErrValidation)
	}
	return nil
}

func randomHex(byteLen int) (string, error) {
	buf := make([]byte, byteLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Register validates input, mints clientId/apiKey/clientSecret, and
// persists the new client. The returned Registered value is the only
// time the apiKey and clientSecret are available.
func (r *Registry) Register(ctx context.Context, in RegistrationInput) (*Registered, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	clientIDHex, err := randomHex(16) // 32 hex chars
	if err != nil {
		return nil, err
	}
	apiKeyHex, err := randomHex(24) // 48 hex chars
	if err != nil {
		return nil, err
	}
	secretHex, err := randomHex(32) // 64 hex chars
	if err != nil {
		return nil, err
	}

	clientID := r.clientPrefix + "_" + clientIDHex
	apiKey := r.apiKeyPrefix + "_" + apiKeyHex

	client, err := r.store.CreateApiClient(ctx, storage.CreateApiClientParams{
		ClientID:     clientID,
		APIKey:       apiKey,
		ClientSecret: secretHex,
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		HomepageURL:  in.HomepageURL,
		CallbackURL:  in.CallbackURL,
	})
	if err != nil {
		return nil, err
	}

	return &Registered{ClientID: client.ClientID, APIKey: client.APIKey, ClientSecret: secretHex}, nil
}

// Get returns the stored client record, ApiKey and ClientSecret
// included; HandleGetClient picks out the public fields for responses.
func (r *Registry) Get(ctx context.Context, clientID string) (*storage.ApiClient, error) {
	return r.store.FindApiClientByID(ctx, clientID)
}

// List returns a page of registered clients.
func (r *Registry) List(ctx context.Context, limit, offset int) ([]storage.ApiClient, error) {
	return r.store.ListApiClients(ctx, limit, offset)
}

// Deactivate disables a client; its key stops authenticating requests.
func (r *Registry) Deactivate(ctx context.Context, clientID string) error {
	return r.store.DeactivateApiClient(ctx, clientID)
}

// Regenerate mints a new apiKey for clientID, invalidating the old one.
func (r *Registry) Regenerate(ctx context.Context, clientID string) (string, error) {
	apiKeyHex, err := randomHex(24)
	if err != nil {
		return "", err
	}
	newKey := r.apiKeyPrefix + "_" + apiKeyHex
	if err := r.store.RegenerateApiKey(ctx, clientID, newKey); err != nil {
		return "", err
	}
	return newKey, nil
}

// RecordUsage increments the client's usage count and last-used time.
// No per-request usage row is stored: endpoint, method, status and
// response time appear only in the log line written when that update
// fails. Failure here never fails the originating request; the
// persistence layer logs write failures itself.
func (r *Registry) RecordUsage(ctx context.Context, clientID, endpoint, method string, status int, responseTimeMs int64) {
	r.store.RecordClientUsage(ctx, clientID, endpoint, method, status, responseTimeMs)
}
