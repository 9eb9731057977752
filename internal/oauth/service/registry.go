package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/stackfort/oauthd/internal/oauth/domain"
	"github.com/stackfort/oauthd/internal/oauth/store"
	"github.com/stackfort/oauthd/pkg/cryptox"
	"github.com/stackfort/oauthd/pkg/idx"
	"github.com/stackfort/oauthd/pkg/slogx"
)

// RegistryService owns OAuth2 client records. All management operations are
// owner-scoped: a caller can only see and mutate clients it created.
type RegistryService struct {
	Store        store.Store
	StoreTimeout time.Duration
}

// ClientSpec is the request to create a client. Confidential clients get a
// generated secret; public clients never carry one.
type ClientSpec struct {
	Name            string
	RedirectURIs    []string
	Scopes          []string
	GrantTypes      []domain.GrantType
	Confidential    bool
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// CreateClient registers a new client for the given owner and tenant. For
// confidential clients the returned plaintext secret is shown exactly once;
// only its argon2id hash is stored.
func (s *RegistryService) CreateClient(
	ctx context.Context,
	ownerID, tenantID string,
	spec ClientSpec,
) (domain.Client, string, error) {
	l := slogx.FromContext(ctx)

	if err := validateClientSpec(spec); err != nil {
		return domain.Client{}, "", err
	}

	var (
		secretHash      string
		plaintextSecret string
	)
	if spec.Confidential {
		secret, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return domain.Client{}, "", err
		}
		plaintextSecret = secret

		secretHash, err = cryptox.HashSecret(secret)
		if err != nil {
			return domain.Client{}, "", err
		}
	}

	now := time.Now().UTC()
	client := domain.Client{
		ID:              idx.New().String(),
		Name:            spec.Name,
		SecretHash:      secretHash,
		RedirectURIs:    dedupe(spec.RedirectURIs),
		Scopes:          dedupe(spec.Scopes),
		GrantTypes:      spec.GrantTypes,
		Confidential:    spec.Confidential,
		Active:          true,
		AccessTokenTTL:  spec.AccessTokenTTL,
		RefreshTokenTTL: spec.RefreshTokenTTL,
		OwnerID:         ownerID,
		TenantID:        tenantID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	sctx, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()

	if err := s.Store.Clients().CreateClient(sctx, client); err != nil {
		l.Error("failed to create client", "error", err)
		return domain.Client{}, "", mapTemporary(err)
	}

	l.Info("client created", "client_id", client.ID, "name", client.Name, "confidential", client.Confidential)
	return client, plaintextSecret, nil
}

// GetClient fetches one of the owner's clients. Existence is checked before
// ownership: an unknown id is ErrClientNotFound, someone else's client is
// ErrForbidden.
func (s *RegistryService) GetClient(ctx context.Context, ownerID, clientID string) (domain.Client, error) {
	sctx, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()

	client, err := s.Store.Clients().GetClientByID(sctx, clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Client{}, ErrClientNotFound
		}
		return domain.Client{}, mapTemporary(err)
	}
	if client.OwnerID != ownerID {
		return domain.Client{}, ErrForbidden
	}
	return client, nil
}

// ListClients returns the owner's clients, newest first.
func (s *RegistryService) ListClients(ctx context.Context, ownerID string) ([]domain.Client, error) {
	sctx, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()

	clients, err := s.Store.Clients().ListClientsByOwner(sctx, ownerID)
	if err != nil {
		return nil, mapTemporary(err)
	}
	return clients, nil
}

// UpdateClient applies a partial update to one of the owner's clients. Nil
// patch fields are left untouched; the secret hash is never patched here.
func (s *RegistryService) UpdateClient(
	ctx context.Context,
	ownerID, clientID string,
	patch domain.ClientPatch,
) (domain.Client, error) {
	l := slogx.FromContext(ctx)

	client, err := s.GetClient(ctx, ownerID, clientID)
	if err != nil {
		return domain.Client{}, err
	}

	if patch.Name != nil {
		client.Name = *patch.Name
	}
	if patch.RedirectURIs != nil {
		client.RedirectURIs = dedupe(patch.RedirectURIs)
	}
	if patch.Scopes != nil {
		client.Scopes = dedupe(patch.Scopes)
	}
	if patch.GrantTypes != nil {
		client.GrantTypes = patch.GrantTypes
	}
	if patch.Active != nil {
		client.Active = *patch.Active
	}
	if patch.AccessTokenTTL != nil {
		client.AccessTokenTTL = *patch.AccessTokenTTL
	}
	if patch.RefreshTokenTTL != nil {
		client.RefreshTokenTTL = *patch.RefreshTokenTTL
	}
	client.UpdatedAt = time.Now().UTC()

	if err := validateClientSpec(ClientSpec{
		Name:            client.Name,
		RedirectURIs:    client.RedirectURIs,
		Scopes:          client.Scopes,
		GrantTypes:      client.GrantTypes,
		Confidential:    client.Confidential,
		AccessTokenTTL:  client.AccessTokenTTL,
		RefreshTokenTTL: client.RefreshTokenTTL,
	}); err != nil {
		return domain.Client{}, err
	}

	sctx, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()

	if err := s.Store.Clients().UpdateClient(sctx, client); err != nil {
		l.Error("failed to update client", "error", err, "client_id", clientID)
		return domain.Client{}, mapTemporary(err)
	}

	l.Info("client updated", "client_id", clientID)
	return client, nil
}

// RegenerateSecret replaces a confidential client's secret in a single
// update. The old secret is invalid the instant this returns; there is no
// grace window. Public clients get ErrNotConfidential.
func (s *RegistryService) RegenerateSecret(ctx context.Context, ownerID, clientID string) (string, error) {
	l := slogx.FromContext(ctx)

	client, err := s.GetClient(ctx, ownerID, clientID)
	if err != nil {
		return "", err
	}
	if !client.Confidential {
		return "", ErrNotConfidential
	}

	secret, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", err
	}
	hash, err := cryptox.HashSecret(secret)
	if err != nil {
		return "", err
	}

	sctx, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()

	if err := s.Store.Clients().UpdateClientSecretHash(sctx, clientID, hash); err != nil {
		l.Error("failed to rotate client secret", "error", err, "client_id", clientID)
		return "", mapTemporary(err)
	}

	l.Info("client secret rotated", "client_id", clientID)
	return secret, nil
}

// DeleteClient removes one of the owner's clients. The schema cascades the
// delete to the client's codes and tokens, so nothing issued to it survives
// the call: a missing token row introspects inactive and can never be
// redeemed or refreshed.
func (s *RegistryService) DeleteClient(ctx context.Context, ownerID, clientID string) error {
	l := slogx.FromContext(ctx)

	if _, err := s.GetClient(ctx, ownerID, clientID); err != nil {
		return err
	}

	sctx, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()

	if err := s.Store.Clients().DeleteClient(sctx, clientID); err != nil {
		l.Error("failed to delete client", "error", err, "client_id", clientID)
		return mapTemporary(err)
	}

	l.Info("client deleted", "client_id", clientID)
	return nil
}

// AuthenticateClient verifies a client id + optional secret pair for the
// token endpoint. Every failure mode (unknown client, inactive client,
// confidential without a secret, public with a secret, secret mismatch)
// returns ErrInvalidClient. A dummy argon2id verification runs on the
// unknown-client path so it costs the same as a mismatch.
func (s *RegistryService) AuthenticateClient(ctx context.Context, clientID, clientSecret string) (domain.Client, error) {
	l := slogx.FromContext(ctx)

	sctx, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()

	client, err := s.Store.Clients().GetClientByID(sctx, clientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			cryptox.VerifyDummy(clientSecret)
			return domain.Client{}, ErrInvalidClient
		}
		return domain.Client{}, mapTemporary(err)
	}

	if !client.Active {
		cryptox.VerifyDummy(clientSecret)
		return domain.Client{}, ErrInvalidClient
	}

	if client.Confidential {
		if clientSecret == "" {
			cryptox.VerifyDummy(clientSecret)
			return domain.Client{}, ErrInvalidClient
		}
		if err := cryptox.VerifySecret(clientSecret, client.SecretHash); err != nil {
			l.Info("client secret verification failed", "client_id", clientID)
			return domain.Client{}, ErrInvalidClient
		}
		return client, nil
	}

	// Public client: presenting a secret at all is a misconfigured caller.
	if clientSecret != "" {
		cryptox.VerifyDummy(clientSecret)
		return domain.Client{}, ErrInvalidClient
	}
	return client, nil
}

func validateClientSpec(spec ClientSpec) error {
	var problems []string

	if spec.Name == "" {
		problems = append(problems, "name is required")
	}
	if len(spec.GrantTypes) == 0 {
		problems = append(problems, "at least one grant type is required")
	}
	for _, gt := range spec.GrantTypes {
		if !gt.Valid() {
			problems = append(problems, fmt.Sprintf("unknown grant type %q", gt))
		}
	}
	if len(spec.Scopes) == 0 {
		problems = append(problems, "at least one scope is required")
	}
	if domain.ContainsGrant(spec.GrantTypes, domain.GrantClientCredentials) && !spec.Confidential {
		problems = append(problems, "client_credentials requires a confidential client")
	}
	if domain.ContainsGrant(spec.GrantTypes, domain.GrantAuthorizationCode) && len(spec.RedirectURIs) == 0 {
		problems = append(problems, "authorization_code requires at least one redirect URI")
	}
	for _, raw := range spec.RedirectURIs {
		u, err := url.Parse(raw)
		if err != nil || !u.IsAbs() || u.Host == "" {
			problems = append(problems, fmt.Sprintf("redirect URI %q is not absolute", raw))
			continue
		}
		if u.Fragment != "" {
			problems = append(problems, fmt.Sprintf("redirect URI %q must not carry a fragment", raw))
		}
	}
	if spec.AccessTokenTTL < 0 || spec.RefreshTokenTTL < 0 {
		problems = append(problems, "token lifetimes must not be negative")
	}

	if len(problems) > 0 {
		return &ClientSpecError{Problems: problems}
	}
	return nil
}
