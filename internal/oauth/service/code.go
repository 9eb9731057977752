package service

import (
	"context"
	"errors"
	"time"

	"github.com/stackfort/oauthd/internal/oauth/domain"
	"github.com/stackfort/oauthd/internal/oauth/metrics"
	"github.com/stackfort/oauthd/internal/oauth/store"
	"github.com/stackfort/oauthd/pkg/cryptox"
	"github.com/stackfort/oauthd/pkg/idx"
	"github.com/stackfort/oauthd/pkg/slogx"
)

// DefaultCodeTTL is how long an authorization code stays redeemable when the
// service is not configured otherwise.
const DefaultCodeTTL = 5 * time.Minute

// CodeService issues and consumes single-use authorization codes. Codes are
// stored by SHA-256 fingerprint with the PKCE challenge they were bound to.
type CodeService struct {
	Store        store.Store
	Metrics      *metrics.Metrics
	CodeTTL      time.Duration
	StoreTimeout time.Duration
}

// IssueCodeParams binds a freshly authorized request to the subject that
// approved it.
type IssueCodeParams struct {
	ClientID            string
	RedirectURI         string
	SubjectID           string
	TenantID            string
	Scopes              []string
	CodeChallenge       string
	CodeChallengeMethod string
}

// IssueCode mints a TTL-bounded single-use code for a completed
// authorization. PKCE is mandatory for public clients; the challenge method
// is normalized (empty means S256) and anything but S256/plain is rejected
// here, at issuance, rather than at redemption.
func (s *CodeService) IssueCode(ctx context.Context, p IssueCodeParams) (string, error) {
	l := slogx.FromContext(ctx)
	now := time.Now().UTC()

	sctx, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()

	client, err := s.Store.Clients().GetClientByID(sctx, p.ClientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidClient
		}
		return "", mapTemporary(err)
	}
	if !client.Active {
		return "", ErrInvalidClient
	}
	if !client.AllowsGrant(domain.GrantAuthorizationCode) {
		return "", ErrUnauthorizedClient
	}
	if !client.HasRedirectURI(p.RedirectURI) {
		return "", ErrInvalidRequest
	}
	if len(p.Scopes) == 0 || !subsetOf(p.Scopes, client.Scopes) {
		return "", ErrInvalidScope
	}

	method := ""
	if p.CodeChallenge != "" {
		method, err = cryptox.NormalizePKCEMethod(p.CodeChallengeMethod)
		if err != nil {
			return "", ErrInvalidRequest
		}
	} else if !client.Confidential {
		// Public clients must bind a PKCE challenge.
		return "", ErrInvalidRequest
	}

	code, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", err
	}

	ttl := s.CodeTTL
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}

	record := domain.AuthorizationCode{
		ID:                  idx.New().String(),
		CodeHash:            cryptox.FingerprintToken(code),
		ClientID:            client.ID,
		RedirectURI:         p.RedirectURI,
		SubjectID:           p.SubjectID,
		TenantID:            p.TenantID,
		Scopes:              dedupe(p.Scopes),
		CodeChallenge:       p.CodeChallenge,
		CodeChallengeMethod: method,
		ExpiresAt:           now.Add(ttl),
		CreatedAt:           now,
	}

	if err := s.Store.AuthorizationCodes().CreateAuthorizationCode(sctx, record); err != nil {
		l.Error("failed to store authorization code", "error", err)
		return "", mapTemporary(err)
	}

	s.Metrics.RecordCodeIssued()
	l.Info("authorization code issued", "client_id", client.ID, "code_id", record.ID)
	return code, nil
}

// ConsumeCode atomically redeems a code for the given client and redirect
// URI. Unknown, expired, consumed, or mis-bound codes all fail with
// ErrInvalidGrant. Reuse of an already-consumed code additionally revokes
// every token minted from it.
func (s *CodeService) ConsumeCode(
	ctx context.Context,
	code, clientID, redirectURI string,
) (domain.AuthorizationCode, error) {
	sctx, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()

	var result domain.AuthorizationCode
	err := s.Store.WithTx(sctx, func(tx store.Tx) error {
		var err error
		result, err = s.consumeCodeTx(sctx, tx, code, clientID, redirectURI)
		return err
	})
	if errors.Is(err, errCodeReplayed) {
		if err := s.revokeCodeLineage(sctx, result.ID); err != nil {
			return domain.AuthorizationCode{}, mapTemporary(err)
		}
		return domain.AuthorizationCode{}, ErrInvalidGrant
	}
	if err != nil {
		return domain.AuthorizationCode{}, mapTemporary(err)
	}
	return result, nil
}

// errCodeReplayed signals that a code came back after being consumed. The
// consuming transaction rolls back on error, so the lineage revocation has
// to happen in its own transaction afterwards.
var errCodeReplayed = errors.New("authorization code replayed")

// consumeCodeTx is the transactional core of ConsumeCode, shared with the
// grant engine. On replay it returns errCodeReplayed with the record so the
// caller can commit the lineage revocation after this transaction unwinds.
func (s *CodeService) consumeCodeTx(
	ctx context.Context,
	tx store.Tx,
	code, clientID, redirectURI string,
) (domain.AuthorizationCode, error) {
	l := slogx.FromContext(ctx)
	now := time.Now().UTC()

	record, err := tx.AuthorizationCodes().GetAuthorizationCodeByHash(ctx, cryptox.FingerprintToken(code))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.AuthorizationCode{}, ErrInvalidGrant
		}
		return domain.AuthorizationCode{}, err
	}

	if record.ClientID != clientID || record.RedirectURI != redirectURI {
		return domain.AuthorizationCode{}, ErrInvalidGrant
	}
	if now.After(record.ExpiresAt) {
		return domain.AuthorizationCode{}, ErrInvalidGrant
	}
	if record.UsedAt != nil {
		return record, errCodeReplayed
	}

	consumed, err := tx.AuthorizationCodes().ConsumeAuthorizationCode(ctx, record.ID)
	if err != nil {
		return domain.AuthorizationCode{}, err
	}
	if !consumed {
		// A concurrent consumer won the test-and-set.
		l.Warn("authorization code consumed twice", "code_id", record.ID, "client_id", clientID)
		return record, errCodeReplayed
	}

	used := now
	record.UsedAt = &used
	return record, nil
}

// revokeCodeLineage revokes every token minted from a replayed code. It
// runs its own transaction so the revocation commits even though the
// replayed exchange itself fails.
func (s *CodeService) revokeCodeLineage(ctx context.Context, codeID string) error {
	l := slogx.FromContext(ctx)

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.AccessTokens().RevokeAccessTokensByCodeID(ctx, codeID); err != nil {
			return err
		}
		return tx.RefreshTokens().RevokeRefreshTokensByCodeID(ctx, codeID)
	})
	if err != nil {
		return err
	}
	l.Warn("authorization code replay detected, lineage revoked", "code_id", codeID)
	return nil
}

// DeleteExpired removes codes past their TTL. Called by housekeeping.
func (s *CodeService) DeleteExpired(ctx context.Context) error {
	sctx, cancel := storeCtx(ctx, s.StoreTimeout)
	defer cancel()
	return mapTemporary(s.Store.AuthorizationCodes().DeleteExpiredAuthorizationCodes(sctx))
}
