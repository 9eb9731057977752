package sqlite

import (
	"context"
	"time"

	"github.com/stackfort/oauthd/internal/oauth/domain"
)

type accessTokensRepo struct {
	db dbtx
}

func (r *accessTokensRepo) CreateAccessToken(ctx context.Context, t domain.AccessToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO access_tokens (id, token_hash, client_id, subject_id, tenant_id,
			scopes, grant_type, grant_id, code_id, issued_at, expires_at, revoked)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		t.ID, t.TokenHash, t.ClientID, t.SubjectID, t.TenantID,
		joinFields(t.Scopes), string(t.GrantType), t.GrantID, t.CodeID,
		t.IssuedAt.UTC(), t.ExpiresAt.UTC(),
	)
	return err
}

func (r *accessTokensRepo) GetAccessTokenByHash(ctx context.Context, hash string) (domain.AccessToken, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, token_hash, client_id, subject_id, tenant_id, scopes,
			grant_type, grant_id, code_id, issued_at, expires_at, revoked
		FROM access_tokens WHERE token_hash = ?`, hash)

	var (
		t         domain.AccessToken
		scopes    string
		grantType string
	)
	err := row.Scan(
		&t.ID, &t.TokenHash, &t.ClientID, &t.SubjectID, &t.TenantID, &scopes,
		&grantType, &t.GrantID, &t.CodeID, &t.IssuedAt, &t.ExpiresAt, &t.Revoked,
	)
	if err != nil {
		return domain.AccessToken{}, mapNotFound(err)
	}

	t.Scopes = splitFields(scopes)
	t.GrantType = domain.GrantType(grantType)
	return t, nil
}

func (r *accessTokensRepo) RevokeAccessToken(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE access_tokens SET revoked = 1 WHERE id = ? AND revoked = 0`, id)
	return err
}

func (r *accessTokensRepo) RevokeAccessTokensByGrantID(ctx context.Context, grantID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE access_tokens SET revoked = 1 WHERE grant_id = ? AND revoked = 0`, grantID)
	return err
}

func (r *accessTokensRepo) RevokeAccessTokensByCodeID(ctx context.Context, codeID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE access_tokens SET revoked = 1 WHERE code_id = ? AND revoked = 0`, codeID)
	return err
}

func (r *accessTokensRepo) DeleteExpiredAccessTokens(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM access_tokens WHERE expires_at < ?`, time.Now().UTC())
	return err
}
