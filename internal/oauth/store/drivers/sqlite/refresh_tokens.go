package sqlite

import (
	"context"
	"time"

	"github.com/stackfort/oauthd/internal/oauth/domain"
)

type refreshTokensRepo struct {
	db dbtx
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO refresh_tokens (id, token_hash, client_id, subject_id, tenant_id,
			scopes, grant_id, code_id, rotated_from, issued_at, expires_at, revoked)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		t.ID, t.TokenHash, t.ClientID, t.SubjectID, t.TenantID,
		joinFields(t.Scopes), t.GrantID, t.CodeID, t.RotatedFrom,
		t.IssuedAt.UTC(), t.ExpiresAt.UTC(),
	)
	return err
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, token_hash, client_id, subject_id, tenant_id, scopes,
			grant_id, code_id, rotated_from, issued_at, expires_at, revoked
		FROM refresh_tokens WHERE token_hash = ?`, hash)
	return scanRefreshToken(row)
}

// RevokeRefreshToken succeeds for exactly one caller; a false return means
// the token was already revoked, which the grant engine treats as a
// double-spend signal.
func (r *refreshTokensRepo) RevokeRefreshToken(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = 1 WHERE id = ? AND revoked = 0`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *refreshTokensRepo) GetRefreshSuccessor(ctx context.Context, id string) (domain.RefreshToken, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, token_hash, client_id, subject_id, tenant_id, scopes,
			grant_id, code_id, rotated_from, issued_at, expires_at, revoked
		FROM refresh_tokens WHERE rotated_from = ?`, id)
	return scanRefreshToken(row)
}

func (r *refreshTokensRepo) RevokeRefreshTokensByCodeID(ctx context.Context, codeID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = 1 WHERE code_id = ? AND revoked = 0`, codeID)
	return err
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < ?`, time.Now().UTC())
	return err
}

func scanRefreshToken(row rowScanner) (domain.RefreshToken, error) {
	var (
		t      domain.RefreshToken
		scopes string
	)
	err := row.Scan(
		&t.ID, &t.TokenHash, &t.ClientID, &t.SubjectID, &t.TenantID, &scopes,
		&t.GrantID, &t.CodeID, &t.RotatedFrom, &t.IssuedAt, &t.ExpiresAt, &t.Revoked,
	)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}

	t.Scopes = splitFields(scopes)
	return t, nil
}
