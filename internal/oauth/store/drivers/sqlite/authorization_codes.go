package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/stackfort/oauthd/internal/oauth/domain"
)

type authorizationCodesRepo struct {
	db dbtx
}

func (r *authorizationCodesRepo) CreateAuthorizationCode(ctx context.Context, code domain.AuthorizationCode) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO authorization_codes (id, code_hash, client_id, redirect_uri,
			subject_id, tenant_id, scopes, code_challenge, code_challenge_method,
			expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		code.ID, code.CodeHash, code.ClientID, code.RedirectURI,
		code.SubjectID, code.TenantID, joinFields(code.Scopes),
		code.CodeChallenge, code.CodeChallengeMethod,
		code.ExpiresAt.UTC(), time.Now().UTC(),
	)
	return err
}

func (r *authorizationCodesRepo) GetAuthorizationCodeByHash(ctx context.Context, hash string) (domain.AuthorizationCode, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, code_hash, client_id, redirect_uri, subject_id, tenant_id,
			scopes, code_challenge, code_challenge_method, expires_at, used_at, created_at
		FROM authorization_codes WHERE code_hash = ?`, hash)

	var (
		c      domain.AuthorizationCode
		scopes string
		usedAt sql.NullTime
	)
	err := row.Scan(
		&c.ID, &c.CodeHash, &c.ClientID, &c.RedirectURI, &c.SubjectID, &c.TenantID,
		&scopes, &c.CodeChallenge, &c.CodeChallengeMethod, &c.ExpiresAt, &usedAt, &c.CreatedAt,
	)
	if err != nil {
		return domain.AuthorizationCode{}, mapNotFound(err)
	}

	c.Scopes = splitFields(scopes)
	c.UsedAt = mapNullTimePtr(usedAt)
	return c, nil
}

// ConsumeAuthorizationCode is the test-and-set primitive the grant engine
// relies on: the conditional UPDATE succeeds for exactly one of any number
// of racing consumers.
func (r *authorizationCodesRepo) ConsumeAuthorizationCode(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE authorization_codes SET used_at = ? WHERE id = ? AND used_at IS NULL`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *authorizationCodesRepo) DeleteExpiredAuthorizationCodes(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM authorization_codes WHERE expires_at < ?`, time.Now().UTC())
	return err
}
