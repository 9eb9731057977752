package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/stackfort/oauthd/internal/oauth/domain"
	"github.com/stackfort/oauthd/internal/oauth/store"
)

type clientsRepo struct {
	db dbtx
}

const clientColumns = `id, name, secret_hash, redirect_uris, scopes, grant_types,
	confidential, active, access_token_ttl_seconds, refresh_token_ttl_seconds,
	owner_id, tenant_id, created_at, updated_at`

func (r *clientsRepo) GetClientByID(ctx context.Context, id string) (domain.Client, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = ?`, id)
	return scanClient(row)
}

func (r *clientsRepo) ListClientsByOwner(ctx context.Context, ownerID string) ([]domain.Client, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE owner_id = ? ORDER BY created_at DESC`,
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (r *clientsRepo) CreateClient(ctx context.Context, c domain.Client) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO clients (id, name, secret_hash, redirect_uris, scopes, grant_types,
			confidential, active, access_token_ttl_seconds, refresh_token_ttl_seconds,
			owner_id, tenant_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, mapStringNull(c.SecretHash),
		joinFields(c.RedirectURIs), joinFields(c.Scopes), joinGrantTypes(c.GrantTypes),
		c.Confidential, c.Active,
		int64(c.AccessTokenTTL.Seconds()), int64(c.RefreshTokenTTL.Seconds()),
		c.OwnerID, c.TenantID, now, now,
	)
	return err
}

func (r *clientsRepo) UpdateClient(ctx context.Context, c domain.Client) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE clients SET name = ?, redirect_uris = ?, scopes = ?, grant_types = ?,
			active = ?, access_token_ttl_seconds = ?, refresh_token_ttl_seconds = ?,
			updated_at = ?
		WHERE id = ?`,
		c.Name, joinFields(c.RedirectURIs), joinFields(c.Scopes), joinGrantTypes(c.GrantTypes),
		c.Active, int64(c.AccessTokenTTL.Seconds()), int64(c.RefreshTokenTTL.Seconds()),
		time.Now().UTC(), c.ID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *clientsRepo) UpdateClientSecretHash(ctx context.Context, clientID, secretHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE clients SET secret_hash = ?, updated_at = ? WHERE id = ?`,
		mapStringNull(secretHash), time.Now().UTC(), clientID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *clientsRepo) DeleteClient(ctx context.Context, clientID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, clientID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (domain.Client, error) {
	var (
		c                     domain.Client
		secretHash            sql.NullString
		redirectURIs          string
		scopes                string
		grantTypes            string
		accessTTL, refreshTTL int64
	)
	err := row.Scan(
		&c.ID, &c.Name, &secretHash, &redirectURIs, &scopes, &grantTypes,
		&c.Confidential, &c.Active, &accessTTL, &refreshTTL,
		&c.OwnerID, &c.TenantID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}

	c.SecretHash = mapNullString(secretHash)
	c.RedirectURIs = splitFields(redirectURIs)
	c.Scopes = splitFields(scopes)
	c.GrantTypes = splitGrantTypes(grantTypes)
	c.AccessTokenTTL = time.Duration(accessTTL) * time.Second
	c.RefreshTokenTTL = time.Duration(refreshTTL) * time.Second
	return c, nil
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
