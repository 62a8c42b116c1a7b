package sqlite

import (
	"context"

	"github.com/talentwire/pagelink/internal/connect/domain"
	"github.com/talentwire/pagelink/internal/connect/store"
)

type pageTokensRepo struct {
	db querier
}

func (r *pageTokensRepo) CreatePageToken(ctx context.Context, t domain.PageToken) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO page_tokens (id, page_id, page_name, access_token_enc, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.PageID, t.PageName, t.AccessTokenEnc, t.CreatedAt, t.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *pageTokensRepo) GetPageTokenByPageID(
	ctx context.Context,
	pageID string,
) (domain.PageToken, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, page_id, page_name, access_token_enc, created_at, updated_at
		FROM page_tokens WHERE page_id = ?`, pageID)

	var t domain.PageToken
	err := row.Scan(&t.ID, &t.PageID, &t.PageName, &t.AccessTokenEnc, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.PageToken{}, mapNotFound(err)
	}
	return t, nil
}

func (r *pageTokensRepo) ListPageTokens(ctx context.Context) ([]domain.PageToken, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, page_id, page_name, access_token_enc, created_at, updated_at
		FROM page_tokens ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PageToken
	for rows.Next() {
		var t domain.PageToken
		if err := rows.Scan(&t.ID, &t.PageID, &t.PageName, &t.AccessTokenEnc, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *pageTokensRepo) DeletePageTokenByPageID(ctx context.Context, pageID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM page_tokens WHERE page_id = ?`, pageID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
