package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"rapbattle-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// CatalogLoader loads question-bank JSONB from Postgres.
type CatalogLoader struct {
	pool *pgxpool.Pool
}

func NewCatalogLoader(pool *pgxpool.Pool) *CatalogLoader {
	return &CatalogLoader{pool: pool}
}

func (l *CatalogLoader) LoadCatalog(ctx context.Context, bankID string) (domain.Catalog, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM question_banks WHERE id=$1`, bankID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Catalog{}, domain.ErrBankNotFound
	}
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("load question bank: %w", err)
	}
	var catalog domain.Catalog
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return domain.Catalog{}, fmt.Errorf("unmarshal question bank: %w", err)
	}
	return catalog, nil
}
