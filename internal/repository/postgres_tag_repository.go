package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/yourorg/qa-platform/internal/model"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// PostgresTagRepository handles tag queries against PostgreSQL
type PostgresTagRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewPostgresTagRepository creates a new PostgreSQL tag repository
func NewPostgresTagRepository(db *sqlx.DB, logger *zap.Logger) *PostgresTagRepository {
	return &PostgresTagRepository{
		db:     db,
		logger: logger,
	}
}

type tagRow struct {
	ID          int64          `db:"id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
}

type tagCountRow struct {
	Name string `db:"name"`
	QCnt int    `db:"qcnt"`
}

// FindByName retrieves a tag by its name
func (r *PostgresTagRepository) FindByName(ctx context.Context, name string) (*model.Tag, error) {
	query := `
		SELECT id, name, description
		FROM tags
		WHERE name = $1
		ORDER BY id
		LIMIT 1
	`

	var row tagRow
	err := r.db.GetContext(ctx, &row, query, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get tag by name", zap.Error(err), zap.String("name", name))
		return nil, err
	}

	tag, err := storedTag(row.Name, row.Description.String)
	if err != nil {
		r.logger.Error("Stored tag failed validation", zap.Error(err), zap.Int64("id", row.ID))
		return nil, err
	}

	return tag, nil
}

// CountQuestionsByTag counts question references per tag in a single query
func (r *PostgresTagRepository) CountQuestionsByTag(ctx context.Context) (*model.TagCountMap, error) {
	query := `
		SELECT t.name, COUNT(qt.question_id) AS qcnt
		FROM tags t
		LEFT JOIN question_tags qt ON qt.tag_id = t.id
		GROUP BY t.id, t.name
		ORDER BY t.id
	`

	var rows []tagCountRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		r.logger.Error("Failed to count questions by tag", zap.Error(err))
		return nil, err
	}

	counts := model.NewTagCountMap()
	for _, row := range rows {
		counts.Add(row.Name, row.QCnt)
	}

	return counts, nil
}
