package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// postgresSchema creates the tag tables. Tag name uniqueness is not enforced here.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS tags (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS question_tags (
		question_id BIGINT NOT NULL,
		tag_id BIGINT NOT NULL REFERENCES tags(id) ON DELETE CASCADE
	)`,
}

// MigratePostgres applies the tag schema
func MigratePostgres(ctx context.Context, db *sqlx.DB, logger *zap.Logger) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range postgresSchema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}

	logger.Info("PostgreSQL schema applied", zap.Int("statements", len(postgresSchema)))
	return nil
}

// MigrateMongo creates the tag and question collections if they are missing
func MigrateMongo(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	for _, name := range []string{TagCollection, QuestionCollection} {
		err := db.CreateCollection(ctx, name)
		if err != nil && !isNamespaceExists(err) {
			return fmt.Errorf("failed to create collection %s: %w", name, err)
		}
		logger.Info("MongoDB collection ready", zap.String("collection", name))
	}
	return nil
}

// isNamespaceExists reports the NamespaceExists server error (code 48)
func isNamespaceExists(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code == 48
	}
	return false
}
