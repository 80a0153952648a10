package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"quiz-sitting/internal/domain"
	"quiz-sitting/internal/repository/models"
	"quiz-sitting/internal/util"

	"github.com/jmoiron/sqlx"
)

// ProgressDatabaseAdapter implements domain.ProgressRepository using sqlx.DB
type ProgressDatabaseAdapter struct {
	db *sqlx.DB
}

// NewProgressDatabaseAdapter creates a new instance of ProgressDatabaseAdapter
func NewProgressDatabaseAdapter(db *sqlx.DB) domain.ProgressRepository {
	return &ProgressDatabaseAdapter{db: db}
}

// GetProgressByUser implements domain.ProgressRepository
func (a *ProgressDatabaseAdapter) GetProgressByUser(ctx context.Context, userID string) (*domain.Progress, error) {
	var row models.Progress
	query := a.db.Rebind(`SELECT id "id", user_id "user_id", score "score", version "version" FROM progress WHERE user_id = ?`)
	if err := GetExecutor(ctx, a.db).GetContext(ctx, &row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get progress for user %s: %w", userID, err)
	}
	return &domain.Progress{
		ID:      row.ID,
		UserID:  row.UserID,
		Score:   row.Score.String,
		Version: row.Version,
	}, nil
}

// CreateProgress implements domain.ProgressRepository
func (a *ProgressDatabaseAdapter) CreateProgress(ctx context.Context, p *domain.Progress) error {
	exec := GetExecutor(ctx, a.db)
	id, err := nextID(ctx, a.db, exec, "progress_seq")
	if err != nil {
		return err
	}

	query := a.db.Rebind(`INSERT INTO progress (id, user_id, score, version) VALUES (?, ?, ?, ?)`)
	if _, err := exec.ExecContext(ctx, query, id, p.UserID, util.StringToNullString(p.Score), 1); err != nil {
		if isUniqueViolation(err) {
			// Another request created the row first; a retry takes the update path.
			return fmt.Errorf("progress for user %s already exists: %w", p.UserID, domain.ErrConcurrentUpdate)
		}
		return fmt.Errorf("failed to create progress for user %s: %w", p.UserID, err)
	}
	p.ID = id
	p.Version = 1
	return nil
}

// UpdateProgress implements domain.ProgressRepository
func (a *ProgressDatabaseAdapter) UpdateProgress(ctx context.Context, p *domain.Progress) error {
	query := a.db.Rebind(`UPDATE progress SET score = ?, version = version + 1 WHERE id = ? AND version = ?`)
	result, err := GetExecutor(ctx, a.db).ExecContext(ctx, query, util.StringToNullString(p.Score), p.ID, p.Version)
	if err != nil {
		return fmt.Errorf("failed to update progress %d: %w", p.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("progress %d at version %d: %w", p.ID, p.Version, domain.ErrConcurrentUpdate)
	}
	p.Version++
	return nil
}
