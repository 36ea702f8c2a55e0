package repository

import (
	"context"
	"database/sql"
	"fmt"

	"suggestbox/internal/domain"
)

// PostgresSuggestionsRepository 特権ゲートウェイの実装
type PostgresSuggestionsRepository struct {
	db *sql.DB
}

// NewPostgresSuggestionsRepository suggestions Repository を生成する
func NewPostgresSuggestionsRepository(db *sql.DB) *PostgresSuggestionsRepository {
	return &PostgresSuggestionsRepository{db: db}
}

// 确保实现了接口
var _ SuggestionsRepository = (*PostgresSuggestionsRepository)(nil)

// Insert 新規投稿。status は常に open で入る。
func (r *PostgresSuggestionsRepository) Insert(ctx context.Context, row NewSuggestion) error {
	query := `
		INSERT INTO suggestions (content, category, user_id, author_name, status)
		VALUES ($1, $2, $3, $4, 'open')
	`
	if _, err := r.db.ExecContext(ctx, query, row.Content, row.Category, row.UserID, row.AuthorName); err != nil {
		return fmt.Errorf("failed to insert suggestion: %w", err)
	}
	return nil
}

// ListAll 全件取得。created_at 降順、同時刻は id 降順。
func (r *PostgresSuggestionsRepository) ListAll(ctx context.Context) ([]*domain.Suggestion, error) {
	query := `
		SELECT
			id::text,
			content,
			category,
			user_id::text,
			author_name,
			status,
			admin_response,
			admin_responded_at,
			created_at
		FROM suggestions
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}
	defer rows.Close()

	var result []*domain.Suggestion
	for rows.Next() {
		var s domain.Suggestion
		var userID, authorName, adminResponse sql.NullString
		var respondedAt sql.NullTime
		if err := rows.Scan(
			&s.ID,
			&s.Content,
			&s.Category,
			&userID,
			&authorName,
			&s.Status,
			&adminResponse,
			&respondedAt,
			&s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan suggestion: %w", err)
		}
		if userID.Valid {
			s.UserID = &userID.String
		}
		if authorName.Valid {
			s.AuthorName = &authorName.String
		}
		if adminResponse.Valid {
			s.AdminResponse = &adminResponse.String
		}
		if respondedAt.Valid {
			t := respondedAt.Time
			s.AdminRespondedAt = &t
		}
		result = append(result, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate suggestions: %w", err)
	}
	return result, nil
}

// UpdateResponse 返答の三つ組を一回の UPDATE で書く
func (r *PostgresSuggestionsRepository) UpdateResponse(ctx context.Context, id string, patch ResponsePatch) error {
	if id == "" {
		return domain.ErrNotFound
	}
	query := `
		UPDATE suggestions
		SET admin_response = $2,
		    admin_responded_at = $3,
		    status = $4
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, patch.AdminResponse, patch.AdminRespondedAt, patch.Status)
	if err != nil {
		return fmt.Errorf("failed to update suggestion response: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete 行削除
func (r *PostgresSuggestionsRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM suggestions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete suggestion: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
