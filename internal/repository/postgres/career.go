package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/careerlogy/careerlogy-ai/internal/domain"
	"github.com/careerlogy/careerlogy-ai/internal/repository"
)

type CareerRepo struct {
	db *DB
}

func NewCareerRepo(db *DB) *CareerRepo {
	return &CareerRepo{db: db}
}

func (r *CareerRepo) InsertCareer(ctx context.Context, userID, text string) error {
	query := `INSERT INTO careers (user_id, career_text) VALUES ($1, $2)`

	if _, err := r.db.Pool.Exec(ctx, query, userID, text); err != nil {
		return fmt.Errorf("insert career: %w", err)
	}
	return nil
}

func (r *CareerRepo) AddCareers(ctx context.Context, search *domain.CareerSearch) error {
	query := `
        INSERT INTO career_searches (
            user_id, qualification, personality_trait1, personality_trait2,
            career_interest1, career_interest2, options
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at
    `

	p := search.Profile
	err := r.db.Pool.QueryRow(ctx, query,
		search.UserID,
		p.Qualification,
		p.PersonalityTrait1,
		p.PersonalityTrait2,
		p.CareerInterest1,
		p.CareerInterest2,
		search.Options,
	).Scan(&search.ID, &search.CreatedAt)
	if err != nil {
		return fmt.Errorf("add careers: %w", err)
	}
	return nil
}

func (r *CareerRepo) UpdateStep(ctx context.Context, careerTitle, qualification, stepKey, text string) error {
	idx, err := domain.ParseStepKey(stepKey)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO career_steps (career_title, qualification, step_index, step_text)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (career_title, qualification, step_index)
        DO UPDATE SET step_text = EXCLUDED.step_text, updated_at = NOW()
    `

	if _, err := r.db.Pool.Exec(ctx, query, careerTitle, qualification, idx, text); err != nil {
		return fmt.Errorf("update step %s: %w", stepKey, err)
	}
	return nil
}

func (r *CareerRepo) UpdateCareerStatus(ctx context.Context, careerTitle string, status domain.CareerStatus) error {
	if !status.IsValid() {
		return domain.ErrInvalidStatus
	}

	query := `
        INSERT INTO career_status (career_title, status)
        VALUES ($1, $2)
        ON CONFLICT (career_title)
        DO UPDATE SET status = EXCLUDED.status, updated_at = NOW()
    `

	if _, err := r.db.Pool.Exec(ctx, query, careerTitle, string(status)); err != nil {
		return fmt.Errorf("update career status: %w", err)
	}
	return nil
}

func (r *CareerRepo) UpdateTokenUsage(ctx context.Context, userID string, totalTokens int) error {
	query := `
        INSERT INTO token_usage (user_id, total_tokens)
        VALUES ($1, $2)
        ON CONFLICT (user_id)
        DO UPDATE SET total_tokens = EXCLUDED.total_tokens, updated_at = NOW()
    `

	if _, err := r.db.Pool.Exec(ctx, query, userID, totalTokens); err != nil {
		return fmt.Errorf("update token usage: %w", err)
	}
	return nil
}

func (r *CareerRepo) GetSteps(ctx context.Context, careerTitle, qualification string) ([]domain.CareerStep, error) {
	query := `
        SELECT career_title, qualification, step_index, step_text, updated_at
        FROM career_steps
        WHERE career_title = $1 AND qualification = $2
        ORDER BY step_index
    `

	rows, err := r.db.Pool.Query(ctx, query, careerTitle, qualification)
	if err != nil {
		return nil, fmt.Errorf("get steps: %w", err)
	}
	defer rows.Close()

	var steps []domain.CareerStep
	for rows.Next() {
		var s domain.CareerStep
		if err := rows.Scan(&s.CareerTitle, &s.Qualification, &s.Index, &s.Text, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		steps = append(steps, s)
	}

	return steps, rows.Err()
}

func (r *CareerRepo) GetCareerStatus(ctx context.Context, careerTitle string) (domain.CareerStatus, error) {
	query := `SELECT status FROM career_status WHERE career_title = $1`

	var status string
	err := r.db.Pool.QueryRow(ctx, query, careerTitle).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("get career status: %w", err)
	}

	return domain.CareerStatus(status), nil
}

func (r *CareerRepo) GetTokenUsage(ctx context.Context, userID string) (*domain.TokenUsage, error) {
	query := `SELECT user_id, total_tokens, updated_at FROM token_usage WHERE user_id = $1`

	var usage domain.TokenUsage
	err := r.db.Pool.QueryRow(ctx, query, userID).Scan(&usage.UserID, &usage.TotalTokens, &usage.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get token usage: %w", err)
	}

	return &usage, nil
}

var _ repository.CareerRepository = (*CareerRepo)(nil)
