package repository

import (
	"context"

	"github.com/careerlogy/careerlogy-ai/internal/domain"
)

// CareerRepository - хранилище результатов генерации.
// Воркфлоу только пишет; Get* нужны внешним читателям (API прогресса).
type CareerRepository interface {
	// InsertCareer пишет CareerRecord: квалификация + "====" + варианты.
	InsertCareer(ctx context.Context, userID, text string) error
	// AddCareers пишет структурированную запись поиска (профиль + сырой ответ).
	AddCareers(ctx context.Context, search *domain.CareerSearch) error

	// UpdateStep создает или перезаписывает шаг (stepKey = step_0..step_8).
	UpdateStep(ctx context.Context, careerTitle, qualification, stepKey, text string) error
	UpdateCareerStatus(ctx context.Context, careerTitle string, status domain.CareerStatus) error

	// UpdateTokenUsage перезаписывает счетчик токенов последним значением.
	UpdateTokenUsage(ctx context.Context, userID string, totalTokens int) error

	GetSteps(ctx context.Context, careerTitle, qualification string) ([]domain.CareerStep, error)
	GetCareerStatus(ctx context.Context, careerTitle string) (domain.CareerStatus, error)
	GetTokenUsage(ctx context.Context, userID string) (*domain.TokenUsage, error)
}
