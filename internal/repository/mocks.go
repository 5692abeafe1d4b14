package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/careerlogy/careerlogy-ai/internal/domain"
)

const (
	OpInsertCareer       = "InsertCareer"
	OpAddCareers         = "AddCareers"
	OpUpdateStep         = "UpdateStep"
	OpUpdateCareerStatus = "UpdateCareerStatus"
	OpUpdateTokenUsage   = "UpdateTokenUsage"
)

// Call - запись об одном вызове на запись, в порядке поступления.
type Call struct {
	Op   string
	Args []string
}

type stepKey struct {
	title, qualification string
	index                int
}

// MockCareerRepository - in-memory реализация с журналом вызовов
// и инъекцией ошибок по операции (Errors), по ключу шага (StepErrors)
// или по записываемому статусу (StatusErrors). Запись с отмененным ctx
// отклоняется, как в pgx.
type MockCareerRepository struct {
	mu sync.RWMutex

	careers  []domain.CareerRecord
	searches []domain.CareerSearch
	steps    map[stepKey]domain.CareerStep
	statuses map[string]domain.CareerStatus
	tokens   map[string]domain.TokenUsage
	nextID   int64

	calls []Call

	Errors       map[string]error
	StepErrors   map[string]error
	StatusErrors map[domain.CareerStatus]error
}

func NewMockCareerRepository() *MockCareerRepository {
	return &MockCareerRepository{
		steps:        make(map[stepKey]domain.CareerStep),
		statuses:     make(map[string]domain.CareerStatus),
		tokens:       make(map[string]domain.TokenUsage),
		nextID:       1,
		Errors:       make(map[string]error),
		StepErrors:   make(map[string]error),
		StatusErrors: make(map[domain.CareerStatus]error),
	}
}

func (m *MockCareerRepository) WithError(op string, err error) *MockCareerRepository {
	m.Errors[op] = err
	return m
}

func (m *MockCareerRepository) WithStepError(key string, err error) *MockCareerRepository {
	m.StepErrors[key] = err
	return m
}

func (m *MockCareerRepository) WithStatusError(status domain.CareerStatus, err error) *MockCareerRepository {
	m.StatusErrors[status] = err
	return m
}

func (m *MockCareerRepository) record(op string, args ...string) {
	m.calls = append(m.calls, Call{Op: op, Args: args})
}

func (m *MockCareerRepository) InsertCareer(ctx context.Context, userID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record(OpInsertCareer, userID, text)
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.Errors[OpInsertCareer]; err != nil {
		return err
	}

	m.careers = append(m.careers, domain.CareerRecord{UserID: userID, Text: text, CreatedAt: time.Now()})
	return nil
}

func (m *MockCareerRepository) AddCareers(ctx context.Context, search *domain.CareerSearch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record(OpAddCareers, search.UserID, search.Profile.Qualification, search.Options)
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.Errors[OpAddCareers]; err != nil {
		return err
	}

	search.ID = m.nextID
	m.nextID++
	search.CreatedAt = time.Now()
	m.searches = append(m.searches, *search)
	return nil
}

func (m *MockCareerRepository) UpdateStep(ctx context.Context, careerTitle, qualification, key, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record(OpUpdateStep, careerTitle, qualification, key, text)
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.Errors[OpUpdateStep]; err != nil {
		return err
	}
	if err := m.StepErrors[key]; err != nil {
		return err
	}

	idx, err := domain.ParseStepKey(key)
	if err != nil {
		return err
	}

	m.steps[stepKey{careerTitle, qualification, idx}] = domain.CareerStep{
		CareerTitle:   careerTitle,
		Qualification: qualification,
		Index:         idx,
		Text:          text,
		UpdatedAt:     time.Now(),
	}
	return nil
}

func (m *MockCareerRepository) UpdateCareerStatus(ctx context.Context, careerTitle string, status domain.CareerStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record(OpUpdateCareerStatus, careerTitle, string(status))
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.Errors[OpUpdateCareerStatus]; err != nil {
		return err
	}
	if err := m.StatusErrors[status]; err != nil {
		return err
	}
	if !status.IsValid() {
		return domain.ErrInvalidStatus
	}

	m.statuses[careerTitle] = status
	return nil
}

func (m *MockCareerRepository) UpdateTokenUsage(ctx context.Context, userID string, totalTokens int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record(OpUpdateTokenUsage, userID)
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.Errors[OpUpdateTokenUsage]; err != nil {
		return err
	}

	m.tokens[userID] = domain.TokenUsage{UserID: userID, TotalTokens: totalTokens, UpdatedAt: time.Now()}
	return nil
}

func (m *MockCareerRepository) GetSteps(ctx context.Context, careerTitle, qualification string) ([]domain.CareerStep, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []domain.CareerStep
	for k, s := range m.steps {
		if k.title == careerTitle && k.qualification == qualification {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Index < result[j].Index })
	return result, nil
}

func (m *MockCareerRepository) GetCareerStatus(ctx context.Context, careerTitle string) (domain.CareerStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status, ok := m.statuses[careerTitle]
	if !ok {
		return "", domain.ErrNotFound
	}
	return status, nil
}

func (m *MockCareerRepository) GetTokenUsage(ctx context.Context, userID string) (*domain.TokenUsage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	usage, ok := m.tokens[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &usage, nil
}

// Calls - копия журнала вызовов на запись.
func (m *MockCareerRepository) Calls() []Call {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallsOf - только вызовы конкретной операции.
func (m *MockCareerRepository) CallsOf(op string) []Call {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Call
	for _, c := range m.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (m *MockCareerRepository) Careers() []domain.CareerRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.CareerRecord, len(m.careers))
	copy(out, m.careers)
	return out
}

func (m *MockCareerRepository) Searches() []domain.CareerSearch {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.CareerSearch, len(m.searches))
	copy(out, m.searches)
	return out
}

var _ CareerRepository = (*MockCareerRepository)(nil)
