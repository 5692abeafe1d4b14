package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	// CareerSeparator разделяет квалификацию и сгенерированные варианты в CareerRecord.
	CareerSeparator = "===="

	// StepCount - сколько шагов генерится на одну пару (career, qualification)
	StepCount = 9

	MessageCareerSearched = "Career searched"
)

type StudentProfile struct {
	Qualification     string `json:"qualification" validate:"required"`
	PersonalityTrait1 string `json:"personalityTrait1" validate:"required"`
	PersonalityTrait2 string `json:"personalityTrait2" validate:"required"`
	CareerInterest1   string `json:"careerInterest1" validate:"required"`
	CareerInterest2   string `json:"careerInterest2" validate:"required"`
}

func (p StudentProfile) Validate() error {
	switch {
	case strings.TrimSpace(p.Qualification) == "":
		return ErrEmptyQualification
	case strings.TrimSpace(p.PersonalityTrait1) == "":
		return ErrEmptyPersonalityTrait1
	case strings.TrimSpace(p.PersonalityTrait2) == "":
		return ErrEmptyPersonalityTrait2
	case strings.TrimSpace(p.CareerInterest1) == "":
		return ErrEmptyCareerInterest1
	case strings.TrimSpace(p.CareerInterest2) == "":
		return ErrEmptyCareerInterest2
	}
	return nil
}

// CareerRecord - квалификация + сырой ответ модели через CareerSeparator.
// Пишется один раз на поиск и больше не меняется.
type CareerRecord struct {
	UserID    string
	Text      string
	CreatedAt time.Time
}

func NewCareerRecord(userID, qualification, options string) CareerRecord {
	return CareerRecord{
		UserID: userID,
		Text:   qualification + CareerSeparator + options,
	}
}

// CareerSearch - структурированная запись "add careers": профиль и ответ модели как есть.
type CareerSearch struct {
	ID        int64
	UserID    string
	Profile   StudentProfile
	Options   string
	CreatedAt time.Time
}

type CareerStep struct {
	CareerTitle   string
	Qualification string
	Index         int
	Text          string
	UpdatedAt     time.Time
}

// StepKey возвращает ключ шага в хранилище: step_0 ... step_8.
func StepKey(index int) string {
	return fmt.Sprintf("step_%d", index)
}

// ParseStepKey - обратное к StepKey.
func ParseStepKey(key string) (int, error) {
	var idx int
	if _, err := fmt.Sscanf(key, "step_%d", &idx); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidStepIndex, key)
	}
	if idx < 0 || idx >= StepCount {
		return 0, fmt.Errorf("%w: %d", ErrInvalidStepIndex, idx)
	}
	return idx, nil
}

type CareerStatus string

const (
	StatusCompleted CareerStatus = "Completed"
	StatusFailed    CareerStatus = "Failed"
)

func (s CareerStatus) IsValid() bool {
	switch s {
	case StatusCompleted, StatusFailed:
		return true
	}
	return false
}

func (s CareerStatus) String() string { return string(s) }

// CareerProgress - то, что видно снаружи во время/после генерации шагов.
// Status пустой, пока прогон не завершился (in-progress не пишется).
type CareerProgress struct {
	CareerTitle   string
	Qualification string
	Steps         []CareerStep
	Status        CareerStatus
}

func (p *CareerProgress) IsComplete() bool {
	return p.Status == StatusCompleted && len(p.Steps) == StepCount
}

type TokenUsage struct {
	UserID      string
	TotalTokens int
	UpdatedAt   time.Time
}
