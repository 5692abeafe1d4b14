package domain

import (
	"strings"
	"unicode/utf8"
)

// MaxQuestionLength - в символах, не в байтах.
const MaxQuestionLength = 4000

type FindCareerRequest struct {
	UserID     string         `json:"userId" validate:"required"`
	CareerData StudentProfile `json:"careerData" validate:"required"`
}

func (r *FindCareerRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return ErrEmptyUserID
	}
	return r.CareerData.Validate()
}

type FindCareerStepsRequest struct {
	UserID        string `json:"userId" validate:"required"`
	CareerTitle   string `json:"careerTitle" validate:"required"`
	Qualification string `json:"qualification" validate:"required"`
}

func (r *FindCareerStepsRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return ErrEmptyUserID
	}
	if strings.TrimSpace(r.CareerTitle) == "" {
		return ErrEmptyCareerTitle
	}
	if strings.TrimSpace(r.Qualification) == "" {
		return ErrEmptyQualification
	}
	return nil
}

// Sanitize обрезает пробелы вокруг названия карьеры, квалификацию не трогаем.
func (r *FindCareerStepsRequest) Sanitize() {
	r.CareerTitle = strings.TrimSpace(r.CareerTitle)
}

type ChatAnswerRequest struct {
	UserID   string `json:"userId" validate:"required"`
	Question string `json:"question" validate:"required"`
}

func (r *ChatAnswerRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return ErrEmptyUserID
	}
	if strings.TrimSpace(r.Question) == "" {
		return ErrEmptyQuestion
	}
	if utf8.RuneCountInString(r.Question) > MaxQuestionLength {
		return ErrQuestionTooLong
	}
	return nil
}

type Result struct {
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

type ChatResult struct {
	Answer      string `json:"answer"`
	StatusCode  int    `json:"status_code"`
	TotalTokens int    `json:"-"`
}
