package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal error")
)

var (
	ErrEmptyUserID            = errors.New("userId is required")
	ErrEmptyQualification     = errors.New("qualification is required")
	ErrEmptyPersonalityTrait1 = errors.New("personalityTrait1 is required")
	ErrEmptyPersonalityTrait2 = errors.New("personalityTrait2 is required")
	ErrEmptyCareerInterest1   = errors.New("careerInterest1 is required")
	ErrEmptyCareerInterest2   = errors.New("careerInterest2 is required")
	ErrEmptyCareerTitle       = errors.New("careerTitle is required")
)

var (
	ErrEmptyQuestion   = errors.New("empty question")
	ErrQuestionTooLong = errors.New("question too long")
)

var (
	ErrInvalidStepIndex = errors.New("step index out of range")
	ErrInvalidStatus    = errors.New("invalid career status")
	ErrStepsNotFound    = errors.New("career steps not found")
)
