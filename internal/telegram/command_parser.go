package telegram

import (
	"errors"
	"strings"

	"github.com/careerlogy/careerlogy-ai/internal/domain"
)

var ErrBadArgs = errors.New("bad command arguments")

const argSeparator = ";"

// ParseCareersArgs: "квалификация;черта1;черта2;интерес1;интерес2".
func ParseCareersArgs(args string) (domain.StudentProfile, error) {
	parts := splitArgs(args)
	if len(parts) != 5 {
		return domain.StudentProfile{}, ErrBadArgs
	}

	p := domain.StudentProfile{
		Qualification:     parts[0],
		PersonalityTrait1: parts[1],
		PersonalityTrait2: parts[2],
		CareerInterest1:   parts[3],
		CareerInterest2:   parts[4],
	}
	if err := p.Validate(); err != nil {
		return domain.StudentProfile{}, err
	}
	return p, nil
}

// ParseStepsArgs: "профессия;квалификация".
func ParseStepsArgs(args string) (careerTitle, qualification string, err error) {
	parts := splitArgs(args)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", ErrBadArgs
	}
	return parts[0], parts[1], nil
}

func splitArgs(args string) []string {
	args = strings.TrimSpace(args)
	if args == "" {
		return nil
	}
	parts := strings.Split(args, argSeparator)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
