package telegram

import (
	"errors"
	"testing"

	"github.com/careerlogy/careerlogy-ai/internal/domain"
)

func TestParseCareersArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    string
		want    domain.StudentProfile
		wantErr error
	}{
		{
			name: "five parts",
			args: "B.E. Computer Science;Openness;Agreeableness;Social;Conventional",
			want: domain.StudentProfile{
				Qualification:     "B.E. Computer Science",
				PersonalityTrait1: "Openness",
				PersonalityTrait2: "Agreeableness",
				CareerInterest1:   "Social",
				CareerInterest2:   "Conventional",
			},
		},
		{
			name: "outer spaces trimmed",
			args: "  MBA ;  Conscientiousness;Extraversion ; Enterprising  ;Artistic ",
			want: domain.StudentProfile{
				Qualification:     "MBA",
				PersonalityTrait1: "Conscientiousness",
				PersonalityTrait2: "Extraversion",
				CareerInterest1:   "Enterprising",
				CareerInterest2:   "Artistic",
			},
		},
		{name: "empty", args: "", wantErr: ErrBadArgs},
		{name: "too few", args: "MBA;Openness", wantErr: ErrBadArgs},
		{name: "too many", args: "a;b;c;d;e;f", wantErr: ErrBadArgs},
		{name: "blank part", args: "MBA;;b;c;d", wantErr: domain.ErrEmptyPersonalityTrait1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCareersArgs(tt.args)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ParseCareersArgs() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCareersArgs() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseCareersArgs() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseStepsArgs(t *testing.T) {
	tests := []struct {
		name      string
		args      string
		wantTitle string
		wantQual  string
		wantErr   bool
	}{
		{"ok", "Data Scientist;B.Sc Statistics", "Data Scientist", "B.Sc Statistics", false},
		{"outer spaces trimmed", "  Data Scientist ; B.Sc Statistics ", "Data Scientist", "B.Sc Statistics", false},
		{"inner spaces kept", "Data  Scientist;B.Sc  Statistics", "Data  Scientist", "B.Sc  Statistics", false},
		{"no separator", "Data Scientist", "", "", true},
		{"empty title", ";B.Sc", "", "", true},
		{"empty", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, qual, err := ParseStepsArgs(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStepsArgs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if title != tt.wantTitle || qual != tt.wantQual {
				t.Errorf("ParseStepsArgs() = (%q, %q), want (%q, %q)", title, qual, tt.wantTitle, tt.wantQual)
			}
		})
	}
}
