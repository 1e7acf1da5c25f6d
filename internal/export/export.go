// Package export renders submissions as CSV and as a plain-text report.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"studybuddy/internal/models"
	"studybuddy/internal/scoring"
)

// Columns is the CSV header, one column per stored field.
var Columns = []string{
	"id", "full_name", "email", "phone", "country_of_origin", "preferred_cities",
	"program_interest", "current_qualification", "target_intake", "budget_estimate",
	"preferred_contact_method", "consent",
	"motivation", "ielts_score", "work_experience_years", "answers_budget_estimate",
	"pre_interview_score", "band", "suggestion_text", "suggestion_degraded",
	"counselor", "status", "created_at",
}

func row(s models.Submission) []string {
	p, a := s.Profile, s.Answers
	return []string{
		s.ID, p.FullName, p.Email, p.Phone, p.CountryOfOrigin, p.PreferredCities,
		string(p.ProgramInterest), p.CurrentQualification, p.TargetIntake, p.BudgetEstimate,
		string(p.PreferredContactMethod), strconv.FormatBool(p.Consent),
		a.Motivation, a.IELTSScore, a.WorkExperienceYears, a.BudgetEstimate,
		strconv.Itoa(s.Score), string(scoring.Classify(s.Score)), s.Suggestion, strconv.FormatBool(s.SuggestionDegraded),
		s.Counselor, string(s.Status), s.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// WriteCSV writes the header and one row per submission.
func WriteCSV(w io.Writer, subs []models.Submission) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, s := range subs {
		if err := cw.Write(row(s)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Report renders one submission as "label: value" lines under a title.
func Report(s models.Submission) string {
	var b strings.Builder
	b.WriteString("StudyBuddy Student Report\n")
	b.WriteString(strings.Repeat("=", 25))
	b.WriteString("\n\n")
	values := row(s)
	for i, col := range Columns {
		fmt.Fprintf(&b, "%s: %s\n", col, values[i])
	}
	return b.String()
}
