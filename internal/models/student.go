// internal/models/student.go
package models

import "strings"

// ProgramInterest is the study level the applicant is aiming for.
type ProgramInterest string

const (
	ProgramMasters   ProgramInterest = "Masters"
	ProgramBachelors ProgramInterest = "Bachelors"
	ProgramPhD       ProgramInterest = "PhD"
	ProgramLanguage  ProgramInterest = "Language"
	ProgramOther     ProgramInterest = "Other"
)

var Programs = []ProgramInterest{ProgramMasters, ProgramBachelors, ProgramPhD, ProgramLanguage, ProgramOther}

// ContactMethod is how the applicant prefers to be reached.
type ContactMethod string

const (
	ContactEmail ContactMethod = "Email"
	ContactPhone ContactMethod = "Phone / WhatsApp"
)

var ContactMethods = []ContactMethod{ContactEmail, ContactPhone}

// ApplicantProfile is everything the applicant types into the intake form.
type ApplicantProfile struct {
	FullName               string          `json:"fullName" validate:"required"`
	Email                  string          `json:"email" validate:"required,email"`
	Phone                  string          `json:"phone,omitempty"`
	CountryOfOrigin        string          `json:"countryOfOrigin,omitempty"`
	PreferredCities        string          `json:"preferredCities,omitempty"`
	ProgramInterest        ProgramInterest `json:"programInterest,omitempty" validate:"omitempty,oneof=Masters Bachelors PhD Language Other"`
	CurrentQualification   string          `json:"currentQualification,omitempty"`
	TargetIntake           string          `json:"targetIntake,omitempty"`
	BudgetEstimate         string          `json:"budgetEstimate,omitempty"`
	PreferredContactMethod ContactMethod   `json:"preferredContactMethod,omitempty" validate:"omitempty,oneof=Email 'Phone / WhatsApp'"`
	Consent                bool            `json:"consent" validate:"eq=true"`
}

// Normalize trims surrounding whitespace from every free-text field.
func (p *ApplicantProfile) Normalize() {
	p.FullName = strings.TrimSpace(p.FullName)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	p.CountryOfOrigin = strings.TrimSpace(p.CountryOfOrigin)
	p.PreferredCities = strings.TrimSpace(p.PreferredCities)
	p.CurrentQualification = strings.TrimSpace(p.CurrentQualification)
	p.TargetIntake = strings.TrimSpace(p.TargetIntake)
	p.BudgetEstimate = strings.TrimSpace(p.BudgetEstimate)
}

// ReconcileBudget makes the profile and the answers carry one budget. A blank
// side is filled from the other; when both are set the answers value wins.
func ReconcileBudget(profile *ApplicantProfile, answers *PreInterviewAnswers) {
	p := strings.TrimSpace(profile.BudgetEstimate)
	a := strings.TrimSpace(answers.BudgetEstimate)
	if a == "" {
		a = p
	}
	profile.BudgetEstimate = a
	answers.BudgetEstimate = a
}

// WantsPhoneContact reports whether an SMS should go out alongside the email.
func (p ApplicantProfile) WantsPhoneContact() bool {
	return p.PreferredContactMethod == ContactPhone && p.Phone != ""
}

// PreInterviewAnswers are the inputs to the scoring engine. Numeric fields
// are kept as typed text and parsed fail-soft at scoring time.
type PreInterviewAnswers struct {
	Motivation          string `json:"motivation,omitempty"`
	IELTSScore          string `json:"ieltsScore,omitempty"`
	WorkExperienceYears string `json:"workExperienceYears,omitempty"`
	BudgetEstimate      string `json:"budgetEstimate,omitempty"`
}
