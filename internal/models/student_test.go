package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconcileBudget(t *testing.T) {
	tests := []struct {
		name    string
		profile string
		answers string
		want    string
	}{
		{"profile only", "25000", "", "25000"},
		{"answers only", "", "18000", "18000"},
		{"answers win", "5000", " 25000 ", "25000"},
		{"both blank", "  ", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ApplicantProfile{BudgetEstimate: tt.profile}
			a := PreInterviewAnswers{BudgetEstimate: tt.answers}
			ReconcileBudget(&p, &a)
			assert.Equal(t, tt.want, p.BudgetEstimate)
			assert.Equal(t, tt.want, a.BudgetEstimate)
		})
	}
}
