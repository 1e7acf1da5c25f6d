package main

import (
	"fmt"

	"studybuddy/internal/models"
	"studybuddy/internal/scoring"

	"github.com/spf13/cobra"
)

func newScoreCmd() *cobra.Command {
	var answers models.PreInterviewAnswers

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Print the pre-interview score and band for a set of answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			b := scoring.Compute(answers)
			total := b.Total()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "score: %d\nband: %s\n", total, scoring.Classify(total))
			fmt.Fprintf(out, "ielts: %d  work: %d  motivation: %d  budget: %d\n", b.IELTS, b.Work, b.Motivation, b.Budget)
			return nil
		},
	}
	cmd.Flags().StringVar(&answers.IELTSScore, "ielts", "", "IELTS overall band, e.g. 7.5")
	cmd.Flags().StringVar(&answers.WorkExperienceYears, "work", "", "years of work experience")
	cmd.Flags().StringVar(&answers.Motivation, "motivation", "", "motivation statement")
	cmd.Flags().StringVar(&answers.BudgetEstimate, "budget", "", "budget estimate")
	return cmd
}
