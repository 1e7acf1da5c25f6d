package review

import (
	"context"

	"studybuddy/internal/common/auth"
	"studybuddy/internal/models"
)

type CounselorLister interface {
	ListByCounselor(ctx context.Context, counselor string) ([]models.Submission, error)
}

// CounselorView shows a counselor only the submissions assigned to them.
type CounselorView struct {
	gate  *auth.Gate
	store CounselorLister
}

func NewCounselorView(gate *auth.Gate, st CounselorLister) *CounselorView {
	return &CounselorView{gate: gate, store: st}
}

func (c *CounselorView) List(ctx context.Context, secret, name string) ([]models.Submission, error) {
	if err := c.gate.AuthorizeCounselor(secret, name); err != nil {
		return nil, err
	}
	subs, err := c.store.ListByCounselor(ctx, name)
	if err != nil {
		return nil, storeError("list_by_counselor", "", err)
	}
	return subs, nil
}
