package review

import (
	"context"
	"errors"
	"io"
	"strings"

	"studybuddy/internal/common/auth"
	"studybuddy/internal/common/logger"
	"studybuddy/internal/export"
	"studybuddy/internal/models"
	"studybuddy/internal/store"
)

// Assigner validates and applies counselor/status changes.
type Assigner interface {
	Apply(ctx context.Context, id string, update models.AssignmentUpdate) (*models.Submission, error)
}

// Searcher ranks submission ids for a free-text term.
type Searcher interface {
	Search(ctx context.Context, term string, size int) ([]string, error)
}

// Admin is gated by the admin shared secret on every call.
type Admin struct {
	gate     *auth.Gate
	store    store.Repository
	assigner Assigner
	searcher Searcher
	logger   logger.Logger
}

// NewAdmin builds the admin view. searcher may be nil, in which case search
// falls back to a SQL substring match.
func NewAdmin(gate *auth.Gate, st store.Repository, assigner Assigner, searcher Searcher, log logger.Logger) *Admin {
	return &Admin{
		gate:     gate,
		store:    st,
		assigner: assigner,
		searcher: searcher,
		logger:   logger.ForComponent(log, "admin"),
	}
}

func (a *Admin) List(ctx context.Context, secret string) ([]models.Submission, error) {
	if err := a.gate.AuthorizeAdmin(secret); err != nil {
		return nil, err
	}
	subs, err := a.store.ListAll(ctx)
	if err != nil {
		return nil, storeError("list_all", "", err)
	}
	return subs, nil
}

func (a *Admin) Update(ctx context.Context, secret, id string, update models.AssignmentUpdate) (*models.Submission, error) {
	if err := a.gate.AuthorizeAdmin(secret); err != nil {
		return nil, err
	}
	return a.assigner.Apply(ctx, id, update)
}

// ExportCSV streams every submission, newest first.
func (a *Admin) ExportCSV(ctx context.Context, secret string, w io.Writer) error {
	subs, err := a.List(ctx, secret)
	if err != nil {
		return err
	}
	return export.WriteCSV(w, subs)
}

func (a *Admin) Report(ctx context.Context, secret, id string) (string, error) {
	if err := a.gate.AuthorizeAdmin(secret); err != nil {
		return "", err
	}
	sub, err := a.store.Get(ctx, id)
	if err != nil {
		return "", storeError("get", id, err)
	}
	return export.Report(*sub), nil
}

// Search prefers the search index and falls back to SQL when the index is
// absent, failing or has no hits. A blank term lists everything.
func (a *Admin) Search(ctx context.Context, secret, term string) ([]models.Submission, error) {
	if err := a.gate.AuthorizeAdmin(secret); err != nil {
		return nil, err
	}
	term = strings.TrimSpace(term)
	if term == "" {
		return a.List(ctx, secret)
	}

	if a.searcher != nil {
		subs, err := a.searchIndex(ctx, term)
		switch {
		case err != nil:
			a.logger.Warn("search index unavailable, using SQL", map[string]interface{}{
				"error": err.Error(),
			})
		case len(subs) > 0:
			return subs, nil
		}
	}

	subs, err := a.store.Search(ctx, term)
	if err != nil {
		return nil, storeError("search", "", err)
	}
	return subs, nil
}

func (a *Admin) searchIndex(ctx context.Context, term string) ([]models.Submission, error) {
	ids, err := a.searcher.Search(ctx, term, 0)
	if err != nil {
		return nil, err
	}
	subs := make([]models.Submission, 0, len(ids))
	for _, id := range ids {
		sub, err := a.store.Get(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, nil
}
