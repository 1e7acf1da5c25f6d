// Package gateway wraps the LLM providers behind a fail-soft suggestion and chat API.
package gateway

import (
	"context"
	"errors"

	"studybuddy/internal/models"
)

var (
	ErrMissingCredential = errors.New("MISSING_CREDENTIAL")
	ErrEmptyResponse     = errors.New("EMPTY_RESPONSE")
	ErrMalformedResponse = errors.New("MALFORMED_RESPONSE")
)

// Request carries either a single Prompt or an ordered transcript in Turns.
type Request struct {
	System      string
	Prompt      string
	Turns       []models.ChatTurn
	MaxTokens   int
	Temperature float64
}

// Messages returns the request as an ordered transcript.
func (r Request) Messages() []models.ChatTurn {
	if len(r.Turns) > 0 {
		return r.Turns
	}
	return []models.ChatTurn{{Role: models.RoleUser, Content: r.Prompt}}
}

// Generator is a text-generation provider.
type Generator interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

type unavailable struct {
	name string
	err  error
}

// Unavailable returns a Generator that always fails with err. It stands in
// for a provider that could not be constructed, e.g. without an API key.
func Unavailable(name string, err error) Generator {
	if err == nil {
		err = ErrMissingCredential
	}
	return &unavailable{name: name, err: err}
}

func (u *unavailable) Name() string { return u.name }

func (u *unavailable) Generate(context.Context, Request) (string, error) {
	return "", u.err
}
