// Package search mirrors submissions into Elasticsearch for the admin search box.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "studybuddy/internal/common/errors"
	"studybuddy/internal/common/logger"
	"studybuddy/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var ErrIndexFailed = errors.New("SEARCH_INDEX_FAILED")

const DefaultSize = 50

// document is the indexed projection of a submission.
type document struct {
	ID              string    `json:"id"`
	FullName        string    `json:"fullName"`
	Email           string    `json:"email"`
	CountryOfOrigin string    `json:"countryOfOrigin"`
	PreferredCities string    `json:"preferredCities"`
	ProgramInterest string    `json:"programInterest"`
	Score           int       `json:"score"`
	CreatedAt       time.Time `json:"createdAt"`
}

const mapping = `{
  "mappings": {
    "properties": {
      "id":              {"type": "keyword"},
      "fullName":        {"type": "text"},
      "email":           {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "countryOfOrigin": {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "preferredCities": {"type": "text"},
      "programInterest": {"type": "keyword"},
      "score":           {"type": "integer"},
      "createdAt":       {"type": "date"}
    }
  }
}`

type Index struct {
	client *elasticsearch.Client
	name   string
	logger logger.Logger
}

func New(client *elasticsearch.Client, name string, log logger.Logger) *Index {
	return &Index{
		client: client,
		name:   name,
		logger: logger.ForComponent(log, "search").WithFields(map[string]interface{}{"index": name}),
	}
}

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (i *Index) EnsureIndex(ctx context.Context) error {
	res, err := esapi.IndicesExistsRequest{Index: []string{i.name}}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexFailed, err)
	}
	drain(res)
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = esapi.IndicesCreateRequest{
		Index: i.name,
		Body:  strings.NewReader(mapping),
	}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexFailed, err)
	}
	defer drain(res)
	if res.IsError() {
		return fmt.Errorf("%w: create index: %s", ErrIndexFailed, res.Status())
	}
	i.logger.Info("search index created", nil)
	return nil
}

// Index upserts the submission under its id.
func (i *Index) Index(ctx context.Context, sub *models.Submission) error {
	body, err := json.Marshal(document{
		ID:              sub.ID,
		FullName:        sub.Profile.FullName,
		Email:           sub.Profile.Email,
		CountryOfOrigin: sub.Profile.CountryOfOrigin,
		PreferredCities: sub.Profile.PreferredCities,
		ProgramInterest: string(sub.Profile.ProgramInterest),
		Score:           sub.Score,
		CreatedAt:       sub.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexFailed, err)
	}

	res, err := esapi.IndexRequest{
		Index:      i.name,
		DocumentID: sub.ID,
		Body:       bytes.NewReader(body),
	}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexFailed, err)
	}
	defer drain(res)
	if res.IsError() {
		return fmt.Errorf("%w: %s", ErrIndexFailed, res.Status())
	}

	i.logger.Debug("submission indexed", map[string]interface{}{"submissionId": sub.ID})
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search returns matching submission ids, best match first. Failures are
// SEARCH_QUERY_FAILED standard errors.
func (i *Index) Search(ctx context.Context, term string, size int) ([]string, error) {
	if size <= 0 {
		size = DefaultSize
	}
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     term,
				"fields":    []string{"fullName^3", "email^2", "countryOfOrigin", "preferredCities", "programInterest"},
				"type":      "best_fields",
				"fuzziness": "AUTO",
			},
		},
		"_source": false,
	}
	body, _ := json.Marshal(query)

	res, err := esapi.SearchRequest{
		Index: []string{i.name},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}.Do(ctx, i.client)
	if err != nil {
		return nil, apperrors.NewSearchQueryFailedError(err)
	}
	defer drain(res)
	if res.IsError() {
		return nil, apperrors.NewSearchQueryFailedError(fmt.Errorf("status %s", res.Status()))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewSearchQueryFailedError(fmt.Errorf("decode: %w", err))
	}

	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

func drain(res *esapi.Response) {
	if res == nil || res.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, res.Body)
	res.Body.Close()
}
