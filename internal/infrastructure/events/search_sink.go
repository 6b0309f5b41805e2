package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/conduit-identity/internal/domain/event"
)

// SearchSink keeps a public profile document per user in Elasticsearch.
// The document id is the user id, so updates overwrite in place even when
// the email changes.
type SearchSink struct {
	es    *elasticsearch.Client
	index string
}

func NewSearchSink(es *elasticsearch.Client, index string) *SearchSink {
	return &SearchSink{es: es, index: index}
}

type profileDoc struct {
	UserID    string  `json:"user_id"`
	Email     string  `json:"email"`
	Username  string  `json:"username"`
	Bio       *string `json:"bio"`
	Image     *string `json:"image"`
	UpdatedAt string  `json:"updated_at"`
}

func (s *SearchSink) Publish(ctx context.Context, ev event.UserEvent) error {
	if ev.UserID == "" {
		return fmt.Errorf("index profile: event for %s has no user id", ev.Email)
	}
	doc := profileDoc{
		UserID:    ev.UserID,
		Email:     ev.Email,
		Username:  ev.Username,
		Bio:       ev.Bio,
		Image:     ev.Image,
		UpdatedAt: ev.OccurredAt.Format(time.RFC3339Nano),
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	req := esapi.IndexRequest{Index: s.index, DocumentID: ev.UserID, Body: bytes.NewReader(b), Refresh: "false"}
	res, err := req.Do(c, s.es)
	if err != nil {
		return fmt.Errorf("index profile: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("index profile: %s", res.Status())
	}
	return nil
}

const profileMapping = `{
  "mappings": {
    "properties": {
      "user_id":    {"type": "keyword"},
      "email":      {"type": "keyword"},
      "username":   {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "bio":        {"type": "text"},
      "image":      {"type": "keyword", "index": false},
      "updated_at": {"type": "date"}
    }
  }
}`

// EnsureIndex creates the profile index with its mapping when it does not
// exist yet.
func (s *SearchSink) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := s.es.Indices.Exists([]string{s.index}, s.es.Indices.Exists.WithContext(c))
	if err != nil {
		return fmt.Errorf("check index %s: %w", s.index, err)
	}
	_ = res.Body.Close()
	switch {
	case res.StatusCode == http.StatusOK:
		return nil
	case res.StatusCode != http.StatusNotFound:
		return fmt.Errorf("check index %s: %s", s.index, res.Status())
	}

	res, err = s.es.Indices.Create(s.index,
		s.es.Indices.Create.WithContext(c),
		s.es.Indices.Create.WithBody(strings.NewReader(profileMapping)),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", s.index, err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", s.index, res.Status())
	}
	return nil
}

var _ event.Sink = (*SearchSink)(nil)
