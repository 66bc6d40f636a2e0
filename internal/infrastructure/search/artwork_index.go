package search

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/palitra-app/palitra/internal/application"
)

// ArtworkIndex mirrors artworks into Elasticsearch for gallery search.
// All operations are best effort with a short timeout.
type ArtworkIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewArtworkIndex(es *elasticsearch.Client, index string) *ArtworkIndex {
	return &ArtworkIndex{es: es, index: index}
}

func (i *ArtworkIndex) Index(ctx context.Context, doc application.ArtworkDoc) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: i.index, DocumentID: doc.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, i.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	return nil
}

func (i *ArtworkIndex) Search(ctx context.Context, query string, size int) ([]application.ArtworkDoc, error) {
	q := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  query,
				"fields": []string{"display_name^2", "author_name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(q)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := i.es.Search(
		i.es.Search.WithContext(c),
		i.es.Search.WithIndex(i.index),
		i.es.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source application.ArtworkDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]application.ArtworkDoc, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

var _ application.ArtworkIndexer = (*ArtworkIndex)(nil)
