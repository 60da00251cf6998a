package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/pkg/errors"

	"example.com/backstage/services/cylinder/config"
	"example.com/backstage/services/cylinder/internal/models"
)

const transitionIndex = "status-transitions"

// ElasticClient provides integration with Elasticsearch
type ElasticClient struct {
	client  *elasticsearch.Client
	config  config.ElasticConfig
	enabled bool
}

// NewElasticClient creates a new Elasticsearch client. A disabled
// configuration yields a client whose indexing calls are no-ops.
func NewElasticClient(cfg config.ElasticConfig) (*ElasticClient, error) {
	if !cfg.Enabled {
		return &ElasticClient{enabled: false}, nil
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Elasticsearch client")
	}

	return &ElasticClient{
		client:  client,
		config:  cfg,
		enabled: true,
	}, nil
}

// Enabled reports whether indexing is configured.
func (c *ElasticClient) Enabled() bool {
	return c != nil && c.enabled
}

// IndexTransition indexes one status-transition event.
func (c *ElasticClient) IndexTransition(ctx context.Context, entry *models.CylinderStatusHistory) error {
	if !c.Enabled() {
		return nil
	}

	doc := map[string]interface{}{
		"cylinder_id":     entry.CylinderID,
		"previous_status": entry.PreviousStatus,
		"new_status":      entry.NewStatus,
		"source":          entry.Source,
		"changed_at":      entry.ChangedAt,
	}

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "failed to marshal transition document")
	}

	req := esapi.IndexRequest{
		Index:      config.FormatIndex(c.config, transitionIndex),
		DocumentID: fmt.Sprintf("%d", entry.ID),
		Body:       bytes.NewReader(docJSON),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return errors.Wrap(err, "failed to execute Elasticsearch index request")
	}
	defer res.Body.Close()

	if res.IsError() {
		var e map[string]interface{}
		if err := json.NewDecoder(res.Body).Decode(&e); err != nil {
			return errors.Wrap(err, "failed to parse Elasticsearch error response")
		}
		return errors.Errorf("Elasticsearch index error: %v", e)
	}

	return nil
}
