// Package esaccel implements the optional Elasticsearch-accelerated
// search path. It is gated entirely behind Config.ElasticsearchURL:
// when unset, callers never construct an Accelerator and the
// Postgres tsvector path (internal/catalog/predicate, paginator) is
// used exclusively, as spec §4.D describes. When enabled, this
// package serves as a front door that falls back to the caller's own
// Postgres path on any ES error, mirroring the teacher's
// searchProductsES/getProductsDB fallback shape
// (internal/handlers/products.go), retargeted from the teacher's
// storefront product schema to style-code-centric search projection
// rows and using the official elastic/go-elasticsearch/v8 client the
// teacher's own ProductHandler constructs (not its duplicate
// hand-rolled internal/elasticsearch HTTP client, which this core
// does not carry forward — see DESIGN.md).
package esaccel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const indexName = "catalog_styles"

// Accelerator wraps the official ES client with the query shape the
// catalog search core needs: a multi_match across style_name/
// description/brand with field boosts, filtered by brand, product
// type and price range only; the other Postgres filter dimensions are
// not applied.
type Accelerator struct {
	client *elasticsearch.Client
}

// New builds an Accelerator against the cluster at url.
func New(url string) (*Accelerator, error) {
	cfg := elasticsearch.Config{Addresses: []string{url}}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("build elasticsearch client: %w", err)
	}
	return &Accelerator{client: client}, nil
}

// Hit is one search result's style code and relevance score from ES.
type Hit struct {
	StyleCode string
	Score     float64
}

// Result is the page of style codes ES ranked, plus the total hit
// count for pagination.
type Result struct {
	Hits  []Hit
	Total int
}

// Query describes the subset of the listing filter context the ES
// query can apply as term/range filters, mirroring the teacher's
// searchProductsES signature (category/brand/price/sort) generalized
// to the catalog's brand/productType/price/sort fields.
type Query struct {
	Text        string
	Brand       string
	ProductType string
	PriceMin    *float64
	PriceMax    *float64
	Sort        string
	Page        int
	Limit       int
}

// Search runs a multi_match query with the teacher's field-boost
// pattern (title^3 -> style_name^3, brand^2, ean/sku^4 -> style_code^4)
// against the configured index. Callers must fall back to the
// Postgres path on any error — ES is an accelerator, never the source
// of truth (spec §4.D, §9).
func (a *Accelerator) Search(ctx context.Context, q Query) (*Result, error) {
	must := []map[string]any{
		{"multi_match": map[string]any{
			"query":     q.Text,
			"fields":    []string{"style_name^3", "description", "brand_name^2", "style_code^4"},
			"type":      "best_fields",
			"fuzziness": "AUTO",
		}},
		{"term": map[string]any{"sku_status": "Live"}},
	}

	if q.Brand != "" {
		must = append(must, map[string]any{"term": map[string]any{"brand_slug": q.Brand}})
	}
	if q.ProductType != "" {
		must = append(must, map[string]any{"term": map[string]any{"product_type_slug": q.ProductType}})
	}
	if q.PriceMin != nil || q.PriceMax != nil {
		priceRange := map[string]any{}
		if q.PriceMin != nil {
			priceRange["gte"] = *q.PriceMin
		}
		if q.PriceMax != nil {
			priceRange["lte"] = *q.PriceMax
		}
		must = append(must, map[string]any{"range": map[string]any{"sell_price": priceRange}})
	}

	sortClause := []map[string]any{{"_score": "desc"}}
	switch q.Sort {
	case "price":
		sortClause = []map[string]any{{"sell_price": "asc"}}
	case "newest":
		sortClause = []map[string]any{{"created_at": "desc"}}
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 24
	}

	body := map[string]any{
		"query": map[string]any{"bool": map[string]any{"must": must}},
		"sort":  sortClause,
		"from":  (page - 1) * limit,
		"size":  limit,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal es query: %w", err)
	}

	res, err := a.client.Search(
		a.client.Search.WithContext(ctx),
		a.client.Search.WithIndex(indexName),
		a.client.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("es search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("es search returned status %s", res.Status())
	}

	var decoded esResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode es response: %w", err)
	}

	hits := make([]Hit, 0, len(decoded.Hits.Hits))
	for _, h := range decoded.Hits.Hits {
		hits = append(hits, Hit{StyleCode: h.Source.StyleCode, Score: h.Score})
	}

	return &Result{Hits: hits, Total: decoded.Hits.Total.Value}, nil
}

type esResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Score  float64 `json:"_score"`
			Source struct {
				StyleCode string `json:"style_code"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// IndexStyle indexes (or reindexes) one style's projection document,
// grounded on the teacher's esapi.IndexRequest usage
// (internal/handlers/products.go).
func (a *Accelerator) IndexStyle(ctx context.Context, styleCode string, doc any) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal style document: %w", err)
	}
	req := esapi.IndexRequest{
		Index:      indexName,
		DocumentID: styleCode,
		Body:       bytes.NewReader(payload),
		Refresh:    "false",
	}
	res, err := req.Do(ctx, a.client)
	if err != nil {
		return fmt.Errorf("index style %s: %w", styleCode, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index style %s returned status %s", styleCode, res.Status())
	}
	return nil
}

// DeleteStyle removes a style's document from the index, grounded on
// the teacher's esapi.DeleteRequest usage.
func (a *Accelerator) DeleteStyle(ctx context.Context, styleCode string) error {
	req := esapi.DeleteRequest{Index: indexName, DocumentID: styleCode}
	res, err := req.Do(ctx, a.client)
	if err != nil {
		return fmt.Errorf("delete style %s: %w", styleCode, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete style %s returned status %s", styleCode, res.Status())
	}
	return nil
}
