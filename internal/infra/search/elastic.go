// Package search は商品のElasticsearchインデックス。
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"storefront/internal/domain/model"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const IndexName = "products"

type Config struct {
	Addresses []string
	Username  string
	Password  string
}

func NewClient(cfg Config) (*elasticsearch.Client, error) {
	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
}

// ProductIndex は検索してIDだけ返す。本体はDBから引き直す。
type ProductIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewProductIndex(es *elasticsearch.Client) *ProductIndex {
	return &ProductIndex{es: es, index: IndexName}
}

type productDoc struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Category    model.Category `json:"category"`
	Price       float64        `json:"price"`
	IsActive    bool           `json:"is_active"`
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source productDoc `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search は名前/説明の全文検索（公開中のみ）
func (x *ProductIndex) Search(ctx context.Context, q string, from int, size int) ([]int64, int64, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []map[string]interface{}{
					{
						"multi_match": map[string]interface{}{
							"query":  q,
							"fields": []string{"name^3", "description"},
						},
					},
				},
				"filter": []map[string]interface{}{
					{"term": map[string]interface{}{"is_active": true}},
				},
			},
		},
		"from": from,
		"size": size,
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, 0, err
	}

	res, err := x.es.Search(
		x.es.Search.WithContext(ctx),
		x.es.Search.WithIndex(x.index),
		x.es.Search.WithBody(bytes.NewReader(raw)),
	)
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()
	if err := checkResponse(res); err != nil {
		return nil, 0, err
	}

	var out searchResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, 0, err
	}
	ids := make([]int64, 0, len(out.Hits.Hits))
	for _, h := range out.Hits.Hits {
		ids = append(ids, h.Source.ID)
	}
	return ids, out.Hits.Total.Value, nil
}

func (x *ProductIndex) Index(ctx context.Context, p model.Product) error {
	price, _ := p.Price.Float64()
	raw, err := json.Marshal(productDoc{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       price,
		IsActive:    p.IsActive,
	})
	if err != nil {
		return err
	}

	res, err := x.es.Index(
		x.index,
		bytes.NewReader(raw),
		x.es.Index.WithContext(ctx),
		x.es.Index.WithDocumentID(strconv.FormatInt(p.ID, 10)),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	return checkResponse(res)
}

func (x *ProductIndex) Delete(ctx context.Context, id int64) error {
	res, err := x.es.Delete(x.index, strconv.FormatInt(id, 10), x.es.Delete.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	//無いものを消すのは成功扱い
	if res.StatusCode == 404 {
		return nil
	}
	return checkResponse(res)
}

func checkResponse(res *esapi.Response) error {
	if !res.IsError() {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return fmt.Errorf("elasticsearch: %s: %s", res.Status(), bytes.TrimSpace(msg))
}
