package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"sync"
	"time"

	"github.com/Jeffail/gabs"
	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/elastic/go-elasticsearch/v7/esutil"
	"github.com/mitchellh/mapstructure"

	"onigiri/api/models"
	"onigiri/api/models/indexes"
)

const classificationsIndex = "classifications"

// CreateClassificationsIndex ensures the classifications index exists
// with the expected mapping. Safe to call on startup; an already
// existing index is left untouched.
func CreateClassificationsIndex(cfg *models.Config, es *elasticsearch.Client) error {
	existsRes, existsErr := esapi.IndicesExistsRequest{
		Index: []string{classificationsIndex},
	}.Do(context.Background(), es)
	if existsErr != nil {
		return fmt.Errorf("failed to check classifications index: %w", existsErr)
	}
	defer existsRes.Body.Close()

	if existsRes.StatusCode == 200 {
		return nil
	}

	mappingBody, marshalErr := json.Marshal(map[string]interface{}{
		"mappings": indexes.CLASSIFICATION_INDEX_MAPPING,
	})
	if marshalErr != nil {
		return fmt.Errorf("failed to marshal classifications mapping: %w", marshalErr)
	}

	createRes, createErr := esapi.IndicesCreateRequest{
		Index: classificationsIndex,
		Body:  bytes.NewReader(mappingBody),
	}.Do(context.Background(), es)
	if createErr != nil {
		return fmt.Errorf("failed to create classifications index: %w", createErr)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("failed to create classifications index: %s", createRes.Status())
	}

	fmt.Printf("[%s] - Created index '%s'\n", time.Now(), classificationsIndex)
	return nil
}

// BulkIndexClassifications pushes a batch of classification documents
// through an esutil bulk indexer and waits for all items to flush.
func BulkIndexClassifications(cfg *models.Config, es *elasticsearch.Client, documents []indexes.ClassificationDocument) error {
	if len(documents) == 0 {
		return nil
	}

	bi, biErr := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:  classificationsIndex,
		Client: es,
	})
	if biErr != nil {
		return fmt.Errorf("failed to create bulk indexer: %w", biErr)
	}

	var wg sync.WaitGroup

	for _, document := range documents {
		documentData, marshallErr := json.Marshal(document)
		if marshallErr != nil {
			log.Printf("Cannot encode classification %s: %s\n", document.Id, marshallErr)
			continue
		}

		wg.Add(1)
		addErr := bi.Add(
			context.Background(),
			esutil.BulkIndexerItem{
				Action: "index",
				Body:   bytes.NewReader(documentData),

				OnSuccess: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem) {
					defer wg.Done()
				},
				OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
					defer wg.Done()
					if err != nil {
						fmt.Printf("Bulk indexing error: %s\n", err)
					} else {
						fmt.Printf("Bulk indexing error: %s: %s\n", res.Error.Type, res.Error.Reason)
					}
				},
			},
		)
		if addErr != nil {
			wg.Done()
			log.Printf("Failed to queue classification %s: %s\n", document.Id, addErr)
		}
	}

	wg.Wait()

	if closeErr := bi.Close(context.Background()); closeErr != nil {
		return fmt.Errorf("failed to close bulk indexer: %w", closeErr)
	}

	return nil
}

// GetClassificationsByRunId returns the persisted documents of one
// classification run.
func GetClassificationsByRunId(cfg *models.Config, es *elasticsearch.Client, runId string) ([]indexes.ClassificationDocument, error) {
	// begin building the request body.
	var buf bytes.Buffer
	queryMap := map[string]interface{}{
		"size": 10000,
		"query": map[string]interface{}{
			"match": map[string]interface{}{
				"runId.keyword": runId,
			},
		},
	}

	if err := json.NewEncoder(&buf).Encode(queryMap); err != nil {
		fmt.Printf("Error encoding queryMap: %s\n", err)
		return nil, err
	}

	res, searchErr := es.Search(
		es.Search.WithContext(context.Background()),
		es.Search.WithIndex(classificationsIndex),
		es.Search.WithBody(&buf),
		es.Search.WithTrackTotalHits(true),
	)
	if searchErr != nil {
		fmt.Printf("Error getting response: %s\n", searchErr)
		return nil, searchErr
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("failed to get classifications by run id: got '%s'", res.Status())
	}

	result := make(map[string]interface{})
	if umErr := json.NewDecoder(res.Body).Decode(&result); umErr != nil {
		fmt.Printf("Error unmarshalling response: %s\n", umErr)
		return nil, umErr
	}

	// gather data from "hits"
	docsHits := result["hits"].(map[string]interface{})["hits"]
	allDocHits := []map[string]interface{}{}
	mapstructure.Decode(docsHits, &allDocHits)

	// grab _source for each hit
	documents := make([]indexes.ClassificationDocument, 0)
	for _, r := range allDocHits {
		source := r["_source"]
		byteSlice, _ := json.Marshal(source)

		// cast map[string]interface{} to classification document
		var resultingDocument indexes.ClassificationDocument
		if err := json.Unmarshal(byteSlice, &resultingDocument); err != nil {
			fmt.Println("failed to unmarshal:", err)
			continue
		}

		// accumulate structs
		documents = append(documents, resultingDocument)
	}

	return documents, nil
}

// GetClassificationsTierBuckets returns the distribution of persisted
// classifications across tiers via a terms aggregation.
func GetClassificationsTierBuckets(cfg *models.Config, es *elasticsearch.Client) (map[string]interface{}, error) {
	// begin building the request body.
	var buf bytes.Buffer
	aggMap := map[string]interface{}{
		"size": "0",
		"aggs": map[string]interface{}{
			"items": map[string]interface{}{
				"terms": map[string]interface{}{
					"field": "tier.keyword",
					"size":  "10000", // increases the number of buckets returned (default is 10)
					"order": map[string]string{
						"_key": "asc",
					},
				},
			},
		},
	}

	// encode the query
	if err := json.NewEncoder(&buf).Encode(aggMap); err != nil {
		fmt.Printf("Error encoding aggMap: %s\n", err)
		return nil, err
	}

	if cfg.Debug {
		// view the outbound elasticsearch query
		fmt.Println(buf.String())
	}

	// Perform the search request.
	res, searchErr := es.Search(
		es.Search.WithContext(context.Background()),
		es.Search.WithIndex(classificationsIndex),
		es.Search.WithBody(&buf),
		es.Search.WithTrackTotalHits(true),
	)
	if searchErr != nil {
		fmt.Printf("Error getting response: %s\n", searchErr)
		return nil, searchErr
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("failed to get tier buckets: got '%s'", res.Status())
	}

	responseBody, readErr := ioutil.ReadAll(res.Body)
	if readErr != nil {
		fmt.Printf("Error reading response: %s\n", readErr)
		return nil, readErr
	}

	// walk aggregations.items.buckets
	jsonParsed, parseErr := gabs.ParseJSON(responseBody)
	if parseErr != nil {
		fmt.Printf("Error parsing response: %s\n", parseErr)
		return nil, parseErr
	}

	tierCounts := map[string]interface{}{}

	buckets, bucketsErr := jsonParsed.Path("aggregations.items.buckets").Children()
	if bucketsErr == nil {
		for _, bucket := range buckets {
			key := fmt.Sprint(bucket.Path("key").Data()) // ensure strings and numbers are expressed as strings
			tierCounts[key] = bucket.Path("doc_count").Data()
		}
	}

	return tierCounts, nil
}
