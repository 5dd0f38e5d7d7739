package classification

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo"
	"github.com/mitchellh/mapstructure"

	"onigiri/api/models"
	"onigiri/api/models/dtos"
	serviceErrors "onigiri/api/models/dtos/errors"
	"onigiri/api/models/indexes"
	"onigiri/api/mvc"
	esRepo "onigiri/api/repositories/elasticsearch"
	"onigiri/api/repositories/reference"
	"onigiri/api/utils"
)

// ClassificationRun accepts a JSON array of normalized variant views,
// classifies the whole batch and returns one result per variant, in
// input order.
func ClassificationRun(c echo.Context) error {
	fmt.Printf("[%s] - ClassificationRun hit!\n", time.Now())
	cfg, es, classificationSvc, metricsSvc := mvc.RetrieveCommonElements(c)

	// decode into generic maps first so flexible field shapes
	// (a single delimiter-separated gene string vs an array)
	// can be normalized before the strict view decode
	var rawViews []map[string]interface{}
	if decodeErr := json.NewDecoder(c.Request().Body).Decode(&rawViews); decodeErr != nil {
		fmt.Printf("Failed to decode classification payload: %s\n", decodeErr)
		return c.JSON(http.StatusBadRequest,
			serviceErrors.CreateSimpleBadRequest("Malformed payload - expected a JSON array of variant views"))
	}

	runId := uuid.New().String()

	views := make([]*models.VariantView, 0, len(rawViews))
	for i, rawView := range rawViews {
		if genesText, isText := rawView["genes"].(string); isText {
			rawView["genes"] = utils.SplitAndTrim(genesText, ";")
		}

		// an undecodable entry keeps its slot: the zero view fails
		// per-variant validation downstream and yields an inspectable
		// result instead of silently shrinking the batch
		view := &models.VariantView{}
		decoder, _ := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           view,
		})
		if decoder != nil {
			if decodeErr := decoder.Decode(rawView); decodeErr != nil {
				fmt.Printf("Failed to decode variant view %d: %s\n", i, decodeErr)
			}
		}

		if view.Id == "" {
			view.Id = fmt.Sprintf("%s-%d", runId, i)
		}
		views = append(views, view)
	}

	results, collector := classificationSvc.ClassifyBatch(views, cfg.Api.ClassificationConcurrencyLevel)
	metricsSvc.Absorb(collector)

	if cfg.Elasticsearch.Enabled && es != nil {
		documents := make([]indexes.ClassificationDocument, 0, len(results))
		for i, result := range results {
			documents = append(documents, indexes.ClassificationDocument{
				Id:                   result.VariantId,
				RunId:                runId,
				Genes:                views[i].Genes,
				Consequence:          views[i].Consequence,
				ClinicalSignificance: views[i].ClinicalSignificance,
				Tier:                 string(result.Tier),
				Reason:               result.Reason,
				Evidence:             result.Evidence,
				CreatedTime:          result.CreatedTime,
			})
		}

		// persistence is best-effort and off the request path
		go func() {
			if indexErr := esRepo.BulkIndexClassifications(cfg, es, documents); indexErr != nil {
				fmt.Printf("[%s] - Failed to persist classification run %s : %s\n", time.Now(), runId, indexErr)
			}
		}()
	}

	return c.JSON(http.StatusOK, dtos.ClassificationRunResponse{
		ClassificationResponse: dtos.ClassificationResponse{
			Status:  http.StatusOK,
			Message: "Success",
		},
		RunId:   runId,
		Count:   len(results),
		Results: results,
	})
}

// GetClassificationRun fetches the persisted results of a previous run
// by its `runId` query parameter (validated by middleware upstream).
func GetClassificationRun(c echo.Context) error {
	fmt.Printf("[%s] - GetClassificationRun hit!\n", time.Now())
	cfg, es, _, _ := mvc.RetrieveCommonElements(c)

	if !cfg.Elasticsearch.Enabled || es == nil {
		return c.JSON(http.StatusBadRequest,
			serviceErrors.CreateSimpleBadRequest("Classification persistence is not enabled"))
	}

	runId := c.QueryParam("runId")

	documents, searchErr := esRepo.GetClassificationsByRunId(cfg, es, runId)
	if searchErr != nil {
		return c.JSON(http.StatusInternalServerError,
			serviceErrors.CreateSimpleInternalServerError("Something went wrong. Please contact the administrator!"))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"message": "Success",
		"runId":   runId,
		"count":   len(documents),
		"results": documents,
	})
}

// ClassificationOverview reports the tier distribution: from the
// persisted documents when Elasticsearch is wired in, otherwise from
// the in-process metrics aggregate.
func ClassificationOverview(c echo.Context) error {
	fmt.Printf("[%s] - ClassificationOverview hit!\n", time.Now())
	cfg, es, _, metricsSvc := mvc.RetrieveCommonElements(c)

	if cfg.Elasticsearch.Enabled && es != nil {
		tierCounts, bucketsErr := esRepo.GetClassificationsTierBuckets(cfg, es)
		if bucketsErr != nil {
			return c.JSON(http.StatusInternalServerError,
				serviceErrors.CreateSimpleInternalServerError("Something went wrong. Please contact the administrator!"))
		}

		return c.JSON(http.StatusOK, dtos.ClassificationOverviewResponse{
			ClassificationResponse: dtos.ClassificationResponse{
				Status:  http.StatusOK,
				Message: "Success",
			},
			Data: map[string]interface{}{
				"tiers": tierCounts,
			},
		})
	}

	return c.JSON(http.StatusOK, dtos.ClassificationOverviewResponse{
		ClassificationResponse: dtos.ClassificationResponse{
			Status:  http.StatusOK,
			Message: "Success",
		},
		Data: metricsSvc.Overview(),
	})
}

// GetMetrics exposes the in-process metrics aggregate.
func GetMetrics(c echo.Context) error {
	fmt.Printf("[%s] - GetMetrics hit!\n", time.Now())
	_, _, _, metricsSvc := mvc.RetrieveCommonElements(c)

	return c.JSON(http.StatusOK, dtos.MetricsResponse{
		ClassificationResponse: dtos.ClassificationResponse{
			Status:  http.StatusOK,
			Message: "Success",
		},
		Data: metricsSvc.Overview(),
	})
}

// ReloadGeneTables rebuilds the curated gene tables from the configured
// JSON file and swaps the published reference atomically. In-flight
// classifications keep the tables they started with.
func ReloadGeneTables(c echo.Context) error {
	fmt.Printf("[%s] - ReloadGeneTables hit!\n", time.Now())
	cfg, _, _, _ := mvc.RetrieveCommonElements(c)

	if cfg.Api.GeneTablePath == "" {
		return c.JSON(http.StatusBadRequest,
			serviceErrors.CreateSimpleBadRequest("No gene table path configured"))
	}

	tables, loadErr := reference.LoadTablesFromJson(cfg.Api.GeneTablePath)
	if loadErr != nil {
		fmt.Printf("Failed to reload gene tables: %s\n", loadErr)
		return c.JSON(http.StatusInternalServerError,
			serviceErrors.CreateSimpleInternalServerError("Failed to reload gene tables"))
	}

	reference.Swap(tables)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  http.StatusOK,
		"message": "Success",
		"tables": map[string]interface{}{
			tables.LofIntolerant().Name():       tables.LofIntolerant().Size(),
			tables.MissenseConstrained().Name(): tables.MissenseConstrained().Size(),
		},
	})
}
