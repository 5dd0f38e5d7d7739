package mvc

import (
	es7 "github.com/elastic/go-elasticsearch/v7"
	"github.com/labstack/echo"

	"onigiri/api/contexts"
	"onigiri/api/models"
	"onigiri/api/services"
	classificationService "onigiri/api/services/classification"
)

func RetrieveCommonElements(c echo.Context) (*models.Config, *es7.Client, *classificationService.ClassificationService, *services.MetricsService) {
	oc := c.(*contexts.OnigiriContext)

	return oc.Config, oc.Es7Client, oc.ClassificationService, oc.MetricsService
}
