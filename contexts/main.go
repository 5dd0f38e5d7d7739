package contexts

import (
	es7 "github.com/elastic/go-elasticsearch/v7"
	"github.com/labstack/echo"

	"onigiri/api/models"
	"onigiri/api/services"
	classificationService "onigiri/api/services/classification"
)

type (
	// "Helper" Context to pass into routes that need
	//  the classification engine and other global singletons
	OnigiriContext struct {
		echo.Context
		Config                *models.Config
		Es7Client             *es7.Client
		ClassificationService *classificationService.ClassificationService
		MetricsService        *services.MetricsService
	}
)
