package main

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/labstack/echo"
	echoMiddleware "github.com/labstack/echo/middleware"

	"onigiri/api/contexts"
	om "onigiri/api/middleware"
	"onigiri/api/models"
	serviceInfoConst "onigiri/api/models/constants/service-info"
	classificationMvc "onigiri/api/mvc/classification"
	serviceInfoMvc "onigiri/api/mvc/service-info"
	esRepo "onigiri/api/repositories/elasticsearch"
	"onigiri/api/repositories/reference"
	"onigiri/api/services"
	classificationService "onigiri/api/services/classification"
	"onigiri/api/utils"

	es7 "github.com/elastic/go-elasticsearch/v7"
)

func main() {
	// Gather environment variables
	var cfg models.Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	// Optional engine calibration overlay
	if cfg.Api.CalibrationPath != "" {
		if calibrationErr := cfg.ApplyCalibrationFile(cfg.Api.CalibrationPath); calibrationErr != nil {
			fmt.Println(calibrationErr)
			os.Exit(2)
		}
	}

	fmt.Printf("Using : \n"+

		"\tDebug : %t \n\n"+

		"\tGene Table Path : %s \n"+
		"\tCalibration Path : %s \n"+
		"\tClassification Concurrency Level : %d\n"+
		"\tMetrics Snapshot Interval (minutes) : %d\n\n"+

		"\tStrong Evidence Threshold : %d\n"+
		"\tBalanced Conflict Band : [%.2f, %.2f]\n\n"+

		"\tElasticsearch Enabled : %t\n"+
		"\tElasticsearch Url : %s \n"+
		"\tElasticsearch Username : %s\n\n"+

		"Running on Port : %s\n",

		cfg.Debug,
		cfg.Api.GeneTablePath,
		cfg.Api.CalibrationPath,
		cfg.Api.ClassificationConcurrencyLevel,
		cfg.Api.MetricsSnapshotIntervalMinutes,
		cfg.Engine.StrongEvidenceThreshold,
		cfg.Engine.BalancedConflictMin, cfg.Engine.BalancedConflictMax,
		cfg.Elasticsearch.Enabled,
		cfg.Elasticsearch.Url, cfg.Elasticsearch.Username,
		cfg.Api.Port)
	// --

	// Reference tables: curated defaults, optionally replaced from disk
	if cfg.Api.GeneTablePath != "" {
		tables, tablesErr := reference.LoadTablesFromJson(cfg.Api.GeneTablePath)
		if tablesErr != nil {
			fmt.Println(tablesErr)
			os.Exit(2)
		}
		reference.Swap(tables)
	}

	// Instantiate Server
	e := echo.New()

	// Service Connections:
	// -- Elasticsearch (optional: classification-result persistence only)
	var es *es7.Client
	if cfg.Elasticsearch.Enabled {
		es = utils.CreateEsConnection(&cfg)

		if indexErr := esRepo.CreateClassificationsIndex(&cfg, es); indexErr != nil {
			fmt.Println(indexErr)
		}
	}

	// Service Singletons
	// -- a nil Tables pins the engine to the package-published
	//    reference so gene-table reloads take effect
	classificationSvc, engineErr := classificationService.NewClassificationService(&cfg, nil, &classificationService.ViewFrequencyProvider{})
	if engineErr != nil {
		fmt.Println(engineErr)
		os.Exit(2)
	}
	metricsSvc := services.NewMetricsService(&cfg)

	// Configure Server
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST},
	}))

	// -- Override handlers with "custom Onigiri" context
	//		to be able to provide variables and global singletons
	e.Use(func(h echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			oc := &contexts.OnigiriContext{
				Context:               c,
				Config:                &cfg,
				Es7Client:             es,
				ClassificationService: classificationSvc,
				MetricsService:        metricsSvc,
			}
			return h(oc)
		}
	})

	// Begin MVC Routes
	// -- service-info
	e.GET("/service-info", serviceInfoMvc.GetServiceInfo)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(200, string(serviceInfoConst.SERVICE_WELCOME))
	})

	// -- classification
	e.POST("/variants/classify", classificationMvc.ClassificationRun,
		om.MandateJsonBody)
	e.GET("/variants/classification/overview", classificationMvc.ClassificationOverview)
	e.GET("/variants/classification/run", classificationMvc.GetClassificationRun,
		om.MandateRunIdAttribute)

	// -- metrics
	e.GET("/metrics", classificationMvc.GetMetrics)

	// -- reference tables
	e.POST("/reference/gene-tables/reload", classificationMvc.ReloadGeneTables)

	// Run
	e.Logger.Fatal(e.Start(":" + cfg.Api.Port))
}
