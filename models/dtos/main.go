package dtos

import (
	"time"

	"onigiri/api/models"
)

type ClassificationResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

type ClassificationRunResponse struct {
	ClassificationResponse
	RunId   string                        `json:"runId"`
	Count   int                           `json:"count"`
	Results []models.ClassificationResult `json:"results"`
}

type ClassificationOverviewResponse struct {
	ClassificationResponse
	Data map[string]interface{} `json:"data"`
}

type MetricsResponse struct {
	ClassificationResponse
	Data map[string]interface{} `json:"data"`
}

// -- --

type GeneralErrorResponseDto struct {
	Code      int            `json:"code"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Errors    []GeneralError `json:"errors"`
}

type GeneralError struct {
	Message string `json:"message"`
}
