package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo"

	serviceErrors "onigiri/api/models/dtos/errors"
	"onigiri/api/utils"
)

/*
	Echo middleware to ensure classification requests carry a JSON body
*/
func MandateJsonBody(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Request().Body == nil || c.Request().ContentLength == 0 {
			return c.JSON(http.StatusBadRequest,
				serviceErrors.CreateSimpleBadRequest("Missing request body - provide a JSON array of variant views"))
		}

		return next(c)
	}
}

/*
	Echo middleware to ensure a valid `runId` HTTP query parameter was provided
*/
func MandateRunIdAttribute(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		// check for runId query parameter
		runId := c.QueryParam("runId")
		if len(runId) == 0 {
			// if no id was provided, or is invalid, return an error
			return c.JSON(http.StatusBadRequest,
				serviceErrors.CreateSimpleBadRequest("Missing run id"))
		}

		// verify runId is a valid UUID
		// - assume it's a valid run id if it's a uuid,
		//   further verification is done later
		if !utils.IsValidUUID(runId) {
			fmt.Printf("Invalid run id %s\n", runId)

			return c.JSON(http.StatusBadRequest,
				serviceErrors.CreateSimpleBadRequest(
					fmt.Sprintf("Invalid run id %s - please provide a valid UUID", runId)))
		}

		return next(c)
	}
}
