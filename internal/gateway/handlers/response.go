package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"juicebar-system/internal/apperrors"
	"juicebar-system/internal/gateway/middleware"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

func successResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func errorResponse(message string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
	}
}

func successWithMetaResponse(message string, data interface{}, meta interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	}
}

// writeError maps a service error onto its HTTP status. Store errors are
// logged with their driver detail and reported to the client generically.
func writeError(c *gin.Context, log *logrus.Logger, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= 500 {
		middleware.Logger(c, log).WithError(err).Error("request failed")
	}
	c.JSON(status, errorResponse(apperrors.PublicMessage(err)))
}

func parseIDParam(c *gin.Context, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.Validation("parse path", "%s must be a positive integer", param)
	}
	return id, nil
}

func parseBoolQuery(c *gin.Context, param string) bool {
	v, err := strconv.ParseBool(c.Query(param))
	return err == nil && v
}
