package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type APIResponse struct {
	Success     bool              `json:"success"`
	Message     string            `json:"message,omitempty"`
	Data        interface{}       `json:"data,omitempty"`
	Count       *int              `json:"count,omitempty"`
	Total       *int64            `json:"total,omitempty"`
	Pages       *int              `json:"pages,omitempty"`
	CurrentPage *int              `json:"currentPage,omitempty"`
	Code        string            `json:"code,omitempty"`
	Errors      map[string]string `json:"errors,omitempty"`
}

// ListMeta carries the counters attached to list endpoints.
type ListMeta struct {
	Count       int
	Total       *int64
	Pages       *int
	CurrentPage *int
}

func SuccessResponse(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func CreatedResponse(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func ListResponse(c *gin.Context, data interface{}, meta *ListMeta) {
	count := meta.Count
	c.JSON(http.StatusOK, APIResponse{
		Success:     true,
		Data:        data,
		Count:       &count,
		Total:       meta.Total,
		Pages:       meta.Pages,
		CurrentPage: meta.CurrentPage,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Code:    code,
		Message: message,
	})
}

func ValidationErrorResponse(c *gin.Context, errors map[string]string) {
	c.JSON(http.StatusBadRequest, APIResponse{
		Success: false,
		Code:    ErrValidation.Code,
		Message: ErrMsgValidationFailed,
		Errors:  errors,
	})
}

func UnauthorizedResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnauthorized, ErrUnauthorized.Code, message)
}

func ForbiddenResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusForbidden, ErrForbidden.Code, message)
}

func BadRequestResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

// HandleError writes the envelope for any error returned by a service.
// Errors that are not *AppError are reported as 500; their text is only
// exposed while gin runs in debug mode.
func HandleError(c *gin.Context, err error) {
	appErr := FromError(err)
	if len(appErr.Details) > 0 {
		ValidationErrorResponse(c, appErr.Details)
		return
	}

	message := appErr.Message
	if appErr.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
		if gin.Mode() == gin.DebugMode && appErr.Err != nil {
			message = appErr.Err.Error()
		}
	}

	ErrorResponse(c, appErr.Status, appErr.Code, message)
}
