// Package response 统一HTTP响应输出
package response

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// ErrorBody 错误响应体
type ErrorBody struct {
	Message string `json:"message" example:"Book not found"`
	Code    int    `json:"code,omitempty" example:"40402"`
	Error   string `json:"error,omitempty"` // 仅非release模式返回
}

// MessageBody 仅包含提示信息的响应体
type MessageBody struct {
	Message string `json:"message" example:"ok"`
}

// OK 200
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created 201
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// NoContent 204
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Message 仅返回提示信息
func Message(c *gin.Context, status int, message string) {
	c.JSON(status, MessageBody{Message: message})
}

// Error 将错误映射为HTTP状态码和 {message} 响应体
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	status := appErr.HTTPStatus()

	body := ErrorBody{Message: appErr.Message, Code: appErr.Code}
	if appErr.Err != nil && gin.Mode() != gin.ReleaseMode {
		body.Error = appErr.Err.Error()
	}

	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"code", appErr.Code,
			"error", err,
		)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}
