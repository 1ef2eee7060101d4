package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/response"
)

// pathID 解析路径中的正整数id，失败时已写入400
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, apperrors.ErrInvalidID.WithMessagef("Invalid %s", name))
		return 0, false
	}
	return uint(id), true
}

// bindJSON 解析请求体，失败时已写入400
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, apperrors.WrapCode(err, apperrors.ErrCodeBindError, apperrors.ErrBindError.Message))
		return false
	}
	return true
}
