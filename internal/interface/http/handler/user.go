package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appuser "github.com/xiebiao/library/internal/application/user"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/response"
)

// UserHandler 用户HTTP处理器
// 只负责解析请求、调用用例、输出响应
type UserHandler struct {
	auth    *appuser.AuthUseCase
	account *appuser.AccountUseCase
}

// NewUserHandler 创建用户处理器
func NewUserHandler(auth *appuser.AuthUseCase, account *appuser.AccountUseCase) *UserHandler {
	return &UserHandler{auth: auth, account: account}
}

// Register 用户注册
// @Summary      用户注册
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.CredentialsRequest true "注册信息"
// @Success      201 {object} appuser.AuthResponse
// @Failure      400 {object} response.ErrorBody "参数错误"
// @Failure      409 {object} response.ErrorBody "邮箱已存在"
// @Failure      429 {object} response.ErrorBody "请求过于频繁"
// @Router       /users/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.CredentialsRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.auth.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Login 用户登录
// @Summary      用户登录
// @Description  校验邮箱密码，返回24小时有效的JWT
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.CredentialsRequest true "登录信息"
// @Success      200 {object} appuser.AuthResponse
// @Failure      400 {object} response.ErrorBody "参数错误"
// @Failure      401 {object} response.ErrorBody "邮箱或密码错误"
// @Failure      429 {object} response.ErrorBody "请求过于频繁"
// @Router       /users/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.CredentialsRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Logout 登出，当前Token加入黑名单
// @Summary      登出
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.MessageBody
// @Failure      401 {object} response.ErrorBody "未登录"
// @Router       /users/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), middleware.GetClaims(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Logged out successfully")
}

// Me 当前用户资料
// @Summary      当前用户资料
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} user.Profile
// @Failure      401 {object} response.ErrorBody "未登录"
// @Failure      404 {object} response.ErrorBody "用户不存在"
// @Router       /users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	profile, err := h.account.Profile(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, profile)
}

// UpdateMe 修改邮箱/密码
// @Summary      修改当前用户资料
// @Tags         用户
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.UpdateUserRequest true "修改内容"
// @Success      200 {object} appuser.UpdateResponse
// @Failure      400 {object} response.ErrorBody "参数错误"
// @Failure      409 {object} response.ErrorBody "邮箱已存在"
// @Router       /users/me [put]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req dto.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.account.Update(c.Request.Context(), middleware.GetUserID(c), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// ListUsers 全部用户(管理员)
// @Summary      用户列表
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} user.Profile
// @Failure      403 {object} response.ErrorBody "需要管理员权限"
// @Router       /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.account.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, users)
}

// DeleteUser 删除用户(管理员)
// @Summary      删除用户
// @Description  借阅记录一并删除
// @Tags         用户
// @Security     BearerAuth
// @Param        id path int true "用户ID"
// @Success      204
// @Failure      403 {object} response.ErrorBody "需要管理员权限"
// @Failure      404 {object} response.ErrorBody "用户不存在"
// @Router       /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.account.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
