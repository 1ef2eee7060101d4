package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUserRegisterAndLogin 注册、登录、个人资料
func TestUserRegisterAndLogin(t *testing.T) {
	email := GenerateTestEmail("reader")

	t.Run("注册", func(t *testing.T) {
		res := Do(t, http.MethodPost, "/users/register", map[string]string{"email": email, "password": TestPassword}, "")
		require.Equal(t, http.StatusCreated, res.Status, "%s", res.Body)

		var data AuthData
		res.Decode(t, &data)
		assert.Equal(t, "User registered successfully", data.Message)
		assert.Equal(t, email, data.User.Email)
		assert.Equal(t, "member", data.User.Role)
		assert.NotEmpty(t, data.Token)
	})

	t.Run("重复注册返回409", func(t *testing.T) {
		res := Do(t, http.MethodPost, "/users/register", map[string]string{"email": email, "password": TestPassword}, "")
		assert.Equal(t, http.StatusConflict, res.Status)
		assert.Equal(t, "Email already exists", res.Message(t))
	})

	t.Run("密码错误返回401", func(t *testing.T) {
		res := Do(t, http.MethodPost, "/users/login", map[string]string{"email": email, "password": "wrong"}, "")
		assert.Equal(t, http.StatusUnauthorized, res.Status)
	})

	t.Run("登录后获取资料，登出后Token失效", func(t *testing.T) {
		res := Do(t, http.MethodPost, "/users/login", map[string]string{"email": email, "password": TestPassword}, "")
		require.Equal(t, http.StatusOK, res.Status)
		var data AuthData
		res.Decode(t, &data)

		res = Do(t, http.MethodGet, "/users/me", nil, data.Token)
		require.Equal(t, http.StatusOK, res.Status)
		var me UserData
		res.Decode(t, &me)
		assert.Equal(t, email, me.Email)

		res = Do(t, http.MethodPost, "/users/logout", nil, data.Token)
		require.Equal(t, http.StatusOK, res.Status)

		// 未启用Redis时黑名单不生效
		res = Do(t, http.MethodGet, "/users/me", nil, data.Token)
		assert.Contains(t, []int{http.StatusOK, http.StatusForbidden}, res.Status)
	})
}

// TestUserAuthErrors 认证失败的状态码
func TestUserAuthErrors(t *testing.T) {
	res := Do(t, http.MethodGet, "/users/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, res.Status)
	assert.Equal(t, "Access denied. No token provided.", res.Message(t))

	res = Do(t, http.MethodGet, "/users/me", nil, "not-a-jwt")
	assert.Equal(t, http.StatusForbidden, res.Status)

	_, token := RegisterTestUser(t, "member")
	res = Do(t, http.MethodGet, "/users", nil, token)
	assert.Equal(t, http.StatusForbidden, res.Status)
}

// TestAdminDeletesUser 管理员删除用户
func TestAdminDeletesUser(t *testing.T) {
	admin := AdminToken(t)
	u, _ := RegisterTestUser(t, "doomed")

	res := Do(t, http.MethodDelete, fmt.Sprintf("/users/%d", u.ID), nil, admin)
	assert.Equal(t, http.StatusNoContent, res.Status)

	res = Do(t, http.MethodDelete, fmt.Sprintf("/users/%d", u.ID), nil, admin)
	assert.Equal(t, http.StatusNotFound, res.Status)
}
