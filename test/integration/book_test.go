package integration

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBookCatalog 图书增删改查与分页搜索
func TestBookCatalog(t *testing.T) {
	b := CreateTestBook(t, "集成测试：Go语言高级编程", 3)
	defer DeleteTestBook(t, b.ID)

	t.Run("新增后可用库存等于馆藏", func(t *testing.T) {
		assert.Equal(t, 3, b.Copies)
		assert.Equal(t, 3, b.AvailableCopies)
		assert.Equal(t, 0, b.CheckedOut)
	})

	t.Run("缺少标题返回400", func(t *testing.T) {
		res := Do(t, http.MethodPost, "/books", map[string]string{"author": "无名"}, "")
		assert.Equal(t, http.StatusBadRequest, res.Status)
	})

	t.Run("ISBN重复返回409", func(t *testing.T) {
		require.NotNil(t, b.ISBN)
		res := Do(t, http.MethodPost, "/books", map[string]interface{}{
			"title": "重复", "author": "某人", "isbn": *b.ISBN,
		}, "")
		assert.Equal(t, http.StatusConflict, res.Status)
	})

	t.Run("按标题搜索", func(t *testing.T) {
		res := Do(t, http.MethodGet, "/api/books?limit=100&search="+url.QueryEscape("Go语言高级编程"), nil, "")
		require.Equal(t, http.StatusOK, res.Status)

		var page struct {
			Books      []BookData `json:"books"`
			Pagination struct {
				Total int64 `json:"total"`
				Page  int   `json:"page"`
				Limit int   `json:"limit"`
			} `json:"pagination"`
		}
		res.Decode(t, &page)
		assert.Equal(t, 1, page.Pagination.Page)
		assert.Equal(t, 100, page.Pagination.Limit)

		found := false
		for _, item := range page.Books {
			found = found || item.ID == b.ID
		}
		assert.True(t, found, "搜索结果应包含新增图书")
	})

	t.Run("部分更新", func(t *testing.T) {
		res := Do(t, http.MethodPut, fmt.Sprintf("/books/%d", b.ID), map[string]interface{}{"copies": 5}, "")
		require.Equal(t, http.StatusOK, res.Status, "%s", res.Body)

		var updated BookData
		res.Decode(t, &updated)
		assert.Equal(t, b.Title, updated.Title)
		assert.Equal(t, 5, updated.TotalCopies)
	})

	t.Run("非法ID返回400", func(t *testing.T) {
		res := Do(t, http.MethodGet, "/books/abc", nil, "")
		assert.Equal(t, http.StatusBadRequest, res.Status)
	})

	t.Run("删除后404", func(t *testing.T) {
		other := CreateTestBook(t, "集成测试：待删除", 1)
		res := Do(t, http.MethodDelete, fmt.Sprintf("/books/%d", other.ID), nil, "")
		assert.Equal(t, http.StatusNoContent, res.Status)

		res = Do(t, http.MethodGet, fmt.Sprintf("/books/%d", other.ID), nil, "")
		assert.Equal(t, http.StatusNotFound, res.Status)
		assert.Equal(t, "Book not found", res.Message(t))
	})
}
