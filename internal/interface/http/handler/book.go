package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/library/internal/application/book"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/pkg/response"
)

// BookHandler 图书目录HTTP处理器
type BookHandler struct {
	listBooks   *appbook.ListBooksUseCase
	getBook     *appbook.GetBookUseCase
	manageBooks *appbook.ManageBooksUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	listBooks *appbook.ListBooksUseCase,
	getBook *appbook.GetBookUseCase,
	manageBooks *appbook.ManageBooksUseCase,
) *BookHandler {
	return &BookHandler{
		listBooks:   listBooks,
		getBook:     getBook,
		manageBooks: manageBooks,
	}
}

// ListBooks 分页查询图书
// @Summary      分页查询图书
// @Description  按标题/作者/分类模糊搜索，page<1按1，limit缺省10、上限100
// @Tags         图书
// @Produce      json
// @Param        page   query int    false "页码"
// @Param        limit  query int    false "每页数量"
// @Param        search query string false "关键字"
// @Success      200 {object} appbook.ListBooksResponse
// @Router       /api/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	// 非数字的page/limit按0处理，由用例换成缺省值
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	result, err := h.listBooks.Execute(c.Request.Context(), appbook.ListBooksRequest{
		Page:   page,
		Limit:  limit,
		Search: c.Query("search"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// AllBooks 完整目录
// @Summary      完整图书目录
// @Tags         图书
// @Produce      json
// @Success      200 {array} appbook.BookDTO
// @Router       /books [get]
func (h *BookHandler) AllBooks(c *gin.Context) {
	books, err := h.getBook.All(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, books)
}

// GetBook 图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} appbook.BookDTO
// @Failure      400 {object} response.ErrorBody "ID格式错误"
// @Failure      404 {object} response.ErrorBody "图书不存在"
// @Router       /books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	b, err := h.getBook.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, b)
}

// CreateBook 新增图书
// @Summary      新增图书
// @Tags         图书
// @Accept       json
// @Produce      json
// @Param        request body dto.BookRequest true "图书信息"
// @Success      201 {object} appbook.BookDTO
// @Failure      400 {object} response.ErrorBody "参数错误"
// @Failure      409 {object} response.ErrorBody "ISBN已存在"
// @Router       /books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req dto.BookRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.manageBooks.Create(c.Request.Context(), req.Fields())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, b)
}

// UpdateBook 修改图书
// @Summary      修改图书
// @Description  只更新提供的字段；copies为馆藏总数，不能少于未归还数量
// @Tags         图书
// @Accept       json
// @Produce      json
// @Param        id      path int             true "图书ID"
// @Param        request body dto.BookRequest true "图书信息"
// @Success      200 {object} appbook.BookDTO
// @Failure      400 {object} response.ErrorBody "参数错误"
// @Failure      404 {object} response.ErrorBody "图书不存在"
// @Failure      409 {object} response.ErrorBody "ISBN已存在"
// @Router       /books/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.BookRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.manageBooks.Update(c.Request.Context(), id, req.Fields())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, b)
}

// DeleteBook 删除图书
// @Summary      删除图书
// @Description  借阅记录一并删除
// @Tags         图书
// @Param        id path int true "图书ID"
// @Success      204
// @Failure      404 {object} response.ErrorBody "图书不存在"
// @Router       /books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.manageBooks.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
