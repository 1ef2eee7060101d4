package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	apploan "github.com/xiebiao/library/internal/application/loan"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/response"
)

// LoanHandler 借阅HTTP处理器
type LoanHandler struct {
	checkout *apploan.CheckoutUseCase
	ret      *apploan.ReturnUseCase
	del      *apploan.DeleteUseCase
	query    *apploan.QueryUseCase
}

// NewLoanHandler 创建借阅处理器
func NewLoanHandler(
	checkout *apploan.CheckoutUseCase,
	ret *apploan.ReturnUseCase,
	del *apploan.DeleteUseCase,
	query *apploan.QueryUseCase,
) *LoanHandler {
	return &LoanHandler{
		checkout: checkout,
		ret:      ret,
		del:      del,
		query:    query,
	}
}

// Checkout 借书
// @Summary      借书
// @Description  只能为自己借书，管理员可以替他人借
// @Tags         借阅
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CheckoutRequest true "借阅信息"
// @Success      201 {object} apploan.TransactionDTO
// @Failure      400 {object} response.ErrorBody "缺少字段/库存不足/图书或用户不存在"
// @Failure      403 {object} response.ErrorBody "不能替他人借书"
// @Router       /transactions [post]
func (h *LoanHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.checkout.Execute(c.Request.Context(), apploan.CheckoutRequest{
		CallerID:      middleware.GetUserID(c),
		CallerIsAdmin: middleware.IsAdmin(c),
		UserID:        req.UserID,
		BookID:        req.BookID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Return 还书
// @Summary      还书
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "借阅记录ID"
// @Success      200 {object} apploan.TransactionDTO
// @Failure      400 {object} response.ErrorBody "已归还"
// @Failure      403 {object} response.ErrorBody "不是借阅人"
// @Failure      404 {object} response.ErrorBody "借阅记录不存在"
// @Router       /transactions/{id}/return [put]
func (h *LoanHandler) Return(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.ret.Execute(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Delete 删除借阅记录(管理员)
// @Summary      删除借阅记录
// @Description  未归还的记录删除时回补库存
// @Tags         借阅
// @Security     BearerAuth
// @Param        id path int true "借阅记录ID"
// @Success      204
// @Failure      403 {object} response.ErrorBody "需要管理员权限"
// @Failure      404 {object} response.ErrorBody "借阅记录不存在"
// @Router       /transactions/{id} [delete]
func (h *LoanHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.del.Execute(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// All 全部借阅记录
// @Summary      全部借阅记录
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} apploan.TransactionDTO
// @Router       /transactions [get]
func (h *LoanHandler) All(c *gin.Context) {
	list(c, h.query.All)
}

// Active 未归还
// @Summary      未归还的借阅
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} apploan.TransactionDTO
// @Router       /transactions/active [get]
func (h *LoanHandler) Active(c *gin.Context) {
	list(c, h.query.Active)
}

// Overdue 已逾期
// @Summary      逾期的借阅
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} apploan.TransactionDTO
// @Router       /transactions/overdue [get]
func (h *LoanHandler) Overdue(c *gin.Context) {
	list(c, h.query.Overdue)
}

// ByUser 某用户的借阅记录
// @Summary      按用户查询借阅
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "用户ID"
// @Success      200 {array} apploan.TransactionDTO
// @Router       /transactions/user/{id} [get]
func (h *LoanHandler) ByUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.query.ByUser(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// ByBook 某本书的借阅记录
// @Summary      按图书查询借阅
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {array} apploan.TransactionDTO
// @Router       /transactions/book/{id} [get]
func (h *LoanHandler) ByBook(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.query.ByBook(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// ByID 借阅详情
// @Summary      借阅详情
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "借阅记录ID"
// @Success      200 {object} apploan.TransactionDTO
// @Failure      404 {object} response.ErrorBody "借阅记录不存在"
// @Router       /transactions/{id} [get]
func (h *LoanHandler) ByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.query.ByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

func list(c *gin.Context, query func(ctx context.Context) ([]*apploan.TransactionDTO, error)) {
	result, err := query(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}
