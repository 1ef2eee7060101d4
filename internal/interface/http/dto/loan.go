package dto

// CheckoutRequest 借书
type CheckoutRequest struct {
	UserID uint `json:"user_id" example:"1"`
	BookID uint `json:"book_id" example:"1"`
}
