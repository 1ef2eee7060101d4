package loan

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

var (
	ErrTransactionNotFound = apperrors.New(apperrors.ErrCodeTransactionNotFound, "Transaction not found")

	ErrNoCopiesAvailable = apperrors.New(apperrors.ErrCodeNoCopiesAvailable, "No copies available")

	ErrAlreadyReturned = apperrors.New(apperrors.ErrCodeAlreadyReturned, "Book already returned")

	ErrNotOwner = apperrors.New(apperrors.ErrCodeNotOwner, "You are not authorized to return this book")

	// ErrCheckoutTarget 借阅时图书或用户不存在（按400处理）
	ErrCheckoutTarget = apperrors.New(apperrors.ErrCodeCheckoutTarget, "Book or user not found")

	ErrMissingFields = apperrors.New(apperrors.ErrCodeValidation, "Missing required fields: user_id, and book_id are required")

	ErrCheckoutForOther = apperrors.New(apperrors.ErrCodeForbidden, "You can only check out books for yourself")
)
