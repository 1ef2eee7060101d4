package book

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 图书领域错误
var (
	ErrBookNotFound = apperrors.ErrBookNotFound

	ErrISBNDuplicate = apperrors.ErrISBNDuplicate

	ErrTitleRequired = apperrors.New(apperrors.ErrCodeValidation, "Title is required")

	ErrAuthorRequired = apperrors.New(apperrors.ErrCodeValidation, "Author is required")

	ErrFieldTooLong = apperrors.New(apperrors.ErrCodeValidation, "Field is too long")

	ErrCopiesBelowLoans = apperrors.New(apperrors.ErrCodeCopiesBelowLoans, "Copies cannot be lower than the number of copies checked out")

	// ErrStockExhausted 条件更新未命中（库存已为0）
	ErrStockExhausted = apperrors.New(apperrors.ErrCodeNoCopiesAvailable, "No copies available")
)
