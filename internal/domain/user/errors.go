package user

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

var (
	ErrUserNotFound = apperrors.ErrUserNotFound

	ErrEmailDuplicate = apperrors.ErrEmailDuplicate

	ErrInvalidCredentials = apperrors.ErrInvalidCredentials

	ErrInvalidEmail = apperrors.ErrInvalidEmail

	ErrCredentialsRequired = apperrors.New(apperrors.ErrCodeValidation, "Email and password are required")

	// bcrypt只处理前72字节
	ErrPasswordTooLong = apperrors.New(apperrors.ErrCodeValidation, "Password must be at most 72 bytes")
)
