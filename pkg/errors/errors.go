// Package errors 定义统一的业务错误类型
//
// 错误码为5位数字，前3位即HTTP状态码：
//   - 400xx 参数校验 / 业务规则
//   - 401xx 未认证
//   - 403xx 无权限
//   - 404xx 资源不存在
//   - 409xx 资源冲突
//   - 429xx 请求过于频繁
//   - 500xx 系统内部错误
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError 应用错误
type AppError struct {
	Code    int    `json:"code"`    // 业务错误码
	Message string `json:"message"` // 返回给用户的提示
	Err     error  `json:"-"`       // 内部错误（不序列化）
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 错误码相同即视为同类错误，使WithMessage派生的错误仍能被errors.Is识别
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// HTTPStatus 错误码对应的HTTP状态码
func (e *AppError) HTTPStatus() int {
	status := e.Code / 100
	if status < 400 || status > 599 || http.StatusText(status) == "" {
		return http.StatusInternalServerError
	}
	return status
}

// WithMessage 复制错误并替换提示信息（预定义错误是共享的，不能直接修改）
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{Code: e.Code, Message: message, Err: e.Err}
}

// WithMessagef 同WithMessage，支持格式化
func (e *AppError) WithMessagef(format string, args ...interface{}) *AppError {
	return e.WithMessage(fmt.Sprintf(format, args...))
}

// New 创建业务错误
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装底层错误为内部错误
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 同Wrap，支持格式化
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapCode 以指定错误码包装底层错误
func WrapCode(err error, code int, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

const (
	ErrCodeInternal      = 50000
	ErrCodeDatabaseError = 50001
	ErrCodeRedisError    = 50002

	ErrCodeValidation        = 40000
	ErrCodeBindError         = 40001
	ErrCodeInvalidID         = 40002
	ErrCodeInvalidEmail      = 40003
	ErrCodeNoCopiesAvailable = 40010
	ErrCodeAlreadyReturned   = 40011
	ErrCodeCopiesBelowLoans  = 40012
	ErrCodeCheckoutTarget    = 40013 // 借阅时图书/用户不存在

	ErrCodeUnauthenticated    = 40100
	ErrCodeInvalidCredentials = 40101

	ErrCodeForbidden    = 40300
	ErrCodeInvalidToken = 40301
	ErrCodeNotOwner     = 40302
	ErrCodeAdminOnly    = 40303

	ErrCodeNotFound            = 40400
	ErrCodeUserNotFound        = 40401
	ErrCodeBookNotFound        = 40402
	ErrCodeTransactionNotFound = 40403

	ErrCodeConflict       = 40900
	ErrCodeEmailDuplicate = 40901
	ErrCodeISBNDuplicate  = 40902

	ErrCodeTooManyRequests = 42900
)

var (
	ErrInternal      = New(ErrCodeInternal, "Internal server error")
	ErrDatabaseError = New(ErrCodeDatabaseError, "Database error")
	ErrRedisError    = New(ErrCodeRedisError, "Cache error")

	ErrValidation   = New(ErrCodeValidation, "Invalid request")
	ErrBindError    = New(ErrCodeBindError, "Malformed request body")
	ErrInvalidID    = New(ErrCodeInvalidID, "Invalid id")
	ErrInvalidEmail = New(ErrCodeInvalidEmail, "Invalid email address")

	ErrUnauthenticated    = New(ErrCodeUnauthenticated, "Access denied. No token provided.")
	ErrInvalidCredentials = New(ErrCodeInvalidCredentials, "Invalid email or password")

	ErrForbidden    = New(ErrCodeForbidden, "Forbidden")
	ErrInvalidToken = New(ErrCodeInvalidToken, "Invalid or expired token")
	ErrAdminOnly    = New(ErrCodeAdminOnly, "Admin privileges required")

	ErrNotFound     = New(ErrCodeNotFound, "Not Found")
	ErrUserNotFound = New(ErrCodeUserNotFound, "User not found")
	ErrBookNotFound = New(ErrCodeBookNotFound, "Book not found")

	ErrConflict       = New(ErrCodeConflict, "Conflict")
	ErrEmailDuplicate = New(ErrCodeEmailDuplicate, "Email already exists")
	ErrISBNDuplicate  = New(ErrCodeISBNDuplicate, "ISBN already exists")

	ErrTooManyRequests = New(ErrCodeTooManyRequests, "Too many requests, please try again later")
)

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError，非AppError一律包装为内部错误
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, ErrInternal.Message)
}

// HasCode 判断错误链中是否存在指定错误码的AppError
func HasCode(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
