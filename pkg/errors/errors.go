package errors

import (
	"cryptosignals/pkg/errors/ecode"
	stderrors "errors"
	"fmt"
)

// codeError 携带业务错误码的错误
type codeError struct {
	code    int
	message string
	cause   error
}

func (e *codeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *codeError) Unwrap() error {
	return e.cause
}

func (e *codeError) Code() int {
	return e.code
}

func WithCode(code int, message string) error {
	return &codeError{code: code, message: message}
}

func WithCodef(code int, format string, args ...any) error {
	return &codeError{code: code, message: fmt.Sprintf(format, args...)}
}

// Wrap 给 err 附加错误码和提示信息。err 为 nil 时仍然返回带码的错误，
// 便于 response.JSON(ctx, errors.Wrap(err, ecode.Success, "ok"), data) 的写法。
func Wrap(err error, code int, message string) error {
	return &codeError{code: code, message: message, cause: err}
}

func Wrapf(err error, code int, format string, args ...any) error {
	return &codeError{code: code, message: fmt.Sprintf(format, args...), cause: err}
}

// DecodeErr 解析出错误码和给用户看的信息。被包装的原始错误不会暴露给客户端。
func DecodeErr(err error) (int, string) {
	if err == nil {
		return ecode.Success, ecode.Text(ecode.Success)
	}
	var ce *codeError
	if stderrors.As(err, &ce) {
		return ce.code, ce.message
	}
	return ecode.Unknown, err.Error()
}

// Is / As 透传标准库，调用方只需引入本包
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target any) bool {
	return stderrors.As(err, target)
}

func New(text string) error {
	return stderrors.New(text)
}
