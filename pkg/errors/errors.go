package errors

import (
	"errors"
	"fmt"
)

// Kind 业务错误分类，决定 HTTP 状态码与是否记录错误日志
type Kind int

const (
	// KindInternal 存储不可用等内部错误 → 5xx
	KindInternal Kind = iota
	// KindValidation 输入格式或取值非法 → 400，不自动重试
	KindValidation
	// KindConflict 配置变更冲突 → 409，调用方需重新拉取后重试
	KindConflict
	// KindNotFound 资源不存在 → 404
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error 带分类的业务错误
type Error struct {
	Kind    Kind
	Code    int    // 业务错误码，写入响应体 code 字段
	Field   string // 仅校验错误使用：出错的请求字段
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is 同一业务码视为同一错误，便于 errors.Is 比对哨兵错误
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code && e.Code != 0
}

// Validation 创建字段级校验错误
func Validation(code int, field, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Field: field, Message: message}
}

// Conflict 创建冲突错误
func Conflict(code int, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

// NotFound 创建资源不存在错误
func NotFound(code int, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

// Internal 包装底层错误为内部错误
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Code: 50000, Message: message, Err: err}
}

// Wrap 保留哨兵错误的分类与错误码，并附带底层原因
func Wrap(sentinel *Error, err error) *Error {
	cp := *sentinel
	cp.Err = err
	return &cp
}

// KindOf 返回错误分类；非 *Error 一律视为内部错误
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As 是标准库 errors.As 的转发，避免调用方同时导入两个 errors 包
func As(err error, target any) bool { return errors.As(err, target) }

// Is 是标准库 errors.Is 的转发
func Is(err, target error) bool { return errors.Is(err, target) }
