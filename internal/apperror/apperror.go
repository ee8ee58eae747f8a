package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies failures so callers can decide between no-op, log-only
// and a user-facing reply.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindLookupFailure
	KindSendFailure
	KindNotFound
	KindInvalidArgument
)

// Sentinels for errors.Is checks against a kind.
var (
	Configuration   = &Error{Kind: KindConfiguration}
	LookupFailure   = &Error{Kind: KindLookupFailure}
	SendFailure     = &Error{Kind: KindSendFailure}
	NotFound        = &Error{Kind: KindNotFound}
	InvalidArgument = &Error{Kind: KindInvalidArgument}
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindLookupFailure:
		return "lookup failure"
	case KindSendFailure:
		return "send failure"
	case KindNotFound:
		return "not found"
	case KindInvalidArgument:
		return "invalid argument"
	default:
		return "unknown"
	}
}

// Error is a classified failure. Op names the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// New returns an Error of the given kind.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Newf returns an Error of the given kind with a formatted cause.
func Newf(kind Kind, op string, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same kind, so the package sentinels work
// with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// UserMessage maps an error to the text shown to a chat user. Internal
// details never leave the process.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	switch KindOf(err) {
	case KindNotFound:
		return "找不到你的員工綁定資料，請先使用 /register 完成註冊。"
	case KindLookupFailure:
		return "目前無法連線到工作區資料庫，請稍後再試。"
	case KindSendFailure:
		return "訊息傳送失敗，請稍後再試。"
	case KindInvalidArgument:
		return "輸入格式不正確，請確認後再試一次。"
	case KindConfiguration:
		return "機器人設定不完整，請聯絡管理員。"
	default:
		return "發生未預期的錯誤，請稍後再試。"
	}
}
