package services

import (
	"errors"
	"fmt"
)

// 錯誤分類。服務層統一回傳 *ServiceError，
// handlers 依 Kind 對應 HTTP 狀態碼，依 Code 填入回應的 code 欄位
type ErrorKind int

const (
	KindConflict     ErrorKind = iota + 1 // 已有進行中預約、車位已被占用
	KindNotFound                          // 預約、車位或分區不存在
	KindForbidden                         // 非預約擁有者（與 NotFound 區分，避免洩漏資源存在性）
	KindInvalidState                      // 當前狀態不允許該操作
	KindExpired                           // 超過 check-in 期限，預約已就地取消
	KindInternal                          // 基礎設施錯誤，已回滾
)

type ServiceError struct {
	Kind    ErrorKind
	Code    string // ERR_* 錯誤代碼，直接進回應
	Message string // 使用者可讀訊息
	State   string // KindInvalidState 時附上當前狀態，讓呼叫端知道下一步
	Err     error  // 底層錯誤
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func conflictError(code, message string) *ServiceError {
	return &ServiceError{Kind: KindConflict, Code: code, Message: message}
}

func notFoundError(code, message string) *ServiceError {
	return &ServiceError{Kind: KindNotFound, Code: code, Message: message}
}

func forbiddenError(code, message string) *ServiceError {
	return &ServiceError{Kind: KindForbidden, Code: code, Message: message}
}

func invalidStateError(code, message, state string) *ServiceError {
	return &ServiceError{Kind: KindInvalidState, Code: code, Message: message, State: state}
}

func expiredError(code, message string) *ServiceError {
	return &ServiceError{Kind: KindExpired, Code: code, Message: message}
}

func internalError(message string, err error) *ServiceError {
	return &ServiceError{Kind: KindInternal, Code: "ERR_INTERNAL", Message: message, Err: err}
}

// AsServiceError 取出錯誤分類，非 ServiceError 一律視為基礎設施錯誤
func AsServiceError(err error) *ServiceError {
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}
	return &ServiceError{Kind: KindInternal, Code: "ERR_INTERNAL", Message: "系統發生錯誤", Err: err}
}
