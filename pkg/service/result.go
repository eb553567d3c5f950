package service

import "net/http"

// Result is the uniform outcome of every service operation. Handlers write
// it verbatim: Status becomes the HTTP status, Data or Message the body.
// Services never return raw errors to the transport layer.
type Result struct {
	Status  int         `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func OK(data interface{}) Result {
	return Result{Status: http.StatusOK, Data: data}
}

func OKMessage(message string) Result {
	return Result{Status: http.StatusOK, Message: message}
}

func Created(data interface{}) Result {
	return Result{Status: http.StatusCreated, Data: data}
}

func BadRequest(message string) Result {
	return Result{Status: http.StatusBadRequest, Message: message}
}

func Unauthorized(message string) Result {
	return Result{Status: http.StatusUnauthorized, Message: message}
}

func Forbidden(message string) Result {
	return Result{Status: http.StatusForbidden, Message: message}
}

func NotFound(message string) Result {
	return Result{Status: http.StatusNotFound, Message: message}
}

func Conflict(message string) Result {
	return Result{Status: http.StatusConflict, Message: message}
}

func Locked(message string) Result {
	return Result{Status: http.StatusLocked, Message: message}
}

// Internal hides the underlying error behind a generic message. Callers log
// the detail before returning this.
func Internal() Result {
	return Result{Status: http.StatusInternalServerError, Message: "đã xảy ra lỗi hệ thống, vui lòng thử lại sau"}
}
