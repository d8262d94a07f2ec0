package pkg

import (
	"errors"
	"net/http"
)

// 全局错误分类。业务层尽早校验并返回对应错误，
// handler 统一用 HTTPStatus/ErrCode 映射到响应。
var (
	ErrValidation          = errors.New("validation error")
	ErrDuplicateInvitation = errors.New("duplicate invitation")
	ErrAlreadyLinked       = errors.New("already linked")
	ErrNotFound            = errors.New("not found")
	ErrStoryLocked         = errors.New("story locked")
	ErrDeadlinePassed      = errors.New("deadline passed")
	ErrAlreadySubmitted    = errors.New("already submitted")
	ErrMediaLimitExceeded  = errors.New("media limit exceeded")
	ErrInvalidMediaType    = errors.New("invalid media type")
	ErrPayloadTooLarge     = errors.New("payload too large")

	// ErrTransient 存储暂时不可用，可退避重试
	ErrTransient = errors.New("store temporarily unavailable")
	// ErrFatal 不该发生的不变量破坏（比如插入撞了唯一约束），直接上抛，不重试
	ErrFatal = errors.New("invariant violated")
)

var errCodes = map[error]string{
	ErrValidation:          "ValidationError",
	ErrDuplicateInvitation: "DuplicateInvitation",
	ErrAlreadyLinked:       "AlreadyLinked",
	ErrNotFound:            "NotFound",
	ErrStoryLocked:         "StoryLocked",
	ErrDeadlinePassed:      "DeadlinePassed",
	ErrAlreadySubmitted:    "AlreadySubmitted",
	ErrMediaLimitExceeded:  "MediaLimitExceeded",
	ErrInvalidMediaType:    "InvalidMediaType",
	ErrPayloadTooLarge:     "PayloadTooLarge",
	ErrTransient:           "Transient",
	ErrFatal:               "Fatal",
}

var errStatus = map[error]int{
	ErrValidation:          http.StatusBadRequest,
	ErrDuplicateInvitation: http.StatusConflict,
	ErrAlreadyLinked:       http.StatusConflict,
	ErrNotFound:            http.StatusNotFound,
	ErrStoryLocked:         http.StatusConflict,
	ErrDeadlinePassed:      http.StatusConflict,
	ErrAlreadySubmitted:    http.StatusConflict,
	ErrMediaLimitExceeded:  http.StatusBadRequest,
	ErrInvalidMediaType:    http.StatusBadRequest,
	ErrPayloadTooLarge:     http.StatusRequestEntityTooLarge,
	ErrTransient:           http.StatusServiceUnavailable,
	ErrFatal:               http.StatusInternalServerError,
}

// ErrCode 返回机器可读的错误码
func ErrCode(err error) string {
	for e, code := range errCodes {
		if errors.Is(err, e) {
			return code
		}
	}
	return "Internal"
}

// HTTPStatus 校验/冲突类映射 4xx，存储故障映射 5xx
func HTTPStatus(err error) int {
	for e, status := range errStatus {
		if errors.Is(err, e) {
			return status
		}
	}
	return http.StatusInternalServerError
}
