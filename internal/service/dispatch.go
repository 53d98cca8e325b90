// Package service 包含了应用的业务逻辑层：每个用例一个调度入口，
// 所有错误都在这里被吸收并转换为同类型的兜底结果。
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-workbench/internal/encoder"
	"ai-workbench/internal/schema"
	"ai-workbench/pkg/llm"
	"ai-workbench/pkg/log"
)

// callState 是单次调度的状态：idle -> pending -> resolved | fallback。
type callState string

const (
	stateIdle     callState = "idle"
	statePending  callState = "pending"
	stateResolved callState = "resolved"
	stateFallback callState = "fallback"
)

// dispatch runs call once and always returns a value: the call's result, or
// fallback(err) when it fails or panics.
func dispatch[T any](ctx context.Context, op string, fallback func(error) T, call func(context.Context) (T, error)) (result T) {
	start := time.Now()
	log.Infow("[Dispatcher] 状态变更", "op", op, "from", stateIdle, "to", statePending)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic in %s: %v", op, r)
			log.Errorw("[Dispatcher] 调用异常，返回兜底结果", "op", op, "to", stateFallback, "error", err)
			result = fallback(err)
		}
	}()

	v, err := call(ctx)
	if err != nil {
		log.Warnw("[Dispatcher] 调用失败，返回兜底结果",
			"op", op,
			"from", statePending,
			"to", stateFallback,
			"errorKind", errorKind(err),
			"error", err,
			"latency", time.Since(start).String(),
		)
		return fallback(err)
	}
	log.Infow("[Dispatcher] 状态变更", "op", op, "from", statePending, "to", stateResolved, "latency", time.Since(start).String())
	return v
}

// errorKind 将错误归入固定的分类，便于日志检索。
func errorKind(err error) string {
	var (
		encErr       *encoder.EncodingError
		transportErr *llm.TransportError
		schemaErr    *schema.ViolationError
		emptyErr     *llm.EmptyResponseError
	)
	switch {
	case errors.As(err, &encErr):
		return "encoding"
	case errors.As(err, &transportErr), errors.Is(err, llm.ErrInvalidRequest):
		return "transport"
	case errors.As(err, &schemaErr):
		return "schema_violation"
	case errors.As(err, &emptyErr):
		return "empty_response"
	default:
		return "unknown"
	}
}

func isEmptyResponse(err error) bool {
	var emptyErr *llm.EmptyResponseError
	return errors.As(err, &emptyErr)
}

// constant returns a fallback that ignores the error.
func constant[T any](v T) func(error) T {
	return func(error) T { return v }
}
