package textgen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"employee-portal/backend/internal/infra/metrics"
	"employee-portal/backend/internal/infra/ratelimit"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "employee-portal/textgen"

// WithTimeout 为每次调用设置独立超时，超时视为失败。
func WithTimeout(next Generator, timeout time.Duration) Generator {
	if timeout <= 0 {
		return next
	}
	return GeneratorFunc(func(ctx context.Context, p Prompt) (string, error) {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		out, err := next.Generate(callCtx, p)
		if err != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", wrapErr("timeout", fmt.Errorf("exceeded %s: %w", timeout, context.DeadlineExceeded))
		}
		return out, err
	})
}

// WithQuota 按“功能 + 用户”限制调用次数；上下文中没有用户时不计数。
func WithQuota(next Generator, limiter ratelimit.Limiter, feature string, limit int, window time.Duration) Generator {
	if limiter == nil || limit <= 0 {
		return next
	}
	return GeneratorFunc(func(ctx context.Context, p Prompt) (string, error) {
		userID, ok := UserFromContext(ctx)
		if !ok {
			return next.Generate(ctx, p)
		}
		res, err := limiter.Allow(ctx, ratelimit.QuotaKey(feature, userID), limit, window)
		if err != nil {
			return "", wrapErr("quota", err)
		}
		if !res.Allowed {
			return "", &ServiceError{Provider: "quota", Err: fmt.Errorf("%w, retry after %s", ErrQuotaExceeded, res.RetryAfter.Round(time.Second))}
		}
		return next.Generate(ctx, p)
	})
}

// WithMetrics 记录调用结果与耗时。
func WithMetrics(next Generator, feature string) Generator {
	return GeneratorFunc(func(ctx context.Context, p Prompt) (string, error) {
		start := time.Now()
		out, err := next.Generate(ctx, p)
		metrics.ObserveTextGen(feature, Outcome(err), time.Since(start))
		return out, err
	})
}

// WithTracing 为每次调用创建 span。
func WithTracing(next Generator, feature string) Generator {
	tracer := otel.Tracer(tracerName)
	return GeneratorFunc(func(ctx context.Context, p Prompt) (string, error) {
		ctx, span := tracer.Start(ctx, "textgen.generate",
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("textgen.feature", feature),
				attribute.Int("textgen.max_tokens", p.MaxTokens),
				attribute.Bool("textgen.json", p.JSON),
			),
		)
		defer span.End()

		out, err := next.Generate(ctx, p)
		span.SetAttributes(attribute.String("textgen.outcome", Outcome(err)))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return out, err
	})
}

// Outcome 把错误归类为指标标签。
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrNotConfigured):
		return "disabled"
	case errors.Is(err, ErrQuotaExceeded):
		return "quota"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrEmptyOutput):
		return "empty"
	default:
		return "error"
	}
}
