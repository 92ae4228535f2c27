package llm

import (
	"context"
	"iter"
	"log/slog"
	"time"
)

// WithLogging logs request sizes, durations and errors of next. A nil
// logger uses slog.Default().
func WithLogging(next Client, logger *slog.Logger) Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &logging{next: next, log: logger.With("llm", next.Name())}
}

type logging struct {
	next Client
	log  *slog.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }

func (l *logging) GenerateStructured(ctx context.Context, req StructuredRequest) (string, error) {
	start := time.Now()
	l.log.DebugContext(ctx, "structured request", "prompt_bytes", len(req.Prompt), "temperature", req.Temperature)
	raw, err := l.next.GenerateStructured(ctx, req)
	if err != nil {
		l.log.ErrorContext(ctx, "structured request failed", "error", err, "elapsed", time.Since(start))
		return raw, err
	}
	l.log.InfoContext(ctx, "structured response", "bytes", len(raw), "elapsed", time.Since(start))
	return raw, nil
}

func (l *logging) StreamChat(ctx context.Context, req ChatRequest) (iter.Seq2[string, error], error) {
	start := time.Now()
	l.log.DebugContext(ctx, "chat stream request", "history", len(req.History), "message_bytes", len(req.Message))
	stream, err := l.next.StreamChat(ctx, req)
	if err != nil {
		l.log.ErrorContext(ctx, "chat stream open failed", "error", err)
		return nil, err
	}
	return func(yield func(string, error) bool) {
		var fragments, size int
		for frag, err := range stream {
			if err != nil {
				l.log.ErrorContext(ctx, "chat stream broke", "error", err, "fragments", fragments)
				yield("", err)
				return
			}
			fragments++
			size += len(frag)
			if !yield(frag, nil) {
				return
			}
		}
		l.log.InfoContext(ctx, "chat stream done", "fragments", fragments, "bytes", size, "elapsed", time.Since(start))
	}, nil
}
