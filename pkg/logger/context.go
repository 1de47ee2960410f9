package logger

import (
	"context"
	"log/slog"
	"slices"
)

// ContextExtractor pulls one attribute out of a context at log time.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

type scopeKey struct{}

// ContextWith returns a copy of ctx carrying attrs. Every record logged with that context,
// through any logger built by New, includes them after the record's own attributes.
// Later calls append to the attributes already in ctx.
func ContextWith(ctx context.Context, attrs ...slog.Attr) context.Context {
	if len(attrs) == 0 {
		return ctx
	}
	prev, _ := ctx.Value(scopeKey{}).([]slog.Attr)
	return context.WithValue(ctx, scopeKey{}, append(slices.Clip(prev), attrs...))
}

// ContextAttrs returns the attributes stored by ContextWith.
func ContextAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	attrs, _ := ctx.Value(scopeKey{}).([]slog.Attr)
	return slices.Clone(attrs)
}

// contextHandler adds scoped and extracted attributes before delegating. Redaction is left
// to the wrapped handler's ReplaceAttr, so these attributes are redacted like any other.
type contextHandler struct {
	next       slog.Handler
	extractors []ContextExtractor
}

func newContextHandler(next slog.Handler, extractors []ContextExtractor) *contextHandler {
	return &contextHandler{next: next, extractors: slices.DeleteFunc(slices.Clone(extractors), func(ex ContextExtractor) bool {
		return ex == nil
	})}
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, rec slog.Record) error {
	if ctx != nil {
		if attrs, ok := ctx.Value(scopeKey{}).([]slog.Attr); ok {
			rec.AddAttrs(attrs...)
		}
		for _, ex := range h.extractors {
			if attr, ok := ex(ctx); ok {
				rec.AddAttrs(attr)
			}
		}
	}
	return h.next.Handle(ctx, rec)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{next: h.next.WithAttrs(attrs), extractors: h.extractors}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{next: h.next.WithGroup(name), extractors: h.extractors}
}
