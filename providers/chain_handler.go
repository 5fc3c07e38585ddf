package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	apperrors "finboard.app/errors"
)

// PanelFetch is a single attempt at producing panel data. Implementations
// bind their own request parameters before entering a chain.
type PanelFetch[T any] func(ctx context.Context) (T, error)

// PanelHandler defines the interface for the Chain of Responsibility pattern
type PanelHandler[T any] interface {
	Handle(ctx context.Context) (T, error)
	SetNext(handler PanelHandler[T])
	GetProviderName() string
}

type BaseHandler[T any] struct {
	next         PanelHandler[T]
	fetch        PanelFetch[T]
	providerName string
}

func NewBaseHandler[T any](providerName string, fetch PanelFetch[T]) *BaseHandler[T] {
	return &BaseHandler[T]{
		fetch:        fetch,
		providerName: providerName,
	}
}

func (h *BaseHandler[T]) Handle(ctx context.Context) (T, error) {
	var zero T

	if h.fetch != nil {
		response, err := h.fetch(ctx)
		if err == nil {
			return response, nil
		}

		// Validation and not-found results are answers, not outages; they
		// never fall through to another provider.
		if !shouldFallThrough(err) {
			return zero, err
		}

		slog.Info("provider failed", "provider", h.providerName, "error", err)

		// If this is the last handler in the chain and no next handler, return the actual error
		if h.next == nil {
			return zero, err
		}
	}

	if h.next != nil {
		return h.next.Handle(ctx)
	}

	return zero, fmt.Errorf("no provider could handle the request")
}

func (h *BaseHandler[T]) SetNext(handler PanelHandler[T]) {
	h.next = handler
}

func (h *BaseHandler[T]) GetProviderName() string {
	return h.providerName
}

func shouldFallThrough(err error) bool {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Type != apperrors.ValidationError && appErr.Type != apperrors.NotFoundError
	}
	return true
}

type ChainBuilder[T any] struct {
	handlers []PanelHandler[T]
}

func NewChainBuilder[T any]() *ChainBuilder[T] {
	return &ChainBuilder[T]{
		handlers: make([]PanelHandler[T], 0),
	}
}

func (cb *ChainBuilder[T]) AddHandler(handler PanelHandler[T]) *ChainBuilder[T] {
	cb.handlers = append(cb.handlers, handler)
	return cb
}

func (cb *ChainBuilder[T]) Build() PanelHandler[T] {
	if len(cb.handlers) == 0 {
		return nil
	}

	for i := 0; i < len(cb.handlers)-1; i++ {
		cb.handlers[i].SetNext(cb.handlers[i+1])
	}

	return cb.handlers[0]
}
