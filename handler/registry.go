package handler

import (
	"fmt"
	"sync"
	"time"

	"github.com/aiinpocket/n3n-core/logger"
	"github.com/aiinpocket/n3n-core/model"
	"go.uber.org/zap"
)

type NoSuchHandlerError struct {
	NodeType string
}

func (e NoSuchHandlerError) Error() string {
	return fmt.Sprintf("no handler registered for node type %s", e.NodeType)
}

// Registry maps a node's declared type to its handler instance. It is
// populated at startup and read-mostly afterwards.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

func (r *Registry) Register(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[h.Type()] = h
}

// RegisterOperations registers a resource/operation-addressed handler behind
// the shared multi-operation dispatch pipeline.
func (r *Registry) RegisterOperations(h OperationHandler) {
	r.Register(MultiOperation(h))
}

func (r *Registry) Get(nodeType string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[nodeType]
	return h, ok
}

func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	return types
}

// Dispatch executes the node through its registered handler. Every failure
// below this boundary is converted to a failed result; the only error
// returned is an unregistered node type.
func (r *Registry) Dispatch(nodeType string, ctx model.NodeExecutionContext) (model.NodeExecutionResult, error) {
	h, ok := r.Get(nodeType)
	if !ok {
		return model.NodeExecutionResult{}, NoSuchHandlerError{NodeType: nodeType}
	}

	start := time.Now()
	result := safeExecute(h, ctx)
	result.ExecutionTimeMs = time.Since(start).Milliseconds()

	logger.Debug("node execution finished",
		zap.String("type", nodeType),
		zap.Bool("success", result.Success),
		zap.Int64("tookMs", result.ExecutionTimeMs))
	return result, nil
}

func safeExecute(h Handler, ctx model.NodeExecutionContext) (result model.NodeExecutionResult) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("handler panicked", zap.String("type", h.Type()), zap.Any("panic", rec))
			result = model.ExecutionFailure(fmt.Sprintf("handler %s panicked: %v", h.Type(), rec))
		}
	}()
	return h.Execute(ctx)
}
