package ability

import (
	"fmt"

	"github.com/drakmor/spellgo/internal/model"
)

// Handler is invoked when a scheduled callback carrying its identifier
// fires. targets is the callback's own target list, independent of any
// sibling callback registered at the same offset.
type Handler interface {
	Invoke(ctx *Context, targets []model.ObjectID) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx *Context, targets []model.ObjectID) error

// Invoke implements Handler.
func (f HandlerFunc) Invoke(ctx *Context, targets []model.ObjectID) error {
	return f(ctx, targets)
}

// Registry maps stable handler identifiers to handlers. Handlers are
// resolved at registration time where possible: registering a callback with
// an identifier the registry does not know is rejected up front instead of
// failing when the fire-time arrives.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register binds an identifier to a handler. Duplicate identifiers are an
// authoring error.
func (r *Registry) Register(id string, h Handler) error {
	if id == "" {
		return fmt.Errorf("handler id is required")
	}
	if h == nil {
		return fmt.Errorf("handler %s: nil handler", id)
	}
	if _, dup := r.handlers[id]; dup {
		return fmt.Errorf("handler %s already registered", id)
	}
	r.handlers[id] = h
	return nil
}

// Lookup resolves an identifier.
func (r *Registry) Lookup(id string) (Handler, bool) {
	h, ok := r.handlers[id]
	return h, ok
}
