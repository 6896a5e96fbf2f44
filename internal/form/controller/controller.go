// Package controller dispatches the actions of a submitted form.
//
// A Controller extracts the form, checks the whole Data tree for validation
// errors and, when there are none, calls the handler and next callbacks of
// every action widget whose "action.<path>" key was posted. Actions run in
// document order; a failing handler stops dispatch without undoing the
// handlers that already ran.
package controller

import (
	"fmt"
	"strings"

	"github.com/GriffinCanCode/formwork/internal/form"
	"go.uber.org/zap"
)

// ActionPrefix prefixes the request key that triggers an action widget.
const ActionPrefix = "action."

// Handler is the "handler" property of an action widget.
type Handler func(w *form.Widget, d *form.Data) error

// Next is the "next" property of an action widget. It returns the URL to
// continue to.
type Next func(req form.Request) (string, error)

// Observer is notified of every dispatched action.
type Observer interface {
	ObserveDispatch(path string, err error)
}

// Controller is the outcome of one submission.
type Controller struct {
	Widget  *form.Widget
	Request form.Request
	Data    *form.Data

	// HasError is set when any node of Data collected validation errors.
	HasError bool
	// Next is the URL returned by the last triggered next callback.
	Next string
	// Triggered lists the dotted paths of dispatched actions in order.
	Triggered []string

	logger   *zap.Logger
	observer Observer
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the dispatch logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver sets the dispatch observer.
func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observer = o }
}

// New extracts w against req and dispatches triggered actions. Extraction
// contract errors and handler errors are returned; validation errors only
// set HasError.
func New(w *form.Widget, req form.Request, opts ...Option) (*Controller, error) {
	c := &Controller{Widget: w, Request: req, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}

	data, err := w.Extract(req, nil)
	c.Data = data
	if err != nil {
		return c, err
	}

	c.HasError = hasError(data)
	if c.HasError {
		c.logger.Debug("Submission has validation errors", zap.String("form", w.Path()))
		return c, nil
	}
	return c, c.dispatch()
}

func hasError(d *form.Data) bool {
	found := false
	d.Walk(func(n *form.Data) bool {
		found = n.HasErrors()
		return !found
	})
	return found
}

func (c *Controller) dispatch() error {
	var err error
	c.Data.Walk(func(n *form.Data) bool {
		w := n.Widget()
		if !w.Attributes("").Bool("action") {
			return true
		}
		path := w.Path()
		if !c.Request.Has(ActionPrefix + path) {
			return true
		}
		c.Triggered = append(c.Triggered, path)
		err = c.trigger(w, n)
		if c.observer != nil {
			c.observer.ObserveDispatch(path, err)
		}
		return err == nil
	})
	return err
}

func (c *Controller) trigger(w *form.Widget, d *form.Data) error {
	path := w.Path()
	c.logger.Info("Action triggered", zap.String("action", path))

	if v, ok := w.Property("handler"); ok && v != nil {
		h, ok := asHandler(v)
		if !ok {
			return fmt.Errorf("action %s: handler has type %T", path, v)
		}
		if err := h(w, d); err != nil {
			return fmt.Errorf("action %s: %w", path, err)
		}
	}
	if v, ok := w.Property("next"); ok && v != nil {
		switch n := v.(type) {
		case Next:
			url, err := n(c.Request)
			if err != nil {
				return fmt.Errorf("action %s next: %w", path, err)
			}
			c.Next = url
		case func(form.Request) (string, error):
			url, err := n(c.Request)
			if err != nil {
				return fmt.Errorf("action %s next: %w", path, err)
			}
			c.Next = url
		case string:
			c.Next = n
		default:
			return fmt.Errorf("action %s: next has type %T", path, v)
		}
	}
	return nil
}

func asHandler(v any) (Handler, bool) {
	switch h := v.(type) {
	case Handler:
		return h, true
	case func(*form.Widget, *form.Data) error:
		return h, true
	}
	return nil, false
}

// Action returns the Data node of the triggered action at path, if any.
func (c *Controller) Action(path string) *form.Data {
	for _, p := range c.Triggered {
		if p != path {
			continue
		}
		if path == c.Widget.Path() {
			return c.Data
		}
		return c.Data.Lookup(strings.TrimPrefix(path, c.Widget.Path()+"."))
	}
	return nil
}
