package http

import (
	"errors"
	"net/http"

	"github.com/GriffinCanCode/formwork/internal/domain/formdoc"
	"github.com/GriffinCanCode/formwork/internal/domain/submission"
	"github.com/GriffinCanCode/formwork/internal/form"
	"github.com/GriffinCanCode/formwork/internal/form/controller"
	"github.com/GriffinCanCode/formwork/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/formwork/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/formwork/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/formwork/internal/shared/id"
	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SubmissionHeader carries the id of a processed submission.
const SubmissionHeader = "X-Submission-ID"

// Version is reported by the root endpoint.
const Version = "0.1.0"

// Handlers contains all HTTP handlers
type Handlers struct {
	library *formdoc.Library
	store   *submission.Store
	metrics *monitoring.Metrics
	ids     *id.Generator
	logger  *zap.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(library *formdoc.Library, store *submission.Store, metrics *monitoring.Metrics, logger *zap.Logger) *Handlers {
	if metrics == nil {
		metrics = monitoring.NewMetrics(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		library: library,
		store:   store,
		metrics: metrics,
		ids:     id.Default(),
		logger:  logger,
	}
}

// Register adds the routes to r.
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	r.GET("/forms", h.ListForms)
	r.GET("/forms/:name", h.RenderForm)
	r.POST("/forms/:name", h.SubmitForm)

	r.POST("/api/forms/:name", h.SubmitJSON)
	r.GET("/api/forms/:name/submissions", h.ListSubmissions)
	r.GET("/api/submissions/:id", h.GetSubmission)
}

// Root reports the service.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "formwork",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"forms":       h.library.Stats(),
		"factory":     h.library.Factory().Stats(),
		"submissions": h.store.Len(),
		"metrics":     h.metrics.Snapshot(),
	})
}

// ListForms lists the library.
func (h *Handlers) ListForms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"forms": h.library.List()})
}

func (h *Handlers) entry(c *gin.Context) (*formdoc.Entry, bool) {
	e, err := h.library.Get(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	return e, true
}

func (h *Handlers) fail(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	h.logger.Error("Request failed",
		zap.String("path", c.Request.URL.Path),
		zap.String("trace", string(tracing.GetTraceID(c.Request.Context()))),
		zap.Error(err))
	c.JSON(status, gin.H{"error": err.Error()})
}

// RenderForm renders a form page. Query parameters prefill the inputs.
func (h *Handlers) RenderForm(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}
	var req form.Request
	if q := c.Request.URL.Query(); len(q) > 0 {
		req = form.Values(q)
	}
	out, err := e.Widget.RenderRequest(req)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page(e.Document, out))
}

// submit runs the controller on a submission and counts rejected ones.
func (h *Handlers) submit(c *gin.Context, e *formdoc.Entry, values form.Values) (*controller.Controller, id.SubmissionID, error) {
	sid := id.SubmissionID(h.ids.GenerateWithPrefix(id.SubmissionPrefix))
	c.Header(SubmissionHeader, sid.String())
	tracing.Tag(c.Request.Context(), "submission", sid.String())

	ctrl, err := controller.New(e.Widget, submission.Request{Request: values, ID: sid},
		controller.WithLogger(h.logger),
		controller.WithObserver(h.metrics),
	)
	if err == nil && ctrl.HasError {
		h.metrics.RecordInvalid(e.Document.Name)
	}
	return ctrl, sid, err
}

// dispatchStatus maps a failed dispatch to a status; a tripped handler
// breaker is temporary.
func dispatchStatus(err error) int {
	if errors.Is(err, resilience.ErrOpen) || errors.Is(err, resilience.ErrTooManyRequests) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// SubmitForm handles a browser submission.
func (h *Handlers) SubmitForm(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}
	values, err := formValues(c)
	if err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}
	ctrl, _, err := h.submit(c, e, values)
	if err != nil {
		h.fail(c, dispatchStatus(err), err)
		return
	}
	if !ctrl.HasError && ctrl.Next != "" {
		c.Redirect(http.StatusSeeOther, ctrl.Next)
		return
	}

	status := http.StatusOK
	if ctrl.HasError {
		status = http.StatusUnprocessableEntity
	}
	out, err := e.Widget.Render(ctrl.Data)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(status, "text/html; charset=utf-8", page(e.Document, out))
}

// SubmitResponse is the JSON result of a submission.
type SubmitResponse struct {
	ID        id.SubmissionID     `json:"id"`
	Form      string              `json:"form"`
	Valid     bool                `json:"valid"`
	Triggered []string            `json:"triggered"`
	Next      string              `json:"next,omitempty"`
	Value     any                 `json:"value"`
	Errors    map[string][]string `json:"errors,omitempty"`
}

// SubmitJSON handles an API submission, form-encoded or JSON.
func (h *Handlers) SubmitJSON(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}
	values, err := submissionValues(c)
	if err != nil {
		h.fail(c, http.StatusBadRequest, err)
		return
	}
	ctrl, sid, err := h.submit(c, e, values)
	if err != nil {
		h.fail(c, dispatchStatus(err), err)
		return
	}

	resp := SubmitResponse{
		ID:        sid,
		Form:      e.Document.Name,
		Valid:     !ctrl.HasError,
		Triggered: append([]string{}, ctrl.Triggered...),
		Next:      ctrl.Next,
		Value:     ctrl.Data.Extracted,
		Errors:    validationErrors(ctrl.Data),
	}
	status := http.StatusOK
	if ctrl.HasError {
		status = http.StatusUnprocessableEntity
	}
	h.writeJSON(c, status, resp)
}

// ListSubmissions returns the stored submissions of a form.
func (h *Handlers) ListSubmissions(c *gin.Context) {
	e, ok := h.entry(c)
	if !ok {
		return
	}
	h.writeJSON(c, http.StatusOK, gin.H{"submissions": h.store.List(e.Document.Name)})
}

// GetSubmission returns one stored submission.
func (h *Handlers) GetSubmission(c *gin.Context) {
	rec, ok := h.store.Get(id.SubmissionID(c.Param("id")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "submission not found"})
		return
	}
	h.writeJSON(c, http.StatusOK, rec)
}

// writeJSON encodes with sonic, which honours the json.Marshaler of
// form.Fields.
func (h *Handlers) writeJSON(c *gin.Context, status int, v any) {
	body, err := sonic.Marshal(v)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, errors.Join(errors.New("failed to encode response"), err))
		return
	}
	c.Data(status, gin.MIMEJSON+"; charset=utf-8", body)
}

// validationErrors maps the dotted path of every node in error to its
// messages.
func validationErrors(d *form.Data) map[string][]string {
	out := make(map[string][]string)
	d.Walk(func(n *form.Data) bool {
		for _, e := range n.Errors {
			p := n.Widget().Path()
			out[p] = append(out[p], e.Message)
		}
		return true
	})
	if len(out) == 0 {
		return nil
	}
	return out
}
