package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GriffinCanCode/formwork/internal/domain/formdoc"
	"github.com/GriffinCanCode/formwork/internal/form"
	"github.com/GriffinCanCode/formwork/internal/form/controller"
	"github.com/GriffinCanCode/formwork/internal/infrastructure/config"
	"github.com/GriffinCanCode/formwork/internal/infrastructure/logging"
	"github.com/GriffinCanCode/formwork/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/formwork/internal/infrastructure/tracing"
	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const signupDoc = `
name: signup
title: Sign up
form:
  chain: form:compound
  children:
    - name: email
      chain: "#labeled:email:text"
      props: {required: true, persist: true}
    - name: join
      chain: submit
      props: {handler: store, next: welcome}
`

const germanDefaults = `
[messages.de]
"Mandatory field was empty" = "Pflichtfeld ist leer"
`

func newTestServer(t *testing.T, language string, opts ...Option) *Server {
	t.Helper()
	dir := t.TempDir()
	forms := filepath.Join(dir, "forms")
	require.NoError(t, os.MkdirAll(forms, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(forms, "signup.yaml"), []byte(signupDoc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(forms, "broken.yaml"), []byte("name: [unterminated"), 0o644))
	defaults := filepath.Join(dir, "defaults.toml")
	require.NoError(t, os.WriteFile(defaults, []byte(germanDefaults), 0o644))

	cfg := config.Default()
	cfg.Forms.Dir = forms
	cfg.Forms.Defaults = defaults
	cfg.Forms.Language = language
	cfg.RateLimit.Enabled = false

	opts = append([]Option{WithLogger(logging.Nop())}, opts...)
	s, err := NewServer(context.Background(), cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestNewServerSeedsLibrary(t *testing.T) {
	s := newTestServer(t, "en")
	assert.Equal(t, 1, s.Library().Len())
	assert.True(t, s.Library().Exists("signup"))
	assert.Equal(t, int64(1), s.Library().Stats().Failures)
}

func TestNewServerRejectsBadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defaults.toml")
	require.NoError(t, os.WriteFile(path, []byte("[macros"), 0o644))

	cfg := config.Default()
	cfg.Forms.Dir = t.TempDir()
	cfg.Forms.Defaults = path
	_, err := NewServer(context.Background(), cfg, WithLogger(logging.Nop()))
	assert.Error(t, err)
}

func TestTranslatedMessages(t *testing.T) {
	tests := []struct {
		language string
		want     string
	}{
		{"en", "Mandatory field was empty"},
		{"de", "Pflichtfeld ist leer"},
		{"de-AT", "Pflichtfeld ist leer"},
	}
	for _, tt := range tests {
		t.Run(tt.language, func(t *testing.T) {
			s := newTestServer(t, tt.language)
			req := httptest.NewRequest(http.MethodPost, "/api/forms/signup",
				strings.NewReader(`{"action.signup.join": 1}`))
			req.Header.Set("Content-Type", "application/json")
			w := serve(s, req)
			require.Equal(t, http.StatusUnprocessableEntity, w.Code)

			var body struct {
				Errors map[string][]string `json:"errors"`
			}
			require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, []string{tt.want}, body.Errors["signup.email"])
		})
	}
}

func TestSubmitWithBoundNext(t *testing.T) {
	s := newTestServer(t, "en", WithBindings(formdoc.Bindings{
		Next: map[string]controller.Next{
			"welcome": func(form.Request) (string, error) { return "/welcome", nil },
		},
	}))

	form := url.Values{"signup.email": {"ann@example.com"}, "action.signup.join": {"1"}}
	req := httptest.NewRequest(http.MethodPost, "/forms/signup", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := serve(s, req)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/welcome", w.Header().Get("Location"))
	assert.NotEmpty(t, w.Header().Get(tracing.TraceHeader))
}

const mailerDoc = `
name: newsletter
form:
  chain: form:compound
  children:
    - name: subscribe
      chain: submit
      props: {handler: mailer}
`

func TestFailingHandlerTripsBreaker(t *testing.T) {
	calls := 0
	s := newTestServer(t, "en", WithBindings(formdoc.Bindings{
		Handlers: map[string]controller.Handler{
			"mailer": func(*form.Widget, *form.Data) error {
				calls++
				return errors.New("relay unavailable")
			},
		},
	}))
	_, err := s.Library().AddBytes([]byte(mailerDoc), "test")
	require.NoError(t, err)

	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/forms/newsletter",
			strings.NewReader(`{"action.newsletter.subscribe": 1}`))
		req.Header.Set("Content-Type", "application/json")
		return serve(s, req).Code
	}
	for range 5 {
		assert.Equal(t, http.StatusInternalServerError, post())
	}
	assert.Equal(t, http.StatusServiceUnavailable, post())
	assert.Equal(t, 5, calls)

	b, ok := s.Breaker("mailer")
	require.True(t, ok)
	assert.Equal(t, resilience.StateOpen, b.State())
}

func TestMetricsEndpointCompressed(t *testing.T) {
	s := newTestServer(t, "en")
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := serve(s, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(body), "formwork_forms_loaded 1")
	assert.Contains(t, string(body), "formwork_form_seed_failures_total 1")
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, "en")
	req := httptest.NewRequest(http.MethodOptions, "/api/forms/signup", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := serve(s, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
