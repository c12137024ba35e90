package httpadapter

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/couchcryptid/cep-weather-service/internal/domain"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTmpl = template.Must(template.New("index.html").Funcs(template.FuncMap{
	"celsius": formatCelsius,
}).ParseFS(templateFS, "templates/index.html"))

// pageData is rendered by templates/index.html.
type pageData struct {
	Input     string
	MaxLength int
	State     *domain.ViewState
}

func (s *Server) handleForm(w http.ResponseWriter, _ *http.Request) {
	s.renderPage(w, http.StatusOK, pageData{MaxLength: domain.MaxCodeLength})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	raw := r.PostFormValue("cep")
	state := s.submit(r.Context(), raw)
	s.renderPage(w, statusFor(state), pageData{Input: raw, MaxLength: domain.MaxCodeLength, State: &state})
}

func (s *Server) handleLookupAPI(w http.ResponseWriter, r *http.Request) {
	state := s.submit(r.Context(), r.PathValue("cep"))
	writeJSON(w, statusFor(state), state)
}

// submit soft-validates raw the way the form's pattern attribute does before
// handing it to the service. Rejected input never reaches an upstream.
func (s *Server) submit(ctx context.Context, raw string) domain.ViewState {
	if !domain.ValidCodeFormat(raw) {
		state := domain.Begin(0)
		state.Code = domain.Normalize(raw)
		state.Fail(fmt.Errorf("%q: %w", raw, domain.ErrInvalidCodeFormat))
		state.Finish()
		s.logger.Info("lookup rejected",
			"request_id", requestIDFrom(ctx),
			"code", state.Code,
			"kind", state.ErrorKind,
		)
		return state
	}

	state := s.service.Submit(ctx, raw)
	s.logger.Debug("lookup served",
		"request_id", requestIDFrom(ctx),
		"seq", state.Seq,
		"outcome", state.Outcome(),
	)
	return state
}

// statusFor maps a terminal view state to an HTTP status code.
func statusFor(state domain.ViewState) int {
	switch state.ErrorKind {
	case domain.KindNone:
		return http.StatusOK
	case domain.KindAddressNotFound:
		return http.StatusNotFound
	case domain.KindCoordinatesUnavailable, domain.KindInvalidCodeFormat:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) renderPage(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTmpl.Execute(w, data); err != nil {
		s.logger.Error("render page", "error", err)
	}
}

// formatCelsius renders a temperature the way a browser prints a number:
// shortest representation, no trailing zeros.
func formatCelsius(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
