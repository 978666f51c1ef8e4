// Package web serves the analysis form, a JSON API and a WebSocket progress
// stream on top of the agent.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"slices"
	"strings"
	"time"

	"heritage/internal/agent"
	"heritage/internal/hook"
	"heritage/internal/hook/handlers"
	"heritage/internal/llm"
	"heritage/internal/logger"
	"heritage/internal/report"
	"heritage/internal/tool"
	"heritage/internal/tool/builtin"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// AnalyzeRequest is the body of an analysis request.
type AnalyzeRequest struct {
	Location          string `json:"location"`
	StructureName     string `json:"structure_name"`
	VisualizationType string `json:"visualization_type"`
	Request           string `json:"request"`
}

// errInvalidInput marks a request rejected before the agent ran.
var errInvalidInput = errors.New(report.MissingInputWarning)

// normalize trims fields and validates them. A blank request is filled from
// the default template when fillRequest is set.
func (r *AnalyzeRequest) normalize(fillRequest bool) error {
	r.Location = strings.TrimSpace(r.Location)
	r.StructureName = strings.TrimSpace(r.StructureName)
	r.VisualizationType = strings.TrimSpace(r.VisualizationType)
	r.Request = strings.TrimSpace(r.Request)

	if r.VisualizationType == "" {
		r.VisualizationType = builtin.KindTimeline
	}
	if !slices.Contains(builtin.Kinds, r.VisualizationType) {
		return errors.New("지원하지 않는 시각화 형식입니다: " + r.VisualizationType)
	}
	if r.Request == "" && fillRequest && r.StructureName != "" {
		r.Request = report.DefaultRequest(r.StructureName, r.VisualizationType)
	}
	if r.StructureName == "" || r.Request == "" {
		return errInvalidInput
	}
	return nil
}

type Options struct {
	RequestTimeout time.Duration
	Logger         *logger.Logger
}

type Server struct {
	agent  agent.Agent
	opts   Options
	logger *logger.Logger
}

func NewServer(a agent.Agent, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Server{agent: a, opts: opts, logger: log}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleForm)
	mux.HandleFunc("POST /{$}", s.handleSubmit)
	mux.HandleFunc("POST /api/analyze", s.handleAPI)
	mux.HandleFunc("GET /ws/analyze", s.handleWebSocket)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// analyze runs one invocation, forwarding progress steps to sink.
func (s *Server) analyze(ctx context.Context, req *AnalyzeRequest, sink func(handlers.Step)) (*report.Analysis, error) {
	if s.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RequestTimeout)
		defer cancel()
	}

	progress := handlers.NewProgressReporter(sink)
	out, err := s.agent.Run(ctx, &agent.Input{
		Request: req.Request,
		Context: agent.InvocationContext{
			Location:          req.Location,
			StructureName:     req.StructureName,
			VisualizationType: req.VisualizationType,
		},
		Handlers: []hook.Handler{progress},
	})
	if err != nil {
		return nil, err
	}
	return report.New(out, progress.Steps())
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, newFormView())
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	req := &AnalyzeRequest{
		Location:          r.PostFormValue("location"),
		StructureName:     r.PostFormValue("structure_name"),
		VisualizationType: r.PostFormValue("visualization_type"),
		Request:           r.PostFormValue("request"),
	}

	view := newFormView()
	err := req.normalize(false)
	view.Location = req.Location
	view.StructureName = req.StructureName
	view.VisualizationType = req.VisualizationType
	view.Request = req.Request
	if err != nil {
		view.Warning = err.Error()
		s.render(w, http.StatusBadRequest, view)
		return
	}

	analysis, err := s.analyze(r.Context(), req, nil)
	if err != nil {
		s.logger.Error("analysis failed: %v", err)
		view.Error = userMessage(err)
		s.render(w, statusFor(err), view)
		return
	}
	view.Analysis = analysis
	s.render(w, http.StatusOK, view)
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body: " + err.Error()})
		return
	}
	if err := req.normalize(true); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	analysis, err := s.analyze(r.Context(), &req, nil)
	if err != nil {
		s.logger.Error("analysis failed: %v", err)
		writeJSON(w, statusFor(err), errorBody{Error: userMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) render(w http.ResponseWriter, status int, view *formView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, view); err != nil {
		s.logger.Error("render page: %v", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an invocation error to an HTTP status.
func statusFor(err error) int {
	var malformed *tool.MalformedToolCallError
	var upstream *llm.UpstreamServiceError
	switch {
	case errors.Is(err, agent.ErrEmptyRequest), errors.Is(err, errInvalidInput):
		return http.StatusBadRequest
	case errors.As(err, &malformed), errors.As(err, &upstream):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// userMessage renders an invocation error for display.
func userMessage(err error) string {
	var malformed *tool.MalformedToolCallError
	var upstream *llm.UpstreamServiceError
	switch {
	case errors.As(err, &malformed):
		return "모델이 잘못된 도구 호출을 보냈습니다: " + malformed.Error()
	case errors.As(err, &upstream):
		return "모델 서비스 호출에 실패했습니다: " + upstream.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "분석 시간이 초과되었습니다."
	default:
		return "분석 중 오류가 발생했습니다: " + err.Error()
	}
}
