package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"riskmatch/internal/domain"
	engine "riskmatch/internal/matching"
	"riskmatch/internal/ports"
	"riskmatch/internal/scoring"
	"riskmatch/internal/workers/scorerunner"
)

// Compliance is the compliance service as seen by the HTTP layer.
type Compliance interface {
	Assessment(ctx context.Context, assessmentID string) (domain.Assessment, error)
	ScoreAnswer(ctx context.Context, answerID string) (scoring.QuestionScore, error)
	ScoreSection(ctx context.Context, assessmentID, sectionID string) (scoring.SectionScore, error)
	Latest(ctx context.Context, assessmentID string) (scoring.OverallScore, error)
}

// Matcher is the matching service as seen by the HTTP layer.
type Matcher interface {
	Priorities(ctx context.Context, assessmentID, prioritiesID string) (domain.Priorities, error)
	ScoreAllVendors(ctx context.Context, assessmentID string, pr domain.Priorities) ([]engine.BaseScore, error)
	GetTopVendorMatches(ctx context.Context, assessmentID string, pr domain.Priorities, limit, minScore int) ([]engine.BaseScore, error)
	MatchVendorsToAssessment(ctx context.Context, assessmentID, prioritiesID string) (engine.MatchRun, error)
	CachedRanking(ctx context.Context, assessmentID, prioritiesID string, limit int) (engine.MatchRun, []engine.RankEntry, error)
}

type Server struct {
	compliance Compliance
	matcher    Matcher
	jobs       ports.JobRepository
	processor  scorerunner.JobProcessor
	timeout    time.Duration
}

type Option func(*Server)

// WithRequestTimeout bounds every request; the default is 30s.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func New(compliance Compliance, matcher Matcher, jobs ports.JobRepository, processor scorerunner.JobProcessor, opts ...Option) *Server {
	s := &Server{compliance: compliance, matcher: matcher, jobs: jobs, processor: processor, timeout: 30 * time.Second}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/healthz", s.healthz)
	r.Get("/answers/{answerID}/score", s.answerScore)
	r.Get("/score-jobs/{jobID}", s.scoreJob)
	r.Route("/assessments/{assessmentID}", func(r chi.Router) {
		r.Get("/score", s.latestScore)
		r.Post("/score", s.enqueueScore)
		r.Get("/sections/{sectionID}/score", s.sectionScore)
		r.Get("/vendors", s.vendors)
		r.Get("/matches", s.matches)
		r.Get("/matches/cached", s.cachedMatches)
	})
	return r
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) answerScore(w http.ResponseWriter, r *http.Request) {
	qs, err := s.compliance.ScoreAnswer(r.Context(), chi.URLParam(r, "answerID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, qs)
}

func (s *Server) sectionScore(w http.ResponseWriter, r *http.Request) {
	ss, err := s.compliance.ScoreSection(r.Context(), chi.URLParam(r, "assessmentID"), chi.URLParam(r, "sectionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ss)
}

func (s *Server) latestScore(w http.ResponseWriter, r *http.Request) {
	out, err := s.compliance.Latest(r.Context(), chi.URLParam(r, "assessmentID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type jobAccepted struct {
	JobID string `json:"jobId"`
}

func (s *Server) enqueueScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	assessmentID := chi.URLParam(r, "assessmentID")
	q := r.URL.Query()
	wait, err := boolParam(q.Get("wait"))
	if err != nil {
		writeError(w, err)
		return
	}
	timeout, err := intParam(q.Get("timeout"), 30)
	if err != nil {
		writeError(w, err)
		return
	}

	if _, err := s.compliance.Assessment(ctx, assessmentID); err != nil {
		writeError(w, err)
		return
	}
	if !wait {
		id, err := s.jobs.Enqueue(ctx, assessmentID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, jobAccepted{JobID: id})
		return
	}

	if timeout <= 0 {
		timeout = 30
	}
	ctx2, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()
	// same processor as the background workers
	if _, err := scorerunner.ProcessInline(ctx2, s.jobs, s.processor, assessmentID); err != nil {
		writeError(w, err)
		return
	}
	out, err := s.compliance.Latest(ctx2, assessmentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) scoreJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.jobs.Get(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) vendors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	assessmentID := chi.URLParam(r, "assessmentID")
	q := r.URL.Query()
	limit, err := intParam(q.Get("limit"), 10)
	if err != nil {
		writeError(w, err)
		return
	}
	minScore, err := intParam(q.Get("minScore"), 0)
	if err != nil {
		writeError(w, err)
		return
	}
	all, err := boolParam(q.Get("all"))
	if err != nil {
		writeError(w, err)
		return
	}
	pr, err := s.priorities(ctx, assessmentID, q.Get("prioritiesId"))
	if err != nil {
		writeError(w, err)
		return
	}

	var scores []engine.BaseScore
	if all {
		scores, err = s.matcher.ScoreAllVendors(ctx, assessmentID, pr)
	} else {
		scores, err = s.matcher.GetTopVendorMatches(ctx, assessmentID, pr, limit, minScore)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	if scores == nil {
		scores = []engine.BaseScore{}
	}
	writeJSON(w, http.StatusOK, scores)
}

func (s *Server) matches(w http.ResponseWriter, r *http.Request) {
	prioritiesID := r.URL.Query().Get("prioritiesId")
	if prioritiesID == "" {
		writeError(w, badRequest("prioritiesId is required"))
		return
	}
	run, err := s.matcher.MatchVendorsToAssessment(r.Context(), chi.URLParam(r, "assessmentID"), prioritiesID)
	if err != nil {
		writeError(w, err)
		return
	}
	if run.Matches == nil {
		run.Matches = []engine.VendorMatchScore{}
	}
	writeJSON(w, http.StatusOK, run)
}

type cachedRanking struct {
	RunID       string             `json:"runId"`
	GeneratedAt time.Time          `json:"generatedAt"`
	Entries     []engine.RankEntry `json:"entries"`
}

func (s *Server) cachedMatches(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	prioritiesID := q.Get("prioritiesId")
	if prioritiesID == "" {
		writeError(w, badRequest("prioritiesId is required"))
		return
	}
	limit, err := intParam(q.Get("limit"), 10)
	if err != nil {
		writeError(w, err)
		return
	}
	run, entries, err := s.matcher.CachedRanking(r.Context(), chi.URLParam(r, "assessmentID"), prioritiesID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []engine.RankEntry{}
	}
	writeJSON(w, http.StatusOK, cachedRanking{RunID: run.ID, GeneratedAt: run.GeneratedAt, Entries: entries})
}

func (s *Server) priorities(ctx context.Context, assessmentID, prioritiesID string) (domain.Priorities, error) {
	if prioritiesID == "" {
		return domain.Priorities{}, badRequest("prioritiesId is required")
	}
	return s.matcher.Priorities(ctx, assessmentID, prioritiesID)
}

type errorBody struct {
	Error string `json:"error"`
}

type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }

func badRequest(msg string) error { return &requestError{msg: msg} }

func intParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, badRequest("invalid integer " + strconv.Quote(v))
	}
	return n, nil
}

func boolParam(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, badRequest("invalid boolean " + strconv.Quote(v))
	}
	return b, nil
}

func statusFor(err error) int {
	var re *requestError
	switch {
	case errors.As(err, &re):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidConfiguration):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		log.Printf("http: %v", err)
	}
	writeJSON(w, code, errorBody{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("http: encode response: %v", err)
	}
}
