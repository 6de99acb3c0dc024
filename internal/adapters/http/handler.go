package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/salesmind/engine/internal/app/closing"
	"github.com/salesmind/engine/internal/app/dialogue"
	"github.com/salesmind/engine/internal/domain"
)

type Server struct {
	svc *dialogue.Service
}

func NewServer(svc *dialogue.Service) http.Handler {
	s := &Server{svc: svc}
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealth)

	// /sessions → POST: create, GET: list by user
	mux.HandleFunc("/sessions", s.handleSessions)

	// /sessions/{id}          →  GET: session + messages
	// /sessions/{id}/messages → POST: send one salesperson message
	// /sessions/{id}/finish   → POST: finish and score
	// /sessions/{id}/report   →  GET: report of a finished session
	mux.HandleFunc("/sessions/", s.handleSessionWithID)

	return mux
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type createSessionRequest struct {
	UserID           string `json:"user_id"`
	Mode             string `json:"mode,omitempty"`
	Industry         string `json:"industry,omitempty"`
	ValueProposition string `json:"value_proposition,omitempty"`
	CustomerPersona  string `json:"customer_persona,omitempty"`
	CustomerPain     string `json:"customer_pain,omitempty"`
	CompanyInfo      string `json:"company_info,omitempty"`
}

type sessionResponse struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"user_id"`
	Mode               string     `json:"mode"`
	Industry           string     `json:"industry"`
	ValueProposition   string     `json:"value_proposition"`
	CustomerPersona    string     `json:"customer_persona"`
	SuccessProbability int        `json:"success_probability"`
	CurrentSpinStage   string     `json:"current_spin_stage"`
	ConversationPhase  string     `json:"conversation_phase"`
	LossReason         string     `json:"loss_reason,omitempty"`
	Status             string     `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	FinishedAt         *time.Time `json:"finished_at,omitempty"`
}

type messageResponse struct {
	ID              string                       `json:"id"`
	SessionID       string                       `json:"session_id"`
	Role            string                       `json:"role"`
	Text            string                       `json:"text"`
	Sequence        int                          `json:"sequence"`
	SuccessDelta    *int                         `json:"success_delta,omitempty"`
	SpinStage       string                       `json:"spin_stage,omitempty"`
	StageEvaluation string                       `json:"stage_evaluation,omitempty"`
	AnalysisSummary string                       `json:"analysis_summary,omitempty"`
	SystemNotes     string                       `json:"system_notes,omitempty"`
	Temperature     *domain.TemperatureBreakdown `json:"temperature,omitempty"`
	CreatedAt       time.Time                    `json:"created_at"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

type sendMessageResponse struct {
	Session            sessionResponse       `json:"session"`
	SalespersonMessage messageResponse       `json:"salesperson_message"`
	CustomerMessage    messageResponse       `json:"customer_message"`
	ClosingProposal    *closing.Proposal     `json:"closing_proposal,omitempty"`
	LossResponse       *closing.LossResponse `json:"loss_response,omitempty"`
	ShouldEndSession   bool                  `json:"should_end_session"`
}

type getSessionResponse struct {
	Session  sessionResponse   `json:"session"`
	Messages []messageResponse `json:"messages"`
}

type listSessionsResponse struct {
	Sessions []sessionResponse `json:"sessions"`
}

type reportResponse struct {
	ID          string                            `json:"id"`
	SessionID   string                            `json:"session_id"`
	Scores      domain.RubricScores               `json:"scores"`
	Feedback    string                            `json:"feedback"`
	NextActions string                            `json:"next_actions"`
	Details     map[string]domain.DimensionDetail `json:"details,omitempty"`
	CreatedAt   time.Time                         `json:"created_at"`
}

type finishSessionResponse struct {
	Session sessionResponse `json:"session"`
	Report  reportResponse  `json:"report"`
}

// ─────────────────────────────────────────────
// Basic routing
// ─────────────────────────────────────────────

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// /sessions
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateSession(w, r)
	case http.MethodGet:
		s.handleListSessions(w, r)
	default:
		methodNotAllowed(w)
	}
}

// /sessions/{id} plus subresources
func (s *Server) handleSessionWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/sessions/")
	if path == "" {
		http.NotFound(w, r)
		return
	}

	parts := strings.Split(path, "/")
	id := parts[0]
	if id == "" {
		http.NotFound(w, r)
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			s.handleGetSession(w, r, domain.SessionID(id))
		default:
			methodNotAllowed(w)
		}
		return
	}

	if len(parts) == 2 {
		switch parts[1] {
		case "messages":
			if r.Method != http.MethodPost {
				methodNotAllowed(w)
				return
			}
			s.handleSendMessage(w, r, domain.SessionID(id))
			return
		case "finish":
			if r.Method != http.MethodPost {
				methodNotAllowed(w)
				return
			}
			s.handleFinishSession(w, r, domain.SessionID(id))
			return
		case "report":
			if r.Method != http.MethodGet {
				methodNotAllowed(w)
				return
			}
			s.handleGetReport(w, r, domain.SessionID(id))
			return
		}
	}

	http.NotFound(w, r)
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	if req.UserID == "" {
		badRequest(w, "user_id is required")
		return
	}

	out, err := s.svc.StartSession(r.Context(), dialogue.StartSessionInput{
		UserID:           domain.UserID(req.UserID),
		Mode:             parseMode(req.Mode),
		Industry:         req.Industry,
		ValueProposition: req.ValueProposition,
		CustomerPersona:  req.CustomerPersona,
		CustomerPain:     req.CustomerPain,
		CompanyInfo:      req.CompanyInfo,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]sessionResponse{
		"session": toSessionResponse(out.Session),
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		badRequest(w, "user_id is required")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	sessions, err := s.svc.ListSessions(r.Context(), domain.UserID(userID), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := listSessionsResponse{Sessions: make([]sessionResponse, 0, len(sessions))}
	for _, sess := range sessions {
		resp.Sessions = append(resp.Sessions, toSessionResponse(sess))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	session, msgs, err := s.svc.GetSessionTimeline(r.Context(), id, 0)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, getSessionResponse{
		Session:  toSessionResponse(session),
		Messages: toMessagesResponse(msgs),
	})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request, sessionID domain.SessionID) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		badRequest(w, "text is required")
		return
	}

	out, err := s.svc.SendMessage(r.Context(), dialogue.SendMessageInput{
		SessionID: sessionID,
		Text:      req.Text,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sendMessageResponse{
		Session:            toSessionResponse(out.Session),
		SalespersonMessage: toMessageResponse(out.SalespersonMessage),
		CustomerMessage:    toMessageResponse(out.CustomerMessage),
		ClosingProposal:    out.ClosingProposal,
		LossResponse:       out.LossResponse,
		ShouldEndSession:   out.ShouldEndSession,
	})
}

func (s *Server) handleFinishSession(w http.ResponseWriter, r *http.Request, sessionID domain.SessionID) {
	out, err := s.svc.FinishSession(r.Context(), sessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, finishSessionResponse{
		Session: toSessionResponse(out.Session),
		Report:  toReportResponse(out.Report),
	})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request, sessionID domain.SessionID) {
	report, err := s.svc.GetReport(r.Context(), sessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toReportResponse(report))
}

// ─────────────────────────────────────────────
// Mapping helpers
// ─────────────────────────────────────────────

func toSessionResponse(s *domain.Session) sessionResponse {
	return sessionResponse{
		ID:                 string(s.ID),
		UserID:             string(s.UserID),
		Mode:               string(s.Mode),
		Industry:           s.Industry,
		ValueProposition:   s.ValueProposition,
		CustomerPersona:    s.CustomerPersona,
		SuccessProbability: s.SuccessProbability,
		CurrentSpinStage:   string(s.CurrentSpinStage),
		ConversationPhase:  string(s.ConversationPhase),
		LossReason:         string(s.LossReason),
		Status:             string(s.Status),
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
		FinishedAt:         s.FinishedAt,
	}
}

func toMessageResponse(m *domain.ChatMessage) messageResponse {
	return messageResponse{
		ID:              string(m.ID),
		SessionID:       string(m.SessionID),
		Role:            string(m.Role),
		Text:            m.Text,
		Sequence:        m.Sequence,
		SuccessDelta:    m.SuccessDelta,
		SpinStage:       string(m.SpinStage),
		StageEvaluation: string(m.StageEvaluation),
		AnalysisSummary: m.AnalysisSummary,
		SystemNotes:     m.SystemNotes,
		Temperature:     m.Temperature,
		CreatedAt:       m.CreatedAt,
	}
}

func toMessagesResponse(msgs []*domain.ChatMessage) []messageResponse {
	out := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageResponse(m))
	}
	return out
}

func toReportResponse(r *domain.Report) reportResponse {
	return reportResponse{
		ID:          string(r.ID),
		SessionID:   string(r.SessionID),
		Scores:      r.Scores,
		Feedback:    r.Feedback,
		NextActions: r.NextActions,
		Details:     r.Details,
		CreatedAt:   r.CreatedAt,
	}
}

func parseMode(s string) domain.Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "detailed", "detail":
		return domain.ModeDetailed
	default:
		return domain.ModeSimple
	}
}

// ─────────────────────────────────────────────
// HTTP helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP statuses: unknown resources are
// 404, invalid session states are 400, model collaborator failures are 502.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrReportNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrSessionNotActive),
		errors.Is(err, domain.ErrSessionFinished),
		errors.Is(err, domain.ErrDuplicateMessage),
		errors.Is(err, domain.ErrNoConversationHistory),
		errors.Is(err, domain.ErrReportExists):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		var collab *domain.CollaboratorError
		if errors.As(err, &collab) {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream model call failed"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
}
