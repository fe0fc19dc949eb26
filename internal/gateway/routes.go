package gateway

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/soyeahso/agentdesk/internal/catalog"
	"github.com/soyeahso/agentdesk/internal/domain"
)

// capabilityPreviewSize is how many capabilities an agent card lists
// before collapsing the rest into a count.
const capabilityPreviewSize = 3

// maxUploadCount caps the files accepted by one multipart request.
const maxUploadCount = 32

// AgentView is an agent plus the presentation hints a renderer needs.
type AgentView struct {
	domain.Agent
	Variant          catalog.Variant `json:"variant"`
	StatusTone       catalog.Tone    `json:"statusTone"`
	Preview          []string        `json:"capabilityPreview"`
	MoreCapabilities int             `json:"moreCapabilities,omitempty"`
}

func newAgentView(a domain.Agent) AgentView {
	shown, more := catalog.CapabilityPreview(a, capabilityPreviewSize)
	return AgentView{
		Agent:            a,
		Variant:          catalog.VariantOf(a.Role),
		StatusTone:       catalog.StatusTone(a.Status),
		Preview:          shown,
		MoreCapabilities: more,
	}
}

func (s *Server) agentViews() []AgentView {
	agents := s.agents.List()
	views := make([]AgentView, len(agents))
	for i, a := range agents {
		views[i] = newAgentView(a)
	}
	return views
}

// router builds the HTTP routes. Everything except /health and /ws
// requires bearer auth; /ws authenticates in its own handshake.
func (s *Server) router() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(handleNotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(handleMethodNotAllowed)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)

	api := r.NewRoute().Subrouter()
	api.Use(s.requireAuth)
	api.HandleFunc("/agents", s.handleListAgents).Methods(http.MethodGet)
	api.HandleFunc("/sessions", s.handleListSessions).Methods(http.MethodGet)
	api.HandleFunc("/sessions", s.handleStartSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/attachments", s.handleAttach).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/attachments/{index:[0-9]+}", s.handleDetach).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/messages", s.handleSubmit).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/back", s.handleBack).Methods(http.MethodPost)

	return r
}

// requireAuth rejects requests without valid bearer credentials.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.authLimiter.allow(r.RemoteAddr) {
			writeError(w, http.StatusTooManyRequests, ErrorShape{Code: CodeRateLimited, Message: "too many failed auth attempts", Retryable: true})
			return
		}
		if res := AuthorizeRequest(s.auth, r); !res.OK {
			s.authLimiter.recordFailure(r.RemoteAddr)
			w.Header().Set("WWW-Authenticate", `Bearer realm="agentdesk"`)
			writeError(w, http.StatusUnauthorized, ErrorShape{Code: CodeUnauthorized, Message: res.Reason})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"agents": s.agentViews()})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"sessions": s.sessions.List()})
}

type startSessionParams struct {
	AgentID string `json:"agentId"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var p startSessionParams
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, ErrorShape{Code: CodeInvalidParams, Message: "invalid JSON body"})
		return
	}
	snap, err := s.startSession(p.AgentID)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	c, err := s.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c.Snapshot())
}

type attachParams struct {
	Attachments []domain.AttachmentRef `json:"attachments"`
}

type attachResult struct {
	Staged int `json:"staged"`
}

// handleAttach stages files from either a multipart upload (one or more
// "file" parts) or a JSON list of attachment metadata. Uploaded bytes are
// only counted for the size check and then dropped.
func (s *Server) handleAttach(w http.ResponseWriter, r *http.Request) {
	c, err := s.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	var refs []domain.AttachmentRef
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		refs, err = readMultipartRefs(r)
	} else {
		var p attachParams
		err = json.NewDecoder(r.Body).Decode(&p)
		refs = p.Attachments
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorShape{Code: CodeInvalidParams, Message: err.Error()})
		return
	}
	if len(refs) == 0 {
		writeError(w, http.StatusBadRequest, ErrorShape{Code: CodeInvalidParams, Message: "no attachments in request"})
		return
	}

	n, err := c.StageAttachments(refs...)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attachResult{Staged: n})
}

// readMultipartRefs streams each "file" part, recording its name, declared
// content type and byte count.
func readMultipartRefs(r *http.Request) ([]domain.AttachmentRef, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("reading multipart body: %w", err)
	}

	var refs []domain.AttachmentRef
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading multipart body: %w", err)
		}
		if part.FormName() != "file" || part.FileName() == "" {
			part.Close()
			continue
		}
		if len(refs) == maxUploadCount {
			part.Close()
			return nil, fmt.Errorf("at most %d files per request", maxUploadCount)
		}

		size, err := io.Copy(io.Discard, part)
		part.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", part.FileName(), err)
		}

		ref := domain.AttachmentRef{Name: part.FileName(), Size: size}
		if ct := part.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
			ref.MimeType = ct
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

type detachResult struct {
	Removed bool `json:"removed"`
	Staged  int  `json:"staged"`
}

func (s *Server) handleDetach(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	c, err := s.sessions.Get(vars["id"])
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorShape{Code: CodeInvalidParams, Message: "invalid index"})
		return
	}

	removed := c.RemoveStagedAttachment(index)
	writeJSON(w, http.StatusOK, detachResult{Removed: removed, Staged: len(c.Staged())})
}

type submitParams struct {
	Text string `json:"text"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	c, err := s.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	var p submitParams
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, ErrorShape{Code: CodeInvalidParams, Message: "invalid JSON body"})
		return
	}

	res := c.Submit(p.Text)
	if !res.Accepted {
		status, shape := rejection(res.Reason)
		writeError(w, status, shape)
		return
	}
	writeJSON(w, http.StatusAccepted, res)
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Close(mux.Vars(r)["id"]); err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"closed": true})
}

func (s *Server) startSession(agentID string) (domain.Snapshot, error) {
	agentID = strings.TrimSpace(agentID)
	if agentID == "" {
		return domain.Snapshot{}, errMissingAgentID
	}
	c, err := s.sessions.Start(agentID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return c.Snapshot(), nil
}

func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	status, shape := classify(err)
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Msg("request failed")
	}
	writeError(w, status, shape)
}
