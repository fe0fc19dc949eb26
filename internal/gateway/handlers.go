package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/soyeahso/agentdesk/internal/catalog"
	"github.com/soyeahso/agentdesk/internal/session"
)

// HealthResponse is returned by health endpoints. The public HTTP endpoint
// only populates Status; the authenticated RPC handler populates all fields.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version,omitempty"`
	Clients  int    `json:"clients,omitempty"`
	Sessions int    `json:"sessions,omitempty"`
	UptimeMs int64  `json:"uptimeMs,omitempty"`
}

// handleHealth returns the server health status. Only status is exposed
// publicly; detailed info is available via the authenticated RPC health method.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) health() HealthResponse {
	return HealthResponse{
		Status:   "ok",
		Version:  s.version,
		Clients:  s.clients.Count(),
		Sessions: s.sessions.Count(),
		UptimeMs: s.uptime().Milliseconds(),
	}
}

// handleNotFound returns a 404 for unknown routes.
func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, ErrorShape{Code: CodeNotFound, Message: "no route for " + r.URL.Path})
}

func handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, ErrorShape{Code: CodeMethodNotFound, Message: r.Method + " not allowed on " + r.URL.Path})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errorBody is the JSON body of every non-2xx HTTP response.
type errorBody struct {
	Error ErrorShape `json:"error"`
}

func writeError(w http.ResponseWriter, status int, shape ErrorShape) {
	writeJSON(w, status, errorBody{Error: shape})
}

var errInvalidParams = errors.New("invalid params")

var errMissingAgentID = fmt.Errorf("%w: agentId is required", errInvalidParams)

// classify maps a domain error to an HTTP status and error shape.
func classify(err error) (int, ErrorShape) {
	shape := ErrorShape{Message: err.Error()}
	switch {
	case errors.Is(err, errInvalidParams):
		shape.Code = CodeInvalidParams
		return http.StatusBadRequest, shape
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, catalog.ErrUnknownAgent):
		shape.Code = CodeNotFound
		return http.StatusNotFound, shape
	case errors.Is(err, session.ErrUnsupportedAttachment):
		shape.Code = CodeUnsupportedAttachment
		return http.StatusUnsupportedMediaType, shape
	case errors.Is(err, session.ErrAttachmentTooLarge):
		shape.Code = CodeAttachmentTooLarge
		return http.StatusRequestEntityTooLarge, shape
	case errors.Is(err, session.ErrSessionClosed):
		shape.Code = CodeSessionClosed
		return http.StatusConflict, shape
	default:
		shape.Code = CodeInternal
		return http.StatusInternalServerError, shape
	}
}

// rejection maps a refused submit to an HTTP status and error shape.
func rejection(reason session.RejectReason) (int, ErrorShape) {
	switch reason {
	case session.RejectBusy:
		return http.StatusConflict, ErrorShape{Code: CodeBusy, Message: "a response is already being prepared", Retryable: true}
	case session.RejectClosed:
		return http.StatusConflict, ErrorShape{Code: CodeSessionClosed, Message: session.ErrSessionClosed.Error()}
	default:
		return http.StatusUnprocessableEntity, ErrorShape{Code: CodeEmpty, Message: "nothing to send"}
	}
}

// RequestHandler processes an incoming RPC request frame from a client.
type RequestHandler func(ctx *RequestContext)

// RequestContext carries everything a handler needs.
type RequestContext struct {
	Client *Client
	Frame  Frame
	Server *Server
}

// Respond sends a success response.
func (rc *RequestContext) Respond(payload any) {
	if err := rc.Client.Respond(rc.Frame.ID, payload); err != nil {
		rc.Server.log.Warn().Err(err).Str("method", rc.Frame.Method).Msg("failed to send response")
	}
}

// RespondError sends an error response.
func (rc *RequestContext) RespondError(code, message string) {
	rc.RespondShape(ErrorShape{Code: code, Message: message})
}

// RespondShape sends a fully populated error response.
func (rc *RequestContext) RespondShape(shape ErrorShape) {
	if err := rc.Client.RespondError(rc.Frame.ID, shape); err != nil {
		rc.Server.log.Warn().Err(err).Str("method", rc.Frame.Method).Msg("failed to send error response")
	}
}

// Fail reports err using the same codes as the HTTP surface.
func (rc *RequestContext) Fail(err error) {
	_, shape := classify(err)
	rc.RespondShape(shape)
}

// Params unmarshals the request params into the given target.
func (rc *RequestContext) Params(target any) error {
	return rc.Frame.decodeParams(target)
}
