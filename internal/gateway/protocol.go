package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ProtocolVersion is the only frame protocol revision the desk speaks.
// Clients advertise a [MinProtocol, MaxProtocol] range in connect.
const ProtocolVersion = 1

// Frame types for the WebSocket protocol.
const (
	FrameTypeRequest  = "req"
	FrameTypeResponse = "res"
	FrameTypeEvent    = "event"
)

// Events pushed by the server. Session events carry a session.Event payload.
const (
	EventConnectChallenge = "connect.challenge"
	EventSession          = "session.event"
)

// Error codes carried in ErrorShape.Code, shared by the HTTP and RPC surfaces.
const (
	// Caller mistakes.
	CodeInvalidParams  = "invalid_params"
	CodeNotFound       = "not_found"
	CodeMethodNotFound = "method_not_found"
	CodeProtocolError  = "protocol_error"

	// Submit and attach rejections from a session controller.
	CodeUnsupportedAttachment = "unsupported_attachment"
	CodeAttachmentTooLarge    = "attachment_too_large"
	CodeSessionClosed         = "session_closed"
	CodeBusy                  = "busy"
	CodeEmpty                 = "empty"

	CodeUnauthorized = "unauthorized"
	CodeRateLimited  = "rate_limited"
	CodeInternal     = "internal"
)

// Frame is the envelope for every WebSocket message. Type selects which
// of the remaining fields are meaningful.
type Frame struct {
	Type string `json:"type"`

	// req and res
	ID string `json:"id,omitempty"`

	// req
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`

	// res
	OK      *bool           `json:"ok,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   *ErrorShape     `json:"error,omitempty"`

	// event; Payload is shared with res
	Event string `json:"event,omitempty"`
	Seq   int64  `json:"seq,omitempty"`
}

var (
	errMissingID     = errors.New("request frame has no id")
	errMissingMethod = errors.New("request frame has no method")
)

// checkRequest reports why f cannot be dispatched as a request.
func (f Frame) checkRequest() error {
	switch {
	case f.Type != FrameTypeRequest:
		return fmt.Errorf("frame type %q is not a request", f.Type)
	case f.ID == "":
		return errMissingID
	case f.Method == "":
		return errMissingMethod
	}
	return nil
}

// decodeParams unmarshals the request params into v. Absent params leave
// v untouched.
func (f Frame) decodeParams(v any) error {
	if len(f.Params) == 0 {
		return nil
	}
	return json.Unmarshal(f.Params, v)
}

// ErrorShape is the error body of a failed response, and of HTTP errors.
type ErrorShape struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
	Retryable  bool   `json:"retryable,omitempty"`
	RetryAfter int    `json:"retryAfterMs,omitempty"`
}

// ConnectParams open the handshake. A zero MaxProtocol is treated as
// "whatever the server speaks".
type ConnectParams struct {
	MinProtocol int          `json:"minProtocol"`
	MaxProtocol int          `json:"maxProtocol"`
	Client      ClientInfo   `json:"client"`
	Auth        *ConnectAuth `json:"auth,omitempty"`
}

// negotiate picks the protocol revision for the connection.
func (p ConnectParams) negotiate() (int, error) {
	if p.MaxProtocol != 0 && p.MaxProtocol < ProtocolVersion {
		return 0, fmt.Errorf("client protocol %d..%d below %d", p.MinProtocol, p.MaxProtocol, ProtocolVersion)
	}
	if p.MinProtocol > ProtocolVersion {
		return 0, fmt.Errorf("client protocol %d..%d above %d", p.MinProtocol, p.MaxProtocol, ProtocolVersion)
	}
	return ProtocolVersion, nil
}

// ClientInfo identifies the front end on the other side of the socket,
// for example the terminal UI or a web page.
type ClientInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Version  string `json:"version"`
	Platform string `json:"platform,omitempty"`
}

// ConnectAuth carries credentials in the connect request.
type ConnectAuth struct {
	Token    string `json:"token,omitempty"`
	Password string `json:"password,omitempty"`
}

// HelloOK answers a successful connect.
type HelloOK struct {
	Protocol int          `json:"protocol"`
	Server   ServerInfo   `json:"server"`
	Features Features     `json:"features"`
	Policy   ServerPolicy `json:"policy"`
}

type ServerInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
	ConnID  string `json:"connId"`
}

// Features lists the RPC methods and pushed events.
type Features struct {
	Methods []string `json:"methods"`
	Events  []string `json:"events"`
}

// ServerPolicy tells the client the connection limits. A client that lets
// MaxOutbox frames pile up unread is disconnected.
type ServerPolicy struct {
	MaxPayloadBytes int `json:"maxPayloadBytes"`
	MaxOutbox       int `json:"maxOutbox"`
}

// NewRequest creates a request frame.
func NewRequest(id, method string, params any) (Frame, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return Frame{}, fmt.Errorf("encoding %s params: %w", method, err)
	}
	return Frame{Type: FrameTypeRequest, ID: id, Method: method, Params: raw}, nil
}

// NewResponse creates a success response frame.
func NewResponse(id string, payload any) (Frame, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, fmt.Errorf("encoding response %s: %w", id, err)
	}
	return Frame{Type: FrameTypeResponse, ID: id, OK: boolPtr(true), Payload: raw}, nil
}

// NewErrorResponse creates an error response frame.
func NewErrorResponse(id string, shape ErrorShape) Frame {
	return Frame{Type: FrameTypeResponse, ID: id, OK: boolPtr(false), Error: &shape}
}

// NewEvent creates an event frame. A zero seq is omitted from the wire.
func NewEvent(event string, payload any, seq int64) (Frame, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, fmt.Errorf("encoding %s event: %w", event, err)
	}
	return Frame{Type: FrameTypeEvent, Event: event, Payload: raw, Seq: seq}, nil
}

func boolPtr(b bool) *bool { return &b }
