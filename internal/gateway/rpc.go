package gateway

import (
	"github.com/soyeahso/agentdesk/internal/domain"
	"github.com/soyeahso/agentdesk/internal/session"
)

// registerRPCHandlers sets up all JSON-RPC method handlers.
func (s *Server) registerRPCHandlers() {
	s.Handle("health", s.rpcHealth)
	s.Handle("agents.list", s.rpcAgentsList)
	s.Handle("session.list", s.rpcSessionList)
	s.Handle("session.start", s.rpcSessionStart)
	s.Handle("session.get", s.rpcSessionGet)
	s.Handle("session.attach", s.rpcSessionAttach)
	s.Handle("session.detach", s.rpcSessionDetach)
	s.Handle("session.submit", s.rpcSessionSubmit)
	s.Handle("session.back", s.rpcSessionBack)
	s.Handle("session.subscribe", s.rpcSessionSubscribe)
	s.Handle("session.unsubscribe", s.rpcSessionUnsubscribe)
}

type sessionParams struct {
	SessionID string `json:"sessionId"`
}

type sessionScoped interface {
	sessionID() string
}

// lookup decodes params into p and resolves p's session. It responds with
// an error and returns nil when either step fails.
func lookup(rc *RequestContext, p sessionScoped) *session.Controller {
	if err := rc.Params(p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return nil
	}
	if p.sessionID() == "" {
		rc.RespondError(CodeInvalidParams, "sessionId is required")
		return nil
	}
	c, err := rc.Server.sessions.Get(p.sessionID())
	if err != nil {
		rc.Fail(err)
		return nil
	}
	return c
}

func (p *sessionParams) sessionID() string { return p.SessionID }

func (s *Server) rpcHealth(rc *RequestContext) {
	rc.Respond(s.health())
}

func (s *Server) rpcAgentsList(rc *RequestContext) {
	rc.Respond(map[string]any{"agents": s.agentViews()})
}

func (s *Server) rpcSessionList(rc *RequestContext) {
	rc.Respond(map[string]any{"sessions": s.sessions.List()})
}

func (s *Server) rpcSessionStart(rc *RequestContext) {
	var p startSessionParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}
	snap, err := s.startSession(p.AgentID)
	if err != nil {
		rc.Fail(err)
		return
	}
	rc.Respond(snap)
}

func (s *Server) rpcSessionGet(rc *RequestContext) {
	c := lookup(rc, &sessionParams{})
	if c == nil {
		return
	}
	rc.Respond(c.Snapshot())
}

type rpcAttachParams struct {
	sessionParams
	Attachments []domain.AttachmentRef `json:"attachments"`
}

func (s *Server) rpcSessionAttach(rc *RequestContext) {
	var p rpcAttachParams
	c := lookup(rc, &p)
	if c == nil {
		return
	}
	if len(p.Attachments) == 0 {
		rc.RespondError(CodeInvalidParams, "attachments are required")
		return
	}
	n, err := c.StageAttachments(p.Attachments...)
	if err != nil {
		rc.Fail(err)
		return
	}
	rc.Respond(attachResult{Staged: n})
}

type rpcDetachParams struct {
	sessionParams
	Index *int `json:"index"`
}

func (s *Server) rpcSessionDetach(rc *RequestContext) {
	var p rpcDetachParams
	c := lookup(rc, &p)
	if c == nil {
		return
	}
	if p.Index == nil {
		rc.RespondError(CodeInvalidParams, "index is required")
		return
	}
	removed := c.RemoveStagedAttachment(*p.Index)
	rc.Respond(detachResult{Removed: removed, Staged: len(c.Staged())})
}

type rpcSubmitParams struct {
	sessionParams
	Text string `json:"text"`
}

func (s *Server) rpcSessionSubmit(rc *RequestContext) {
	var p rpcSubmitParams
	c := lookup(rc, &p)
	if c == nil {
		return
	}
	res := c.Submit(p.Text)
	if !res.Accepted {
		_, shape := rejection(res.Reason)
		rc.RespondShape(shape)
		return
	}
	rc.Respond(res)
}

func (s *Server) rpcSessionBack(rc *RequestContext) {
	var p sessionParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}
	if err := s.sessions.Close(p.SessionID); err != nil {
		rc.Fail(err)
		return
	}
	rc.Respond(map[string]any{"closed": true})
}

// rpcSessionSubscribe streams the session's events to the client as
// session.event frames until the client unsubscribes or disconnects.
// The response carries the snapshot the stream starts from.
func (s *Server) rpcSessionSubscribe(rc *RequestContext) {
	c := lookup(rc, &sessionParams{})
	if c == nil {
		return
	}
	client := rc.Client

	cancel := c.Subscribe(func(ev session.Event) {
		frame, err := NewEvent(EventSession, ev, s.eventSeq.Add(1))
		if err != nil {
			s.log.Error().Err(err).Str("sessionId", ev.SessionID).Msg("encoding session event")
			return
		}
		client.Enqueue(frame)
	})
	if !client.track(c.ID(), cancel) {
		cancel()
	}

	rc.Respond(map[string]any{"subscribed": true, "snapshot": c.Snapshot()})
}

func (s *Server) rpcSessionUnsubscribe(rc *RequestContext) {
	var p sessionParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}
	rc.Respond(map[string]any{"unsubscribed": rc.Client.untrack(p.SessionID)})
}
