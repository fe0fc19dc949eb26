// Package session implements the chat session controller: the message
// timeline, the attachment staging area and response generation for one
// conversation with one agent.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/soyeahso/agentdesk/internal/domain"
	"github.com/soyeahso/agentdesk/internal/hooks"
	"github.com/soyeahso/agentdesk/internal/logging"
)

const (
	DefaultResponseDelay   = 2 * time.Second
	DefaultResponseTimeout = 30 * time.Second
)

// Notifier receives presentation-only notifications raised by a session.
type Notifier interface {
	Notify(ctx context.Context, sessionID string, n domain.Notification)
}

// RejectReason explains why Submit did not accept a message.
type RejectReason string

const (
	RejectEmpty  RejectReason = "empty"
	RejectBusy   RejectReason = "busy"
	RejectClosed RejectReason = "closed"
)

// SubmitResult is the outcome of Submit.
type SubmitResult struct {
	Accepted  bool             `json:"accepted"`
	Reason    RejectReason     `json:"reason,omitempty"`
	MessageID domain.MessageID `json:"messageId,omitempty"`
}

// Option configures a Controller.
type Option func(*Controller)

// WithID sets the session id. A random uuid is used otherwise.
func WithID(id string) Option { return func(c *Controller) { c.id = id } }

// WithScheduler replaces the timer source used for response generation.
func WithScheduler(s Scheduler) Option { return func(c *Controller) { c.sched = s } }

// WithResponder replaces the TemplateResponder.
func WithResponder(r Responder) Option { return func(c *Controller) { c.responder = r } }

// WithResponseDelay sets the latency before the responder is invoked.
func WithResponseDelay(d time.Duration) Option { return func(c *Controller) { c.delay = d } }

// WithResponseTimeout bounds a single Respond call. Zero disables the bound.
func WithResponseTimeout(d time.Duration) Option { return func(c *Controller) { c.timeout = d } }

// WithPolicy sets the attachment acceptance policy.
func WithPolicy(p Policy) Option { return func(c *Controller) { c.policy = p } }

// WithNotifier sets where "files attached" notifications go.
func WithNotifier(n Notifier) Option { return func(c *Controller) { c.notifier = n } }

// WithHooks emits message and response lifecycle events through h.
func WithHooks(h *hooks.Manager) Option { return func(c *Controller) { c.hooks = h } }

// WithLogger sets the parent logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithClock overrides time.Now for message timestamps.
func WithClock(now func() time.Time) Option { return func(c *Controller) { c.now = now } }

// OnBack registers a callback run once when the session is closed by Back.
func OnBack(fn func()) Option {
	return func(c *Controller) { c.onBack = append(c.onBack, fn) }
}

// Controller owns one session's timeline, staging area and pending response.
// It is safe for concurrent use.
type Controller struct {
	id        string
	agent     domain.Agent
	sched     Scheduler
	responder Responder
	delay     time.Duration
	timeout   time.Duration
	policy    Policy
	notifier  Notifier
	hooks     *hooks.Manager
	log       *logging.Logger
	now       func() time.Time
	onBack    []func()

	mu        sync.Mutex
	timeline  []domain.Message
	staged    staging
	phase     domain.Phase
	lastID    domain.MessageID
	gen       uint64 // bumped on every submit and on close
	timer     Timer
	cancel    context.CancelFunc
	subs      []subscriber
	nextSub   int
	startedAt time.Time
	updatedAt time.Time

	// queue holds event batches in mutation order. At most one goroutine,
	// the one that set delivering, drains it, and never while holding mu.
	queue      []pendingBatch
	delivering bool
}

// pendingBatch is the events of one mutation with the subscribers and
// state captured when it happened.
type pendingBatch struct {
	events []Event
	subs   []subscriber
	snap   domain.Snapshot
}

// New starts a session with agent and seeds the timeline with its greeting.
func New(agent domain.Agent, opts ...Option) *Controller {
	c := &Controller{
		agent:     agent.Clone(),
		sched:     RealScheduler,
		responder: TemplateResponder{},
		delay:     DefaultResponseDelay,
		timeout:   DefaultResponseTimeout,
		policy:    DefaultPolicy(),
		log:       logging.Nop(),
		now:       time.Now,
		phase:     domain.PhaseIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.id == "" {
		c.id = uuid.NewString()
	}
	c.log = c.log.Sub("session").With("sessionId", c.id).With("agentId", c.agent.ID)

	c.startedAt = c.now()
	c.appendLocked(domain.Message{Role: domain.RoleAgent, Content: Greeting(c.agent)})

	c.log.Info().Str("role", c.agent.Role).Msg("session started")
	return c
}

// ID returns the session id.
func (c *Controller) ID() string { return c.id }

// Agent returns the agent the session was started with.
func (c *Controller) Agent() domain.Agent { return c.agent.Clone() }

// StageAttachment adds one file to the staging area and returns the new
// staging count.
func (c *Controller) StageAttachment(ref domain.AttachmentRef) (int, error) {
	return c.StageAttachments(ref)
}

// StageAttachments adds files to the staging area as one batch. If any file
// is refused nothing is staged.
func (c *Controller) StageAttachments(refs ...domain.AttachmentRef) (int, error) {
	c.mu.Lock()
	if c.phase == domain.PhaseClosed {
		n := c.staged.len()
		c.mu.Unlock()
		return n, ErrSessionClosed
	}

	batch := make([]domain.AttachmentRef, 0, len(refs))
	for _, ref := range refs {
		if ref.MimeType == "" {
			ref.MimeType = MimeTypeOf(ref.Name)
		}
		if err := c.policy.Check(ref); err != nil {
			n := c.staged.len()
			c.mu.Unlock()
			c.log.Warn().Err(err).Str("file", ref.Name).Int64("size", ref.Size).Msg("attachment rejected")
			return n, err
		}
		batch = append(batch, ref)
	}
	if len(batch) == 0 {
		n := c.staged.len()
		c.mu.Unlock()
		return n, nil
	}

	n := c.staged.addAll(batch)
	c.updatedAt = c.now()
	c.unlockAndPublish([]Event{{Type: EventStagingChanged}})

	c.log.Debug().Int("added", len(batch)).Int("staged", n).Msg("files staged")
	c.notify(domain.Notification{
		Title:       "Files attached",
		Description: fmt.Sprintf("%d file(s) ready for context analysis", len(batch)),
	})
	return n, nil
}

// RemoveStagedAttachment removes the staged file at index. Out-of-range
// indexes and closed sessions are ignored.
func (c *Controller) RemoveStagedAttachment(index int) bool {
	c.mu.Lock()
	if c.phase == domain.PhaseClosed || !c.staged.remove(index) {
		c.mu.Unlock()
		return false
	}
	c.updatedAt = c.now()
	c.unlockAndPublish([]Event{{Type: EventStagingChanged}})
	return true
}

// Submit appends a user message carrying text and every staged file, then
// schedules the agent's response. Blank text with nothing staged, a
// response already in flight and a closed session are all rejected without
// touching the timeline.
func (c *Controller) Submit(text string) SubmitResult {
	c.mu.Lock()
	switch {
	case c.phase == domain.PhaseClosed:
		c.mu.Unlock()
		return SubmitResult{Reason: RejectClosed}
	case c.phase == domain.PhaseAwaitingResponse:
		c.mu.Unlock()
		c.log.Debug().Msg("submit ignored while awaiting response")
		return SubmitResult{Reason: RejectBusy}
	case strings.TrimSpace(text) == "" && c.staged.len() == 0:
		c.mu.Unlock()
		return SubmitResult{Reason: RejectEmpty}
	}

	attachments := c.staged.drain()
	msg := c.appendLocked(domain.Message{
		Role:        domain.RoleUser,
		Content:     text,
		Attachments: attachments,
	})
	c.phase = domain.PhaseAwaitingResponse

	c.gen++
	gen := c.gen
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	req := Request{
		SessionID: c.id,
		Agent:     c.agent.Clone(),
		Message:   msg.Clone(),
		History:   c.timelineLocked(),
	}
	c.timer = c.sched.AfterFunc(c.delay, func() { c.generate(ctx, gen, req) })

	events := []Event{messageEvent(msg)}
	if len(attachments) > 0 {
		events = append(events, Event{Type: EventStagingChanged})
	}
	events = append(events, Event{Type: EventPhaseChanged})
	c.unlockAndPublish(events)

	c.log.Info().
		Uint64("messageId", uint64(msg.ID)).
		Int("attachments", len(attachments)).
		Str("phase", string(domain.PhaseAwaitingResponse)).
		Msg("message submitted")
	c.emit(hooks.EventMessageSubmitted, map[string]any{
		"messageId":   uint64(msg.ID),
		"attachments": len(attachments),
	})
	return SubmitResult{Accepted: true, MessageID: msg.ID}
}

// generate runs the responder for the submit that produced gen and appends
// its answer, unless the session moved on in the meantime.
func (c *Controller) generate(ctx context.Context, gen uint64, req Request) {
	if ctx.Err() != nil {
		return
	}
	rctx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := respondSafely(rctx, c.responder, req)

	c.mu.Lock()
	if c.gen != gen || c.phase != domain.PhaseAwaitingResponse {
		c.mu.Unlock()
		c.log.Debug().Uint64("generation", gen).Msg("dropping stale response")
		return
	}

	var msg domain.Message
	if err != nil {
		msg = c.appendLocked(domain.Message{
			Role:    domain.RoleAgent,
			Content: failureContent,
			Error:   &domain.MessageError{Code: failureCode(err), Message: err.Error()},
		})
	} else {
		msg = c.appendLocked(domain.Message{
			Role:      domain.RoleAgent,
			Content:   reply.Content,
			Artifacts: append([]domain.Artifact(nil), reply.Artifacts...),
		})
	}
	c.phase = domain.PhaseIdle
	c.timer = nil
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.unlockAndPublish([]Event{messageEvent(msg), {Type: EventPhaseChanged}})

	data := map[string]any{"messageId": uint64(msg.ID), "durationMs": time.Since(start).Milliseconds()}
	if err != nil {
		c.log.Warn().Err(err).Str("code", msg.Error.Code).Msg("response generation failed")
		data["code"] = msg.Error.Code
		c.emit(hooks.EventResponseFailed, data)
		return
	}
	c.log.Info().Uint64("messageId", uint64(msg.ID)).Int("artifacts", len(msg.Artifacts)).Msg("response ready")
	data["artifacts"] = len(msg.Artifacts)
	c.emit(hooks.EventResponseReady, data)
}

func failureCode(err error) string {
	var pe *panicError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	case errors.As(err, &pe):
		return CodeResponderPanic
	default:
		return CodeResponderError
	}
}

// Back closes the session. A pending response is cancelled and never
// lands; the timeline is kept for readers. Calling Back again does nothing.
func (c *Controller) Back() {
	c.mu.Lock()
	if c.phase == domain.PhaseClosed {
		c.mu.Unlock()
		return
	}
	c.closeLocked()
}

// closeIfIdleSince closes the session if it is idle and has not changed
// since cutoff. The check and the close happen under one lock, so a submit
// cannot slip in between.
func (c *Controller) closeIfIdleSince(cutoff time.Time) bool {
	c.mu.Lock()
	if c.phase != domain.PhaseIdle || c.updatedAt.After(cutoff) {
		c.mu.Unlock()
		return false
	}
	c.closeLocked()
	return true
}

// closeLocked tears the session down. It is called with mu held and
// releases it.
func (c *Controller) closeLocked() {
	wasAwaiting := c.phase == domain.PhaseAwaitingResponse
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	c.phase = domain.PhaseClosed
	c.updatedAt = c.now()
	callbacks := c.onBack
	c.unlockAndPublish([]Event{{Type: EventPhaseChanged}, {Type: EventClosed}})

	c.log.Info().Bool("cancelledPending", wasAwaiting).Msg("session closed")
	for _, fn := range callbacks {
		fn()
	}
}

// Subscribe registers fn for every subsequent Event. Events arrive in
// mutation order, one at a time, without the controller lock held: fn runs
// on a mutating goroutine, which is not always the one that made the
// change. fn may read from the controller. A mutation made from fn is
// delivered after fn returns.
func (c *Controller) Subscribe(fn func(Event)) (cancel func()) {
	c.mu.Lock()
	c.nextSub++
	id := c.nextSub
	c.subs = append(c.subs, subscriber{id: id, fn: fn})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, s := range c.subs {
				if s.id == id {
					c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Snapshot returns a copy of the session state.
func (c *Controller) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Timeline returns a copy of every message in insertion order.
func (c *Controller) Timeline() []domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timelineLocked()
}

// Staged returns a copy of the staging area.
func (c *Controller) Staged() []domain.AttachmentRef {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.staged.list()
}

// Phase returns the current phase.
func (c *Controller) Phase() domain.Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// LastActivity returns when the session state last changed.
func (c *Controller) LastActivity() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updatedAt
}

func (c *Controller) appendLocked(m domain.Message) domain.Message {
	c.lastID++
	m.ID = c.lastID
	m.Timestamp = c.now()
	c.timeline = append(c.timeline, m)
	c.updatedAt = m.Timestamp
	return m.Clone()
}

func (c *Controller) timelineLocked() []domain.Message {
	out := make([]domain.Message, len(c.timeline))
	for i, m := range c.timeline {
		out[i] = m.Clone()
	}
	return out
}

func (c *Controller) snapshotLocked() domain.Snapshot {
	return domain.Snapshot{
		SessionID: c.id,
		Agent:     c.agent.Clone(),
		Phase:     c.phase,
		Timeline:  c.timelineLocked(),
		Staged:    c.staged.list(),
		StartedAt: c.startedAt,
		UpdatedAt: c.updatedAt,
	}
}

// unlockAndPublish queues events for the subscribers registered at the
// time of the mutation, releases mu, and delivers the queue unless another
// goroutine already is.
func (c *Controller) unlockAndPublish(events []Event) {
	if len(c.subs) == 0 {
		c.mu.Unlock()
		return
	}
	c.queue = append(c.queue, pendingBatch{
		events: events,
		subs:   append([]subscriber(nil), c.subs...),
		snap:   c.snapshotLocked(),
	})
	if c.delivering {
		c.mu.Unlock()
		return
	}
	c.delivering = true
	c.mu.Unlock()
	c.deliver()
}

// deliver drains the queue, taking mu only to pop batches.
func (c *Controller) deliver() {
	for {
		c.mu.Lock()
		if len(c.queue) == 0 {
			c.delivering = false
			c.mu.Unlock()
			return
		}
		b := c.queue[0]
		c.queue[0] = pendingBatch{}
		c.queue = c.queue[1:]
		c.mu.Unlock()

		for _, e := range b.events {
			e.SessionID = c.id
			e.Snapshot = b.snap
			for _, s := range b.subs {
				s.fn(e)
			}
		}
	}
}

func (c *Controller) notify(n domain.Notification) {
	if c.notifier == nil {
		return
	}
	c.notifier.Notify(context.Background(), c.id, n)
}

func (c *Controller) emit(event string, data map[string]any) {
	if c.hooks == nil {
		return
	}
	data["sessionId"] = c.id
	data["agentId"] = c.agent.ID
	c.hooks.Emit(context.Background(), event, data)
}
