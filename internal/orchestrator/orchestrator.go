// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jeranaias/scribe-tui/internal/completion"
	"github.com/jeranaias/scribe-tui/internal/model"
	"github.com/jeranaias/scribe-tui/internal/ratelimit"
	"github.com/jeranaias/scribe-tui/internal/storage"
	"github.com/jeranaias/scribe-tui/internal/util"
)

// MinReplyDelay is the floor between dispatching a request and showing
// its successful reply. Instant replies feel broken; the floor does not
// apply to error or cancel paths.
const MinReplyDelay = 1500 * time.Millisecond

// failureMessage is the user-visible text for a failed request. Only
// this package fabricates chat-visible error text; transport detail
// stays in the log.
const failureMessage = "Something went wrong while answering. Please try again."

// CompletionClient is the completion dependency, satisfied by
// *completion.Client.
type CompletionClient interface {
	Complete(ctx context.Context, messages []completion.ChatMessage) (string, error)
}

// Uploader is the attachment relay dependency, satisfied by
// *upload.Client.
type Uploader interface {
	Upload(ctx context.Context, att *model.Attachment) (string, error)
}

// pendingRequest is the single in-flight request slot: the session the
// reply belongs to plus the handle that aborts it.
type pendingRequest struct {
	sessionID string
	cancel    context.CancelFunc
}

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// Orchestrator owns all chat state. All exported methods are safe for
// concurrent use.
type Orchestrator struct {
	mu       sync.Mutex
	sessions []*model.ChatSession
	activeID string
	pending  *pendingRequest

	store    *storage.SessionStore
	limiter  *ratelimit.Limiter
	client   CompletionClient
	uploader Uploader

	events   chan Event
	minDelay time.Duration
	wg       sync.WaitGroup
}

// New creates an orchestrator, loading persisted sessions. An empty
// store gets a fresh session immediately so the list is never empty.
// The newest session becomes active.
func New(store *storage.SessionStore, limiter *ratelimit.Limiter, client CompletionClient, uploader Uploader) *Orchestrator {
	o := &Orchestrator{
		store:    store,
		limiter:  limiter,
		client:   client,
		uploader: uploader,
		events:   make(chan Event, 32),
		minDelay: MinReplyDelay,
	}

	o.sessions = store.Load()
	if len(o.sessions) == 0 {
		o.sessions = []*model.ChatSession{model.NewChatSession()}
		o.persistLocked()
	}
	o.activeID = o.sessions[0].ID
	return o
}

// =============================================================================
// SESSION QUERIES
// =============================================================================

// Sessions returns a snapshot of all sessions, newest first.
func (o *Orchestrator) Sessions() []*model.ChatSession {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]*model.ChatSession, len(o.sessions))
	for i, s := range o.sessions {
		out[i] = s.Clone()
	}
	return out
}

// Active returns a snapshot of the active session.
func (o *Orchestrator) Active() *model.ChatSession {
	o.mu.Lock()
	defer o.mu.Unlock()
	if s := o.findLocked(o.activeID); s != nil {
		return s.Clone()
	}
	return nil
}

// ActiveID returns the active session's ID.
func (o *Orchestrator) ActiveID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.activeID
}

// InFlight reports whether a request is currently pending.
func (o *Orchestrator) InFlight() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pending != nil
}

// UsageCount returns how many messages were sent in the trailing quota
// window.
func (o *Orchestrator) UsageCount() int {
	return o.limiter.Count()
}

// =============================================================================
// SESSION OPERATIONS
// =============================================================================

// NewSession creates a fresh session and makes it active. When the
// active session is already empty this is a no-op: the empty session is
// reused instead of stacking up blanks. Returns the active session ID.
func (o *Orchestrator) NewSession() string {
	o.mu.Lock()
	defer o.mu.Unlock()

	if active := o.findLocked(o.activeID); active != nil && active.IsEmpty() {
		return o.activeID
	}

	o.cancelPendingForLocked(o.activeID)

	s := model.NewChatSession()
	o.sessions = append([]*model.ChatSession{s}, o.sessions...)
	o.activeID = s.ID
	o.persistLocked()
	o.emit(Event{Kind: EventSessionsChanged, SessionID: s.ID})
	return s.ID
}

// SetActive switches the active session. Switching away cancels a
// pending request that targets the departed session.
func (o *Orchestrator) SetActive(id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.findLocked(id) == nil {
		return ErrSessionNotFound
	}
	if id == o.activeID {
		return nil
	}

	o.cancelPendingForLocked(o.activeID)
	o.activeID = id
	o.emit(Event{Kind: EventSessionsChanged, SessionID: id})
	return nil
}

// DeleteSession removes a session. A pending request targeting it is
// cancelled; requests for other sessions are untouched. Deleting the
// last session immediately creates and persists a fresh empty one, so
// the list is never empty.
func (o *Orchestrator) DeleteSession(id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	idx := -1
	for i, s := range o.sessions {
		if s.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrSessionNotFound
	}

	o.cancelPendingForLocked(id)
	o.sessions = append(o.sessions[:idx], o.sessions[idx+1:]...)

	if len(o.sessions) == 0 {
		o.sessions = []*model.ChatSession{model.NewChatSession()}
	}
	if o.activeID == id {
		o.activeID = o.sessions[0].ID
	}

	o.persistLocked()
	o.emit(Event{Kind: EventSessionsChanged, SessionID: o.activeID})
	return nil
}

// =============================================================================
// SEND
// =============================================================================

// SendMessage validates and dispatches a send into the active session.
// It returns once the user message is appended; the reply arrives
// asynchronously via the Events channel.
func (o *Orchestrator) SendMessage(text string, att *model.Attachment) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if text == "" && att == nil {
		return ErrEmptyMessage
	}
	session := o.findLocked(o.activeID)
	if session == nil {
		return ErrNoActiveSession
	}
	if o.pending != nil {
		return ErrRequestInFlight
	}

	// Quota check happens before anything touches the network. A denial
	// leaves a synthetic message in the transcript and never dispatches.
	if res := o.limiter.Check(); !res.Allowed {
		session.Append(model.NewErrorMessage(rateLimitText(res.TimeRemaining)))
		o.persistLocked()
		o.emit(Event{Kind: EventSessionsChanged, SessionID: session.ID})
		return ErrRateLimited
	}

	userMsg := model.NewUserMessage(text, att)
	session.Append(userMsg)
	o.persistLocked()

	// Usage is recorded on attempt: a later failure or cancel still
	// consumed quota.
	o.limiter.Record()

	ctx, cancel := context.WithCancel(context.Background())
	p := &pendingRequest{sessionID: session.ID, cancel: cancel}
	o.pending = p

	history := make([]model.Message, session.MessageCount())
	copy(history, session.Messages)

	o.wg.Add(1)
	go o.run(ctx, p, history, att)

	o.emit(Event{Kind: EventSessionsChanged, SessionID: session.ID})
	o.emit(Event{Kind: EventRequestStarted, SessionID: session.ID})
	return nil
}

// run executes the upload and completion legs of one send.
func (o *Orchestrator) run(ctx context.Context, p *pendingRequest, history []model.Message, att *model.Attachment) {
	defer o.wg.Done()
	started := time.Now()

	uploadURL := ""
	if att != nil && o.uploader != nil {
		url, err := o.uploader.Upload(ctx, att)
		if err != nil {
			if completion.IsCancellation(err) {
				o.finishCancelled(p)
				return
			}
			// Upload failure downgrades silently to text-only. The
			// local transcript keeps its attachment either way.
			log.Printf("[orchestrator] upload failed, sending text only: %v", err)
		} else {
			uploadURL = url
		}
	}

	reply, err := o.client.Complete(ctx, buildWire(history, uploadURL))
	if err != nil {
		if completion.IsCancellation(err) {
			o.finishCancelled(p)
			return
		}
		log.Printf("[orchestrator] completion failed: %v", err)
		o.finishWith(p, model.NewErrorMessage(failureMessage))
		return
	}

	// Hold successful replies to the floor. Cancellation during the wait
	// still wins.
	if elapsed := time.Since(started); elapsed < o.minDelay {
		select {
		case <-ctx.Done():
			o.finishCancelled(p)
			return
		case <-time.After(o.minDelay - elapsed):
		}
	}

	o.finishWith(p, model.NewModelMessage(reply))
}

// finishWith appends msg to the pending request's session and clears the
// slot. The append is skipped if this request was already superseded or
// its session deleted; a stale reply must never land anywhere else.
func (o *Orchestrator) finishWith(p *pendingRequest, msg model.Message) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.pending != p {
		return
	}
	o.pending = nil

	session := o.findLocked(p.sessionID)
	if session == nil {
		o.emit(Event{Kind: EventRequestFinished, SessionID: p.sessionID})
		return
	}

	session.Append(msg)
	o.persistLocked()
	o.emit(Event{Kind: EventSessionsChanged, SessionID: session.ID})
	o.emit(Event{Kind: EventRequestFinished, SessionID: session.ID})
}

// finishCancelled clears the slot without touching any session.
func (o *Orchestrator) finishCancelled(p *pendingRequest) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.pending == p {
		o.pending = nil
	}
	o.emit(Event{Kind: EventRequestFinished, SessionID: p.sessionID})
}

// CancelPending aborts the in-flight request, if any.
func (o *Orchestrator) CancelPending() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pending != nil {
		o.pending.cancel()
	}
}

// Shutdown aborts any in-flight request and waits for the worker to
// drain.
func (o *Orchestrator) Shutdown() {
	o.mu.Lock()
	if o.pending != nil {
		o.pending.cancel()
	}
	o.mu.Unlock()
	o.wg.Wait()
}

// =============================================================================
// INTERNAL HELPERS
// =============================================================================

// findLocked returns the session with the given ID. Caller holds mu.
func (o *Orchestrator) findLocked(id string) *model.ChatSession {
	for _, s := range o.sessions {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// cancelPendingForLocked aborts the pending request if it targets the
// given session. Caller holds mu.
func (o *Orchestrator) cancelPendingForLocked(sessionID string) {
	if o.pending != nil && o.pending.sessionID == sessionID {
		o.pending.cancel()
	}
}

// persistLocked saves the session list. Write failures are logged and
// dropped; in-memory state stays authoritative. Caller holds mu.
func (o *Orchestrator) persistLocked() {
	if err := o.store.Save(o.sessions); err != nil {
		log.Printf("[orchestrator] session save failed: %v", err)
	}
}

// buildWire converts history into wire messages. When the upload
// produced a hosted URL the outgoing message references it instead of
// the local data URI; when the upload failed the attachment is dropped
// from the wire entirely.
func buildWire(history []model.Message, uploadURL string) []completion.ChatMessage {
	last := history[len(history)-1]
	if last.Attachment != nil {
		if uploadURL != "" {
			last.Attachment = &model.Attachment{
				Name:     last.Attachment.Name,
				MimeType: "image/jpeg",
				Data:     uploadURL,
			}
		} else {
			last.Attachment = nil
		}
		history = append(history[:len(history)-1:len(history)-1], last)
	}
	return completion.BuildMessages(history)
}

// rateLimitText renders the denial message with a rounded wait time.
func rateLimitText(remaining time.Duration) string {
	return "Daily message limit reached. You can send more in about " + formatRemaining(remaining) + "."
}

// formatRemaining renders a duration as "5h 12m" or "40m".
func formatRemaining(d time.Duration) string {
	if d < time.Minute {
		d = time.Minute
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h == 0 {
		return util.IntToString(m) + "m"
	}
	return util.IntToString(h) + "h " + util.IntToString(m) + "m"
}
