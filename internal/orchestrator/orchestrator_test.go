// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/scribe-tui/internal/completion"
	"github.com/jeranaias/scribe-tui/internal/model"
	"github.com/jeranaias/scribe-tui/internal/ratelimit"
	"github.com/jeranaias/scribe-tui/internal/storage"
)

// fakeClient is a scriptable CompletionClient.
type fakeClient struct {
	reply string
	err   error
	block bool // wait for ctx cancellation instead of answering

	calls    atomic.Int32
	lastWire []completion.ChatMessage
}

func (f *fakeClient) Complete(ctx context.Context, messages []completion.ChatMessage) (string, error) {
	f.calls.Add(1)
	f.lastWire = messages
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// fakeUploader is a scriptable Uploader.
type fakeUploader struct {
	url   string
	err   error
	calls atomic.Int32
}

func (f *fakeUploader) Upload(ctx context.Context, att *model.Attachment) (string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

// newTestOrchestrator wires an orchestrator over temp storage with a
// near-zero reply floor.
func newTestOrchestrator(t *testing.T, client CompletionClient, up Uploader) (*Orchestrator, storage.BlobStore) {
	t.Helper()
	blobs, err := storage.NewFileStoreWithDir(t.TempDir())
	require.NoError(t, err)

	o := New(storage.NewSessionStore(blobs), ratelimit.NewLimiter(blobs), client, up)
	o.minDelay = 5 * time.Millisecond
	t.Cleanup(o.Shutdown)
	return o, blobs
}

// waitIdle polls until no request is in flight.
func waitIdle(t *testing.T, o *Orchestrator) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if !o.InFlight() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("request never finished")
}

func TestBootstrapCreatesSession(t *testing.T) {
	o, _ := newTestOrchestrator(t, &fakeClient{}, nil)

	sessions := o.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, sessions[0].ID, o.ActiveID())
	assert.True(t, sessions[0].IsEmpty())
}

func TestSendMessageSuccess(t *testing.T) {
	client := &fakeClient{reply: "Hello back"}
	o, _ := newTestOrchestrator(t, client, nil)

	require.NoError(t, o.SendMessage("Hello", nil))
	waitIdle(t, o)

	active := o.Active()
	require.Equal(t, 2, active.MessageCount())
	assert.Equal(t, model.RoleUser, active.Messages[0].Role)
	assert.Equal(t, "Hello", active.Messages[0].Text)
	assert.Equal(t, model.RoleModel, active.Messages[1].Role)
	assert.Equal(t, "Hello back", active.Messages[1].Text)
	assert.False(t, active.Messages[1].IsError)
	assert.Equal(t, "Hello", active.Title)
	assert.Equal(t, 1, o.UsageCount())
}

func TestSendMessageEmptyRejected(t *testing.T) {
	o, _ := newTestOrchestrator(t, &fakeClient{}, nil)
	assert.ErrorIs(t, o.SendMessage("", nil), ErrEmptyMessage)
}

func TestSendMessageInFlightGuard(t *testing.T) {
	client := &fakeClient{block: true}
	o, _ := newTestOrchestrator(t, client, nil)

	require.NoError(t, o.SendMessage("first", nil))
	assert.ErrorIs(t, o.SendMessage("second", nil), ErrRequestInFlight)

	o.CancelPending()
	waitIdle(t, o)

	// Slot freed: sending works again.
	client.block = false
	client.reply = "ok"
	assert.NoError(t, o.SendMessage("third", nil))
	waitIdle(t, o)
}

func TestSendMessageRateLimited(t *testing.T) {
	client := &fakeClient{reply: "never"}
	blobs, err := storage.NewFileStoreWithDir(t.TempDir())
	require.NoError(t, err)

	// Fill the quota window before the orchestrator starts.
	now := time.Now().UnixMilli()
	entries := make([]int64, ratelimit.MaxMessages)
	for i := range entries {
		entries[i] = now - int64(i+1)*1000
	}
	raw, _ := json.Marshal(entries)
	require.NoError(t, blobs.Put(storage.KeyUsage, raw))

	o := New(storage.NewSessionStore(blobs), ratelimit.NewLimiter(blobs), client, nil)
	o.minDelay = time.Millisecond
	defer o.Shutdown()

	err = o.SendMessage("hello", nil)
	assert.ErrorIs(t, err, ErrRateLimited)

	active := o.Active()
	require.Equal(t, 1, active.MessageCount())
	assert.True(t, active.Messages[0].IsError)
	assert.Equal(t, model.RoleModel, active.Messages[0].Role)

	// Denial never touches the network.
	assert.Equal(t, int32(0), client.calls.Load())

	// The synthetic denial must not title the session; the first real
	// user message still owns that.
	assert.Equal(t, model.DefaultTitle, active.Title)
}

func TestSendMessageFailureAppendsError(t *testing.T) {
	client := &fakeClient{err: errors.New("boom")}
	o, _ := newTestOrchestrator(t, client, nil)

	require.NoError(t, o.SendMessage("hi", nil))
	waitIdle(t, o)

	active := o.Active()
	require.Equal(t, 2, active.MessageCount())
	assert.True(t, active.Messages[1].IsError)
	assert.NotContains(t, active.Messages[1].Text, "boom")
}

func TestCancelAppendsNothing(t *testing.T) {
	client := &fakeClient{block: true}
	o, _ := newTestOrchestrator(t, client, nil)

	require.NoError(t, o.SendMessage("hi", nil))
	o.CancelPending()
	waitIdle(t, o)

	active := o.Active()
	assert.Equal(t, 1, active.MessageCount(), "cancelled request must append nothing")

	// Quota was still consumed on attempt.
	assert.Equal(t, 1, o.UsageCount())
}

func TestSwitchCancelsDepartedSession(t *testing.T) {
	client := &fakeClient{block: true}
	o, _ := newTestOrchestrator(t, client, nil)

	first := o.ActiveID()
	require.NoError(t, o.SendMessage("hi", nil))

	second := o.NewSession()
	require.NotEqual(t, first, second)
	waitIdle(t, o)

	// The departed session keeps only its user message; the fresh one
	// stays empty.
	for _, s := range o.Sessions() {
		switch s.ID {
		case first:
			assert.Equal(t, 1, s.MessageCount())
		case second:
			assert.True(t, s.IsEmpty())
		}
	}
}

func TestDeleteSessionCancelsMatchingPending(t *testing.T) {
	client := &fakeClient{block: true}
	o, _ := newTestOrchestrator(t, client, nil)

	id := o.ActiveID()
	require.NoError(t, o.SendMessage("hi", nil))
	require.NoError(t, o.DeleteSession(id))
	waitIdle(t, o)

	// Deleting the only session spawned a fresh one.
	sessions := o.Sessions()
	require.Len(t, sessions, 1)
	assert.NotEqual(t, id, sessions[0].ID)
	assert.True(t, sessions[0].IsEmpty())
	assert.Equal(t, sessions[0].ID, o.ActiveID())
}

func TestNewSessionNoopWhenActiveEmpty(t *testing.T) {
	o, _ := newTestOrchestrator(t, &fakeClient{}, nil)

	id := o.ActiveID()
	assert.Equal(t, id, o.NewSession())
	assert.Len(t, o.Sessions(), 1)
}

func TestNewSessionAfterMessages(t *testing.T) {
	client := &fakeClient{reply: "ok"}
	o, _ := newTestOrchestrator(t, client, nil)

	first := o.ActiveID()
	require.NoError(t, o.SendMessage("hi", nil))
	waitIdle(t, o)

	second := o.NewSession()
	assert.NotEqual(t, first, second)
	assert.Equal(t, second, o.ActiveID())
	assert.Len(t, o.Sessions(), 2)
	// Newest first.
	assert.Equal(t, second, o.Sessions()[0].ID)
}

func TestSetActiveUnknown(t *testing.T) {
	o, _ := newTestOrchestrator(t, &fakeClient{}, nil)
	assert.ErrorIs(t, o.SetActive("sess_nope"), ErrSessionNotFound)
}

func TestUploadSuccessRewiresAttachment(t *testing.T) {
	client := &fakeClient{reply: "nice picture"}
	up := &fakeUploader{url: "https://cdn.example/x.jpg"}
	o, _ := newTestOrchestrator(t, client, up)

	att := &model.Attachment{Name: "x.png", MimeType: "image/png", Data: "data:image/png;base64,AAAA"}
	require.NoError(t, o.SendMessage("look", att))
	waitIdle(t, o)

	require.Equal(t, int32(1), up.calls.Load())
	require.NotEmpty(t, client.lastWire)
	last := client.lastWire[len(client.lastWire)-1]
	parts, ok := last.Content.([]completion.ContentPart)
	require.True(t, ok, "expected multimodal content, got %T", last.Content)
	require.Len(t, parts, 2)
	assert.Equal(t, "https://cdn.example/x.jpg", parts[1].ImageURL.URL)

	// The local transcript keeps the original data URI.
	active := o.Active()
	require.NotNil(t, active.Messages[0].Attachment)
	assert.Equal(t, "data:image/png;base64,AAAA", active.Messages[0].Attachment.Data)
}

func TestUploadFailureDowngradesToText(t *testing.T) {
	client := &fakeClient{reply: "answered anyway"}
	up := &fakeUploader{err: errors.New("relay down")}
	o, _ := newTestOrchestrator(t, client, up)

	att := &model.Attachment{Name: "x.png", Data: "data:image/png;base64,AAAA"}
	require.NoError(t, o.SendMessage("look", att))
	waitIdle(t, o)

	require.NotEmpty(t, client.lastWire)
	last := client.lastWire[len(client.lastWire)-1]
	assert.Equal(t, "look", last.Content, "failed upload sends plain text")

	active := o.Active()
	require.Equal(t, 2, active.MessageCount())
	assert.Equal(t, "answered anyway", active.Messages[1].Text)
}

func TestHistoryExcludesErrorsOnWire(t *testing.T) {
	client := &fakeClient{err: errors.New("boom")}
	o, _ := newTestOrchestrator(t, client, nil)

	require.NoError(t, o.SendMessage("first", nil))
	waitIdle(t, o)

	client.err = nil
	client.reply = "ok"
	require.NoError(t, o.SendMessage("second", nil))
	waitIdle(t, o)

	for _, m := range client.lastWire {
		assert.NotEqual(t, failureMessage, m.Content, "synthetic error leaked into history")
	}
}

func TestPersistenceAcrossRestart(t *testing.T) {
	client := &fakeClient{reply: "persisted"}
	o, blobs := newTestOrchestrator(t, client, nil)

	require.NoError(t, o.SendMessage("remember me", nil))
	waitIdle(t, o)
	o.Shutdown()

	// New orchestrator over the same store.
	o2 := New(storage.NewSessionStore(blobs), ratelimit.NewLimiter(blobs), client, nil)
	defer o2.Shutdown()

	sessions := o2.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, "remember me", sessions[0].Title)
	assert.Equal(t, 2, sessions[0].MessageCount())
}

func TestMinDelayFloor(t *testing.T) {
	client := &fakeClient{reply: "fast"}
	o, _ := newTestOrchestrator(t, client, nil)
	o.minDelay = 80 * time.Millisecond

	start := time.Now()
	require.NoError(t, o.SendMessage("hi", nil))
	waitIdle(t, o)

	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond,
		"successful reply must be held to the floor")
}

func TestFormatRemaining(t *testing.T) {
	assert.Equal(t, "1h 0m", formatRemaining(time.Hour))
	assert.Equal(t, "5h 30m", formatRemaining(5*time.Hour+30*time.Minute))
	assert.Equal(t, "40m", formatRemaining(40*time.Minute))
	assert.Equal(t, "1m", formatRemaining(10*time.Second))
}
