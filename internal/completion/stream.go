// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package completion

import (
	"bytes"
	"strings"
)

// STREAMING: Robust SSE parsing with error handling

// dataPrefix marks an SSE data line.
var dataPrefix = []byte("data:")

// doneSentinel terminates an SSE stream.
const doneSentinel = "[DONE]"

// =============================================================================
// STREAM READER
// =============================================================================

// StreamReader incrementally parses an SSE completion stream. Bytes are
// fed in whatever sized pieces the network delivers; lines are processed
// only once their newline arrives, so a fragment split across reads is
// reassembled before parsing. Call Flush once the stream ends to process
// any trailing content without a final newline.
type StreamReader struct {
	buf     bytes.Buffer
	text    strings.Builder
	sawData bool
}

// NewStreamReader creates an empty stream reader.
func NewStreamReader() *StreamReader {
	return &StreamReader{}
}

// Feed consumes the next piece of the response body.
func (r *StreamReader) Feed(p []byte) {
	r.buf.Write(p)
	for {
		raw := r.buf.Bytes()
		idx := bytes.IndexByte(raw, '\n')
		if idx < 0 {
			return
		}
		line := make([]byte, idx)
		copy(line, raw[:idx])
		r.buf.Next(idx + 1)
		r.processLine(line)
	}
}

// Flush processes any buffered trailing content. Streams that end
// without a final newline still contribute their last fragment.
func (r *StreamReader) Flush() {
	if r.buf.Len() == 0 {
		return
	}
	line := r.buf.Bytes()
	r.buf.Reset()
	r.processLine(line)
}

// Text returns the aggregated reply text in arrival order.
func (r *StreamReader) Text() string {
	return r.text.String()
}

// SawData reports whether any "data:" line was seen. A 2xx body with no
// data lines is not SSE and should be parsed as a single JSON object
// instead.
func (r *StreamReader) SawData() bool {
	return r.sawData
}

// processLine handles one complete line of the stream.
func (r *StreamReader) processLine(line []byte) {
	line = bytes.TrimRight(line, "\r")
	if !bytes.HasPrefix(line, dataPrefix) {
		// Ignore other SSE fields (event:, id:, retry:, comments).
		return
	}
	r.sawData = true

	payload := strings.TrimSpace(string(line[len(dataPrefix):]))
	if payload == "" || payload == doneSentinel {
		return
	}

	// Skip malformed fragments; a bad line never kills the stream.
	if text, ok := extractText([]byte(payload)); ok {
		r.text.WriteString(text)
	}
}
