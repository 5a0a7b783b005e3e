// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/base64"
	"errors"
	"strings"
)

// ErrInvalidDataURI indicates an attachment payload that is not a
// well-formed base64 data URI.
var ErrInvalidDataURI = errors.New("invalid data URI")

// Attachment is an image carried by a message. Data holds the full
// data-URI string ("data:<mime>;base64,<payload>") so it round-trips
// through JSON persistence unchanged.
type Attachment struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

// NewAttachment constructs an attachment from raw bytes, encoding the
// payload as a base64 data URI.
func NewAttachment(name, mimeType string, payload []byte) *Attachment {
	return &Attachment{
		Name:     name,
		MimeType: mimeType,
		Data:     "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(payload),
	}
}

// DecodePayload extracts the raw bytes from the data URI.
func (a *Attachment) DecodePayload() ([]byte, error) {
	// Format: data:<mime>;base64,<payload>
	idx := strings.Index(a.Data, ",")
	if idx < 0 || !strings.HasPrefix(a.Data, "data:") {
		return nil, ErrInvalidDataURI
	}
	meta := a.Data[:idx]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, ErrInvalidDataURI
	}
	payload, err := base64.StdEncoding.DecodeString(a.Data[idx+1:])
	if err != nil {
		return nil, ErrInvalidDataURI
	}
	return payload, nil
}
