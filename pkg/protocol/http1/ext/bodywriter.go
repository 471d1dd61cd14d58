/*
 * Copyright 2023 Netfork Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package ext

import (
	"github.com/netfork/h1session/internal/bytesconv"
	"github.com/netfork/h1session/internal/bytestr"
	errs "github.com/netfork/h1session/pkg/common/errors"
	"github.com/netfork/h1session/pkg/network"
)

// Body size discriminators. A non-negative size means a fixed-length body.
const (
	BodySizeChunked    = -1
	BodySizeUntilClose = -2
)

// BodyWriter frames an outgoing message body onto a network.Writer. The
// framing mode is fixed at construction: exactly size bytes, chunked, or
// until-close pass-through.
//
// A fixed-length writer rejects writes past the declared size. It does not
// require the full size to be written: the peer detects short messages, the
// writer does not.
type BodyWriter struct {
	w    network.Writer
	size int

	written   int
	finalized bool
}

// NewBodyWriter creates a body writer for the given framing discriminator.
func NewBodyWriter(w network.Writer, size int) *BodyWriter {
	return &BodyWriter{
		w:    w,
		size: size,
	}
}

// IsChunked reports whether the writer frames output as chunks.
func (bw *BodyWriter) IsChunked() bool {
	return bw.size == BodySizeChunked
}

// Written returns the number of payload bytes accepted so far.
func (bw *BodyWriter) Written() int {
	return bw.written
}

func (bw *BodyWriter) Write(p []byte) (int, error) {
	if bw.finalized {
		return 0, errs.ErrConnectionClosed
	}
	if len(p) == 0 {
		return 0, nil
	}
	switch {
	case bw.size == BodySizeChunked:
		if err := writeChunk(bw.w, p); err != nil {
			return 0, err
		}
	case bw.size == BodySizeUntilClose:
		if _, err := bw.w.WriteBinary(p); err != nil {
			return 0, err
		}
	default:
		if bw.written+len(p) > bw.size {
			return 0, errs.New(errs.ErrBodyTooLarge, errs.ErrorTypeProtocol, bw.size)
		}
		if _, err := bw.w.WriteBinary(p); err != nil {
			return 0, err
		}
	}
	bw.written += len(p)
	return len(p), nil
}

// Flush pushes buffered bytes to the transport without terminating the
// message. Used before peeking for interim responses.
func (bw *BodyWriter) Flush() error {
	return bw.w.Flush()
}

// Finalize terminates the message framing and flushes. For a chunked body it
// writes the zero chunk and the empty trailer section. Finalize is
// idempotent.
func (bw *BodyWriter) Finalize() error {
	if bw.finalized {
		return nil
	}
	bw.finalized = true
	if bw.size == BodySizeChunked {
		if _, err := bw.w.WriteBinary(bytestr.StrChunkedEnd); err != nil {
			return err
		}
	}
	return bw.w.Flush()
}

// writeChunk emits a single size-prefixed chunk. Zero-length input must not
// reach here, the zero chunk terminates the stream.
func writeChunk(w network.Writer, b []byte) error {
	if err := bytesconv.WriteHexInt(w, len(b)); err != nil {
		return err
	}
	if _, err := w.WriteBinary(bytestr.StrCRLF); err != nil {
		return err
	}
	if _, err := w.WriteBinary(b); err != nil {
		return err
	}
	_, err := w.WriteBinary(bytestr.StrCRLF)
	return err
}
