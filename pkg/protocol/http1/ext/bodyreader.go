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
	"io"

	"github.com/netfork/h1session/pkg/common/utils"
	"github.com/netfork/h1session/pkg/network"
)

// BodyReader streams an incoming message body from a network.Reader. The
// framing mode is fixed at construction: exactly size bytes then EOF,
// chunked, or until the transport signals end of stream.
type BodyReader struct {
	r    network.Reader
	size int

	remaining int // fixed-length: payload bytes left
	chunkLeft int // chunked: bytes left in the current chunk
	eof       bool
}

// NewBodyReader creates a body reader for the given framing discriminator.
func NewBodyReader(r network.Reader, size int) *BodyReader {
	br := &BodyReader{
		r:    r,
		size: size,
	}
	if size >= 0 {
		br.remaining = size
		br.eof = size == 0
	}
	return br
}

// IsChunked reports whether the reader de-chunks input.
func (br *BodyReader) IsChunked() bool {
	return br.size == BodySizeChunked
}

func (br *BodyReader) Read(p []byte) (int, error) {
	if br.eof {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	switch {
	case br.size == BodySizeChunked:
		return br.readChunked(p)
	case br.size == BodySizeUntilClose:
		return br.readUntilClose(p)
	default:
		return br.readFixed(p)
	}
}

func (br *BodyReader) readFixed(p []byte) (int, error) {
	n, err := br.copyBuffered(p, br.remaining)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return n, err
	}
	br.remaining -= n
	if br.remaining == 0 {
		br.eof = true
	}
	return n, nil
}

func (br *BodyReader) readChunked(p []byte) (int, error) {
	if br.chunkLeft == 0 {
		chunkSize, err := utils.ParseChunkSize(br.r)
		if err != nil {
			return 0, err
		}
		if chunkSize == 0 {
			if err := SkipTrailer(br.r); err != nil {
				return 0, err
			}
			br.eof = true
			return 0, io.EOF
		}
		br.chunkLeft = chunkSize
	}
	n, err := br.copyBuffered(p, br.chunkLeft)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return n, err
	}
	br.chunkLeft -= n
	if br.chunkLeft == 0 {
		if err := utils.SkipCRLF(br.r); err != nil {
			return n, err
		}
		br.r.Release() // nolint: errcheck
	}
	return n, nil
}

func (br *BodyReader) readUntilClose(p []byte) (int, error) {
	n, err := br.copyBuffered(p, len(p))
	if err != nil {
		br.eof = true
		if err == io.EOF {
			return n, io.EOF
		}
		return n, err
	}
	return n, nil
}

// copyBuffered copies up to min(len(p), limit) bytes into p, blocking only
// for the first byte.
func (br *BodyReader) copyBuffered(p []byte, limit int) (int, error) {
	if br.r.Len() == 0 {
		if _, err := br.r.Peek(1); err != nil {
			return 0, err
		}
	}
	nn := br.r.Len()
	if nn > limit {
		nn = limit
	}
	if nn > len(p) {
		nn = len(p)
	}
	buf, err := br.r.Peek(nn)
	if err != nil {
		return 0, err
	}
	copy(p, buf)
	br.r.Skip(nn)  // nolint: errcheck
	br.r.Release() // nolint: errcheck
	return nn, nil
}
