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
 *
 * The MIT License (MIT)
 *
 * Copyright (c) 2015-present Aliaksandr Valialkin, VertaMedia, Kirill Danshin, Erik Dubbelboer, FastHTTP Authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
 * THE SOFTWARE.
 *
 * This file may have been modified by Netfork authors. All Netfork
 * Modifications are Copyright 2023 Netfork Authors.
 */

package ext

import (
	"bytes"

	errs "github.com/netfork/h1session/pkg/common/errors"
	"github.com/netfork/h1session/pkg/common/utils"
)

var errInvalidName = errs.NewProtocolf("invalid header name")

// HeaderScanner iterates over the key/value entries of a response header
// block. Next returns false at the terminating empty line, or when the
// buffer ends mid-entry (s.Err is errNeedMore then) or an entry is
// malformed. Keys are normalized in place, and folded continuation lines
// are merged into the value.
type HeaderScanner struct {
	B     []byte
	Key   []byte
	Value []byte
	Err   error
}

func (s *HeaderScanner) Next() bool {
	if len(s.B) >= 2 && s.B[0] == '\r' && s.B[1] == '\n' {
		s.B = s.B[2:]
		return false
	}
	if len(s.B) >= 1 && s.B[0] == '\n' {
		s.B = s.B[1:]
		return false
	}

	colon := bytes.IndexByte(s.B, ':')
	newline := bytes.IndexByte(s.B, '\n')
	if newline < 0 {
		// A header name is always followed by a \n at some point, even if
		// it is the one terminating the block.
		s.Err = errNeedMore
		return false
	}
	if colon < 0 || newline < colon {
		s.Err = errInvalidName
		return false
	}
	s.Key = s.B[:colon]
	utils.NormalizeHeaderKey(s.Key, false)

	n := colon + 1
	for n < len(s.B) && s.B[n] == ' ' {
		n++
	}
	s.B = s.B[n:]

	end := bytes.IndexByte(s.B, '\n')
	if end < 0 {
		s.Err = errNeedMore
		return false
	}
	// A line starting with SP or HT continues the current value (obs-fold).
	folded := false
	for end+1 < len(s.B) && (s.B[end+1] == ' ' || s.B[end+1] == '\t') {
		d := bytes.IndexByte(s.B[end+1:], '\n')
		if d < 0 {
			s.Err = errNeedMore
			return false
		}
		folded = true
		end += d + 1
	}

	v := s.B[:end]
	s.B = s.B[end+1:]
	if folded {
		v = foldValue(v)
	}
	for len(v) > 0 && (v[len(v)-1] == '\r' || v[len(v)-1] == ' ') {
		v = v[:len(v)-1]
	}
	s.Value = v
	return true
}

// foldValue rewrites a multi line header value in place, dropping the line
// breaks and turning a leading tab on a continuation line into a space.
func foldValue(v []byte) []byte {
	w := 0
	lineStart := false
	for _, c := range v {
		switch {
		case c == '\r' || c == '\n':
			if c == '\n' {
				lineStart = true
			}
			continue
		case lineStart && c == '\t':
			c = ' '
			lineStart = false
		default:
			lineStart = false
		}
		v[w] = c
		w++
	}
	return v[:w]
}
