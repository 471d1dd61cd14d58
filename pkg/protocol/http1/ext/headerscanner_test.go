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
	"testing"

	errs "github.com/netfork/h1session/pkg/common/errors"
	"github.com/netfork/h1session/pkg/common/test/assert"
)

func TestHeaderScanner(t *testing.T) {
	var s HeaderScanner
	s.B = []byte("content-type: text/plain \r\nServer: netfork\r\n\r\nrest")

	assert.True(t, s.Next())
	assert.DeepEqual(t, "Content-Type", string(s.Key))
	assert.DeepEqual(t, "text/plain", string(s.Value))

	assert.True(t, s.Next())
	assert.DeepEqual(t, "Server", string(s.Key))
	assert.DeepEqual(t, "netfork", string(s.Value))

	assert.False(t, s.Next())
	assert.Nil(t, s.Err)
	assert.DeepEqual(t, "rest", string(s.B))
}

func TestHeaderScannerFoldedValue(t *testing.T) {
	var s HeaderScanner
	s.B = []byte("Content-Type: text/html;\r\n\tcharset=utf-8\r\n\r\n")

	assert.True(t, s.Next())
	assert.DeepEqual(t, "Content-Type", string(s.Key))
	assert.DeepEqual(t, "text/html; charset=utf-8", string(s.Value))

	assert.False(t, s.Next())
	assert.Nil(t, s.Err)
}

func TestHeaderScannerInvalidName(t *testing.T) {
	var s HeaderScanner
	s.B = []byte("no colon on this line\r\nServer: x\r\n\r\n")

	assert.False(t, s.Next())
	assert.NotNil(t, s.Err)
	assert.True(t, errs.IsType(s.Err, errs.ErrorTypeProtocol))
}

func TestHeaderScannerNeedMore(t *testing.T) {
	var s HeaderScanner
	s.B = []byte("Server: netfork\r\nTruncated-Key")

	assert.True(t, s.Next())
	assert.False(t, s.Next())
	assert.DeepEqual(t, errNeedMore, s.Err)
}
