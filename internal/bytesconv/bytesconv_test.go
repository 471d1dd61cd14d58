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

package bytesconv

import (
	"testing"

	"github.com/netfork/h1session/pkg/common/test/assert"
	"github.com/netfork/h1session/pkg/common/test/mock"
)

func TestB2sS2b(t *testing.T) {
	assert.DeepEqual(t, "hello", B2s([]byte("hello")))
	assert.DeepEqual(t, []byte("hello"), S2b("hello"))
}

func TestParseUintBuf(t *testing.T) {
	v, n, err := ParseUintBuf([]byte("123 OK"))
	assert.Nil(t, err)
	assert.DeepEqual(t, 123, v)
	assert.DeepEqual(t, 3, n)

	_, _, err = ParseUintBuf([]byte(""))
	assert.NotNil(t, err)

	_, _, err = ParseUintBuf([]byte("x12"))
	assert.NotNil(t, err)
}

func TestParseUint(t *testing.T) {
	v, err := ParseUint([]byte("1234"))
	assert.Nil(t, err)
	assert.DeepEqual(t, 1234, v)

	_, err = ParseUint([]byte("123 OK"))
	assert.NotNil(t, err)
}

func TestAppendUint(t *testing.T) {
	assert.DeepEqual(t, "0", string(AppendUint(nil, 0)))
	assert.DeepEqual(t, "port:8080", string(AppendUint([]byte("port:"), 8080)))
}

func TestHexIntRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 0xa, 0xff, 0x10000, 0x7fffffff} {
		conn := mock.NewConn("")
		assert.Nil(t, WriteHexInt(conn, n))
		assert.Nil(t, conn.Flush())

		parsed, err := ReadHexInt(mock.NewConn(string(conn.Out()) + "\r\n"))
		assert.Nil(t, err)
		assert.DeepEqual(t, n, parsed)
	}
}
