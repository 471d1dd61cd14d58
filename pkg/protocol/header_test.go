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

package protocol

import (
	"testing"

	"github.com/netfork/h1session/pkg/common/test/assert"
	"github.com/netfork/h1session/pkg/protocol/consts"
)

func TestRequestHeaderSerialization(t *testing.T) {
	var h RequestHeader
	h.Reset()
	h.SetMethod(consts.MethodPut)
	h.SetRequestURI("/upload")
	h.SetHost("example.com", 8080)
	h.SetContentLength(5)
	h.Set("User-Agent", "unit")
	h.SetConnectionClose(true)

	expected := "PUT /upload HTTP/1.1\r\n" +
		"Host: example.com:8080\r\n" +
		"Content-Length: 5\r\n" +
		"User-Agent: unit\r\n" +
		"Connection: close\r\n" +
		"\r\n"
	assert.DeepEqual(t, expected, string(h.Header()))
}

func TestRequestHeaderDefaults(t *testing.T) {
	var h RequestHeader
	h.Reset()
	assert.DeepEqual(t, consts.MethodGet, h.Method())
	assert.DeepEqual(t, "/", string(h.RequestURI()))
	assert.DeepEqual(t, consts.HTTP11, h.Protocol())
	assert.DeepEqual(t, consts.ContentLengthUnset, h.ContentLength())
	assert.DeepEqual(t, "GET / HTTP/1.1\r\n\r\n", string(h.Header()))
}

func TestRequestHeaderHostOmitsDefaultPort(t *testing.T) {
	var h RequestHeader
	h.Reset()
	h.SetHost("example.com", consts.DefaultHTTPPort)
	assert.DeepEqual(t, "example.com", string(h.Host()))
}

func TestRequestHeaderSpecialHeaders(t *testing.T) {
	var h RequestHeader
	h.Reset()

	// lowercase keys are normalized and routed to the typed fields
	h.Set("content-length", "7")
	assert.DeepEqual(t, 7, h.ContentLength())
	assert.DeepEqual(t, "7", string(h.Peek(consts.HeaderContentLength)))

	h.Set("transfer-encoding", "chunked")
	assert.True(t, h.Chunked())
	assert.DeepEqual(t, "chunked", string(h.Peek(consts.HeaderTransferEncoding)))

	h.Set("connection", "close")
	assert.True(t, h.ConnectionClose())

	h.Set("host", "example.com")
	assert.DeepEqual(t, "example.com", string(h.Host()))
	assert.True(t, h.Has(consts.HeaderHost))

	h.Del(consts.HeaderContentLength)
	assert.DeepEqual(t, consts.ContentLengthUnset, h.ContentLength())
	assert.False(t, h.Has(consts.HeaderContentLength))
}

func TestRequestHeaderCopyTo(t *testing.T) {
	var h RequestHeader
	h.Reset()
	h.SetMethod(consts.MethodPost)
	h.SetRequestURI("/a")
	h.SetContentLength(3)
	h.Set("X-Trace", "id-1")

	var dst RequestHeader
	h.CopyTo(&dst)
	assert.DeepEqual(t, string(h.Header()), string(dst.Header()))
}

func TestResponseHeaderKeepAlive(t *testing.T) {
	var h ResponseHeader
	h.Reset()
	assert.True(t, h.KeepAlive())

	h.Reset()
	h.Set(consts.HeaderConnection, "close")
	assert.False(t, h.KeepAlive())

	h.Reset()
	h.SetProtocol(consts.HTTP10)
	assert.False(t, h.KeepAlive())

	h.Reset()
	h.SetProtocol(consts.HTTP10)
	h.Set(consts.HeaderConnection, "keep-alive")
	assert.True(t, h.KeepAlive())

	h.Reset()
	h.SetProtocol(consts.HTTP10)
	h.Set(consts.HeaderConnection, "Keep-Alive, Upgrade")
	assert.True(t, h.KeepAlive())
}

func TestResponseHeaderFullStatusLine(t *testing.T) {
	var h ResponseHeader
	h.Reset()
	h.SetStatusCode(502)
	h.SetReasonBytes([]byte("Bad Gateway"))
	assert.DeepEqual(t, "HTTP/1.1 502 Bad Gateway", h.FullStatusLine())
}

func TestResponseHeaderReasonFallback(t *testing.T) {
	var h ResponseHeader
	h.Reset()
	h.SetStatusCode(consts.StatusBadGateway)
	assert.DeepEqual(t, "Bad Gateway", string(h.Reason()))

	h.SetReasonBytes([]byte("Custom"))
	assert.DeepEqual(t, "Custom", string(h.Reason()))
}

func TestRequestHeaderHasEmptyValue(t *testing.T) {
	var h RequestHeader
	h.Reset()
	h.Set(consts.HeaderUpgrade, "")

	assert.True(t, h.Has(consts.HeaderUpgrade))
	assert.False(t, h.Has(consts.HeaderExpect))
}

func TestParseContentLength(t *testing.T) {
	v, err := ParseContentLength([]byte("1234"))
	assert.Nil(t, err)
	assert.DeepEqual(t, 1234, v)

	_, err = ParseContentLength([]byte("12x"))
	assert.NotNil(t, err)
}
