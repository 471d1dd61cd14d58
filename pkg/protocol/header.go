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
	"bytes"
	"errors"
	"strconv"

	"github.com/netfork/h1session/internal/bytesconv"
	"github.com/netfork/h1session/internal/bytestr"
	"github.com/netfork/h1session/internal/nocopy"
	"github.com/netfork/h1session/pkg/common/utils"
	"github.com/netfork/h1session/pkg/protocol/consts"
)

var errInvalidContentLength = errors.New("invalid Content-Length value")

// RequestHeader represents an HTTP request header.
//
// It is forbidden copying RequestHeader instances.
type RequestHeader struct {
	noCopy nocopy.NoCopy //lint:ignore U1000 until noCopy is used

	method     []byte
	requestURI []byte
	protocol   string
	host       []byte

	contentLength      int
	contentLengthBytes []byte
	chunked            bool
	connectionClose    bool

	h     []argsKV
	bufKV argsKV

	bufHeader []byte
}

// ResponseHeader represents an HTTP response header.
//
// It is forbidden copying ResponseHeader instances.
type ResponseHeader struct {
	noCopy nocopy.NoCopy //lint:ignore U1000 until noCopy is used

	protocol   string
	statusCode int
	reason     []byte

	contentLength      int
	contentLengthBytes []byte
	chunked            bool
	connectionClose    bool
	keepAliveExplicit  bool

	h     []argsKV
	bufKV argsKV
}

// ParseContentLength parses a decimal Content-Length value.
func ParseContentLength(b []byte) (int, error) {
	v, err := bytesconv.ParseUint(b)
	if err != nil {
		return -1, errInvalidContentLength
	}
	return v, nil
}

func (h *RequestHeader) Reset() {
	h.method = h.method[:0]
	h.requestURI = h.requestURI[:0]
	h.protocol = ""
	h.host = h.host[:0]
	h.contentLength = consts.ContentLengthUnset
	h.contentLengthBytes = h.contentLengthBytes[:0]
	h.chunked = false
	h.connectionClose = false
	h.h = h.h[:0]
}

// Method returns the HTTP request method. GET is the default.
func (h *RequestHeader) Method() string {
	if len(h.method) == 0 {
		return consts.MethodGet
	}
	return string(h.method)
}

// SetMethod sets HTTP request method.
func (h *RequestHeader) SetMethod(method string) {
	h.method = append(h.method[:0], method...)
}

// RequestURI returns the request target from the first HTTP request line.
func (h *RequestHeader) RequestURI() []byte {
	if len(h.requestURI) == 0 {
		return bytestr.StrSlash
	}
	return h.requestURI
}

// SetRequestURI sets RequestURI for the first HTTP request line.
// RequestURI must be properly encoded.
func (h *RequestHeader) SetRequestURI(requestURI string) {
	h.requestURI = append(h.requestURI[:0], requestURI...)
}

func (h *RequestHeader) SetRequestURIBytes(requestURI []byte) {
	h.requestURI = append(h.requestURI[:0], requestURI...)
}

// Protocol returns the protocol of the first HTTP request line. HTTP/1.1 is
// the default.
func (h *RequestHeader) Protocol() string {
	if len(h.protocol) == 0 {
		return consts.HTTP11
	}
	return h.protocol
}

func (h *RequestHeader) SetProtocol(p string) {
	h.protocol = p
}

// Host returns the Host header value.
func (h *RequestHeader) Host() []byte {
	return h.host
}

func (h *RequestHeader) SetHostBytes(host []byte) {
	h.host = append(h.host[:0], host...)
}

// SetHost sets the Host header from a host and port pair. Port 80 is not
// serialized.
func (h *RequestHeader) SetHost(host string, port int) {
	h.host = append(h.host[:0], host...)
	if port != consts.DefaultHTTPPort {
		h.host = append(h.host, ':')
		h.host = bytesconv.AppendUint(h.host, port)
	}
}

// ContentLength returns the declared Content-Length.
// consts.ContentLengthUnset means the header is absent.
func (h *RequestHeader) ContentLength() int {
	return h.contentLength
}

func (h *RequestHeader) SetContentLength(contentLength int) {
	if contentLength < 0 {
		h.contentLength = consts.ContentLengthUnset
		h.contentLengthBytes = h.contentLengthBytes[:0]
		return
	}
	h.contentLength = contentLength
	h.contentLengthBytes = bytesconv.AppendUint(h.contentLengthBytes[:0], contentLength)
}

// Chunked reports whether the request asks for chunked transfer encoding.
func (h *RequestHeader) Chunked() bool {
	return h.chunked
}

func (h *RequestHeader) SetChunked(chunked bool) {
	h.chunked = chunked
}

// KeepAlive reports whether the request leaves the connection open.
func (h *RequestHeader) KeepAlive() bool {
	return !h.connectionClose
}

// SetKeepAlive serializes 'Connection: close' when disabled.
func (h *RequestHeader) SetKeepAlive(keepAlive bool) {
	h.connectionClose = !keepAlive
}

func (h *RequestHeader) ConnectionClose() bool {
	return h.connectionClose
}

func (h *RequestHeader) SetConnectionClose(close bool) {
	h.connectionClose = close
}

// Set sets the given 'key: value' header.
func (h *RequestHeader) Set(key, value string) {
	initHeaderKV(&h.bufKV, key, value)
	h.SetCanonical(h.bufKV.key, h.bufKV.value)
}

// SetCanonical sets the given 'key: value' header assuming that
// key is in canonical form.
func (h *RequestHeader) SetCanonical(key, value []byte) {
	if h.setSpecialHeader(key, value) {
		return
	}
	h.h = setArgBytes(h.h, key, value)
}

// setSpecialHeader handles special headers and return true when a header is processed.
func (h *RequestHeader) setSpecialHeader(key, value []byte) bool {
	if len(key) == 0 {
		return false
	}

	switch key[0] | 0x20 {
	case 'c':
		if utils.CaseInsensitiveCompare(bytestr.StrContentLength, key) {
			if contentLength, err := ParseContentLength(value); err == nil {
				h.contentLength = contentLength
				h.contentLengthBytes = append(h.contentLengthBytes[:0], value...)
			}
			return true
		} else if utils.CaseInsensitiveCompare(bytestr.StrConnection, key) {
			if bytes.Equal(bytestr.StrClose, value) {
				h.SetConnectionClose(true)
			} else {
				h.SetConnectionClose(false)
				h.h = setArgBytes(h.h, key, value)
			}
			return true
		}
	case 't':
		if utils.CaseInsensitiveCompare(bytestr.StrTransferEncoding, key) {
			h.chunked = utils.CaseInsensitiveCompare(bytestr.StrChunked, value)
			return true
		}
	case 'h':
		if utils.CaseInsensitiveCompare(bytestr.StrHost, key) {
			h.SetHostBytes(value)
			return true
		}
	}

	return false
}

// Peek returns the header value for the given key.
func (h *RequestHeader) Peek(key string) []byte {
	k := getHeaderKeyBytes(&h.bufKV, key)
	switch string(k) {
	case consts.HeaderContentLength:
		if h.contentLength < 0 {
			return nil
		}
		return h.contentLengthBytes
	case consts.HeaderTransferEncoding:
		if h.chunked {
			return bytestr.StrChunked
		}
		return nil
	case consts.HeaderConnection:
		if h.connectionClose {
			return bytestr.StrClose
		}
		return peekArgBytes(h.h, k)
	case consts.HeaderHost:
		if len(h.host) > 0 {
			return h.host
		}
		return nil
	}
	return peekArgBytes(h.h, k)
}

// Has reports whether the given header is present, even with an empty value.
func (h *RequestHeader) Has(key string) bool {
	if h.Peek(key) != nil {
		return true
	}
	return hasArgBytes(h.h, getHeaderKeyBytes(&h.bufKV, key))
}

// Del deletes the header with the given key.
func (h *RequestHeader) Del(key string) {
	k := getHeaderKeyBytes(&h.bufKV, key)
	switch string(k) {
	case consts.HeaderContentLength:
		h.contentLength = consts.ContentLengthUnset
		h.contentLengthBytes = h.contentLengthBytes[:0]
		return
	case consts.HeaderTransferEncoding:
		h.chunked = false
		return
	case consts.HeaderConnection:
		h.connectionClose = false
	case consts.HeaderHost:
		h.host = h.host[:0]
		return
	}
	h.h = delAllArgsBytes(h.h, k)
}

// Header returns the serialized header block: request line, headers and the
// terminating CRLF. The returned value stays valid until the next mutation.
func (h *RequestHeader) Header() []byte {
	h.bufHeader = h.AppendBytes(h.bufHeader[:0])
	return h.bufHeader
}

// AppendBytes appends the serialized header block to dst.
func (h *RequestHeader) AppendBytes(dst []byte) []byte {
	dst = append(dst, h.Method()...)
	dst = append(dst, ' ')
	dst = append(dst, h.RequestURI()...)
	dst = append(dst, ' ')
	dst = append(dst, h.Protocol()...)
	dst = append(dst, bytestr.StrCRLF...)

	if len(h.host) > 0 {
		dst = appendHeaderLine(dst, bytestr.StrHost, h.host)
	}
	if h.contentLength >= 0 {
		dst = appendHeaderLine(dst, bytestr.StrContentLength, h.contentLengthBytes)
	}
	if h.chunked {
		dst = appendHeaderLine(dst, bytestr.StrTransferEncoding, bytestr.StrChunked)
	}
	for i, n := 0, len(h.h); i < n; i++ {
		kv := &h.h[i]
		dst = appendHeaderLine(dst, kv.key, kv.value)
	}
	if h.connectionClose {
		dst = appendHeaderLine(dst, bytestr.StrConnection, bytestr.StrClose)
	}
	return append(dst, bytestr.StrCRLF...)
}

// CopyTo copies all the header state to dst.
func (h *RequestHeader) CopyTo(dst *RequestHeader) {
	dst.Reset()
	dst.method = append(dst.method[:0], h.method...)
	dst.requestURI = append(dst.requestURI[:0], h.requestURI...)
	dst.protocol = h.protocol
	dst.host = append(dst.host[:0], h.host...)
	dst.contentLength = h.contentLength
	dst.contentLengthBytes = append(dst.contentLengthBytes[:0], h.contentLengthBytes...)
	dst.chunked = h.chunked
	dst.connectionClose = h.connectionClose
	dst.h = copyArgs(dst.h, h.h)
}

func (h *ResponseHeader) Reset() {
	h.protocol = ""
	h.statusCode = 0
	h.reason = h.reason[:0]
	h.contentLength = consts.ContentLengthUnset
	h.contentLengthBytes = h.contentLengthBytes[:0]
	h.chunked = false
	h.connectionClose = false
	h.keepAliveExplicit = false
	h.h = h.h[:0]
}

// StatusCode returns the response status code. 200 is the default.
func (h *ResponseHeader) StatusCode() int {
	if h.statusCode == 0 {
		return consts.StatusOK
	}
	return h.statusCode
}

func (h *ResponseHeader) SetStatusCode(statusCode int) {
	h.statusCode = statusCode
}

// Reason returns the reason phrase from the status line, falling back to
// the default phrase for the status code when the peer sent none.
func (h *ResponseHeader) Reason() []byte {
	if len(h.reason) == 0 {
		return bytesconv.S2b(consts.StatusMessage(h.statusCode))
	}
	return h.reason
}

func (h *ResponseHeader) SetReasonBytes(reason []byte) {
	h.reason = append(h.reason[:0], reason...)
}

func (h *ResponseHeader) Protocol() string {
	if len(h.protocol) == 0 {
		return consts.HTTP11
	}
	return h.protocol
}

func (h *ResponseHeader) SetProtocol(p string) {
	h.protocol = p
}

// IsHTTP11 reports whether the response is HTTP/1.1.
func (h *ResponseHeader) IsHTTP11() bool {
	return h.Protocol() == consts.HTTP11
}

func (h *ResponseHeader) ContentLength() int {
	return h.contentLength
}

func (h *ResponseHeader) SetContentLength(contentLength int) {
	if contentLength < 0 {
		h.contentLength = consts.ContentLengthUnset
		h.contentLengthBytes = h.contentLengthBytes[:0]
		return
	}
	h.contentLength = contentLength
	h.contentLengthBytes = bytesconv.AppendUint(h.contentLengthBytes[:0], contentLength)
}

// Chunked reports whether the response body uses chunked transfer encoding.
func (h *ResponseHeader) Chunked() bool {
	return h.chunked
}

func (h *ResponseHeader) SetChunked(chunked bool) {
	h.chunked = chunked
}

// KeepAlive reports whether the peer will keep the connection open after this
// response. 'Connection: close' always means no; an explicit keep-alive token
// always means yes; otherwise HTTP/1.1 implies yes and older protocols no.
func (h *ResponseHeader) KeepAlive() bool {
	if h.connectionClose {
		return false
	}
	if h.keepAliveExplicit {
		return true
	}
	return h.IsHTTP11()
}

func (h *ResponseHeader) ConnectionClose() bool {
	return h.connectionClose
}

func (h *ResponseHeader) SetConnectionClose(close bool) {
	h.connectionClose = close
}

// Set sets the given 'key: value' header.
func (h *ResponseHeader) Set(key, value string) {
	initHeaderKV(&h.bufKV, key, value)
	h.SetCanonical(h.bufKV.key, h.bufKV.value)
}

// SetCanonical sets the given 'key: value' header assuming that
// key is in canonical form.
func (h *ResponseHeader) SetCanonical(key, value []byte) {
	if h.setSpecialHeader(key, value) {
		return
	}
	h.h = setArgBytes(h.h, key, value)
}

// setSpecialHeader handles special headers and return true when a header is processed.
func (h *ResponseHeader) setSpecialHeader(key, value []byte) bool {
	if len(key) == 0 {
		return false
	}

	switch key[0] | 0x20 {
	case 'c':
		if utils.CaseInsensitiveCompare(bytestr.StrContentLength, key) {
			if contentLength, err := ParseContentLength(value); err == nil {
				h.contentLength = contentLength
				h.contentLengthBytes = append(h.contentLengthBytes[:0], value...)
			}
			return true
		} else if utils.CaseInsensitiveCompare(bytestr.StrConnection, key) {
			if utils.CaseInsensitiveCompare(bytestr.StrClose, value) {
				h.connectionClose = true
			} else if hasToken(value, bytestr.StrKeepAlive) {
				h.connectionClose = false
				h.keepAliveExplicit = true
			} else {
				h.h = setArgBytes(h.h, key, value)
			}
			return true
		}
	case 't':
		if utils.CaseInsensitiveCompare(bytestr.StrTransferEncoding, key) {
			h.chunked = utils.CaseInsensitiveCompare(bytestr.StrChunked, value)
			return true
		}
	}

	return false
}

// Peek returns the header value for the given key.
func (h *ResponseHeader) Peek(key string) []byte {
	k := getHeaderKeyBytes(&h.bufKV, key)
	switch string(k) {
	case consts.HeaderContentLength:
		if h.contentLength < 0 {
			return nil
		}
		return h.contentLengthBytes
	case consts.HeaderTransferEncoding:
		if h.chunked {
			return bytestr.StrChunked
		}
		return nil
	case consts.HeaderConnection:
		if h.connectionClose {
			return bytestr.StrClose
		}
		if h.keepAliveExplicit {
			return bytestr.StrKeepAlive
		}
		return peekArgBytes(h.h, k)
	}
	return peekArgBytes(h.h, k)
}

// Has reports whether the given header is present.
func (h *ResponseHeader) Has(key string) bool {
	return h.Peek(key) != nil
}

// FullStatusLine appends 'protocol code reason' for diagnostics.
func (h *ResponseHeader) FullStatusLine() string {
	return h.Protocol() + " " + strconv.Itoa(h.StatusCode()) + " " + string(h.Reason())
}

// hasToken reports whether one of the comma separated tokens in value equals
// token, case insensitively.
func hasToken(value, token []byte) bool {
	for len(value) > 0 {
		next := bytes.IndexByte(value, ',')
		var cur []byte
		if next < 0 {
			cur, value = value, nil
		} else {
			cur, value = value[:next], value[next+1:]
		}
		cur = bytes.TrimSpace(cur)
		if utils.CaseInsensitiveCompare(cur, token) {
			return true
		}
	}
	return false
}

func initHeaderKV(kv *argsKV, key, value string) {
	kv.key = getHeaderKeyBytes(kv, key)
	kv.value = append(kv.value[:0], value...)
}

func getHeaderKeyBytes(kv *argsKV, key string) []byte {
	kv.key = append(kv.key[:0], key...)
	utils.NormalizeHeaderKey(kv.key, false)
	return kv.key
}

func appendHeaderLine(dst, key, value []byte) []byte {
	dst = append(dst, key...)
	dst = append(dst, bytestr.StrColonSpace...)
	dst = append(dst, value...)
	return append(dst, bytestr.StrCRLF...)
}
