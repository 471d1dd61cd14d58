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

package http1

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	errs "github.com/netfork/h1session/pkg/common/errors"
	"github.com/netfork/h1session/pkg/common/test/assert"
	"github.com/netfork/h1session/pkg/common/test/mock"
	"github.com/netfork/h1session/pkg/network"
	"github.com/netfork/h1session/pkg/protocol"
	"github.com/netfork/h1session/pkg/protocol/consts"
)

const emptyOKResponse = "HTTP/1.1 200 OK\r\nContent-Length: 0\r\n\r\n"

func newTestSession(host string, conns ...*mock.Conn) (*ClientSession, *mock.Dialer) {
	d := &mock.Dialer{}
	for _, c := range conns {
		d.Conns = append(d.Conns, c)
	}
	return NewClientSession(Options{Host: host, Dialer: d}), d
}

func TestSendRequestFixedLength(t *testing.T) {
	conn := mock.NewConn(emptyOKResponse)
	s, d := newTestSession("example.com", conn)

	req := protocol.NewRequest(consts.MethodPut, "/upload")
	req.Header.SetContentLength(5)
	bw, err := s.SendRequest(req)
	assert.Nil(t, err)
	assert.DeepEqual(t, []string{"example.com:80"}, d.Dialed)

	n, err := bw.Write([]byte("hello"))
	assert.Nil(t, err)
	assert.DeepEqual(t, 5, n)

	// the byte budget is header block plus declared length, both spent
	_, err = bw.Write([]byte("x"))
	assert.NotNil(t, err)
	assert.True(t, errors.Is(err, errs.ErrBodyTooLarge))

	resp := protocol.AcquireResponse()
	r, err := s.ReceiveResponse(resp)
	assert.Nil(t, err)
	assert.DeepEqual(t, consts.StatusOK, resp.Header.StatusCode())

	buf := make([]byte, 8)
	n, err = r.Read(buf)
	assert.DeepEqual(t, 0, n)
	assert.DeepEqual(t, io.EOF, err)

	out := string(conn.Out())
	assert.True(t, strings.HasPrefix(out, "PUT /upload HTTP/1.1\r\n"))
	assert.True(t, strings.Contains(out, "\r\nHost: example.com\r\n"))
	assert.True(t, strings.Contains(out, "\r\nContent-Length: 5\r\n"))
	assert.True(t, strings.HasSuffix(out, "\r\n\r\nhello"))
}

func TestSendRequestChunked(t *testing.T) {
	conn := mock.NewConn(emptyOKResponse)
	s, _ := newTestSession("example.com", conn)

	req := protocol.NewRequest(consts.MethodPost, "/stream")
	req.Header.SetChunked(true)
	bw, err := s.SendRequest(req)
	assert.Nil(t, err)
	assert.True(t, bw.IsChunked())

	_, err = bw.Write([]byte("abc"))
	assert.Nil(t, err)
	_, err = bw.Write([]byte("de"))
	assert.Nil(t, err)
	assert.Nil(t, bw.Finalize())

	out := string(conn.Out())
	assert.True(t, strings.Contains(out, "\r\nTransfer-Encoding: chunked\r\n"))
	assert.True(t, strings.HasSuffix(out, "\r\n\r\n3\r\nabc\r\n2\r\nde\r\n0\r\n\r\n"))
}

func TestSendRequestUntilCloseWithoutLength(t *testing.T) {
	conn := mock.NewConn("")
	s, _ := newTestSession("example.com", conn)

	req := protocol.NewRequest(consts.MethodPost, "/submit")
	bw, err := s.SendRequest(req)
	assert.Nil(t, err)
	assert.False(t, bw.IsChunked())

	// no declared length: body bytes pass through unframed
	_, err = bw.Write([]byte("raw payload"))
	assert.Nil(t, err)
	assert.Nil(t, bw.Finalize())
	assert.True(t, strings.HasSuffix(string(conn.Out()), "\r\n\r\nraw payload"))
}

func TestHeadResponseHasNoBody(t *testing.T) {
	conn := mock.NewConn("HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nHELLO")
	s, _ := newTestSession("example.com", conn)

	req := protocol.NewRequest(consts.MethodHead, "/")
	_, err := s.SendRequest(req)
	assert.Nil(t, err)

	resp := protocol.AcquireResponse()
	r, err := s.ReceiveResponse(resp)
	assert.Nil(t, err)
	assert.DeepEqual(t, 5, resp.Header.ContentLength())

	buf := make([]byte, 8)
	n, err := r.Read(buf)
	assert.DeepEqual(t, 0, n)
	assert.DeepEqual(t, io.EOF, err)
}

func TestResponseBodyUntilClose(t *testing.T) {
	conn := mock.NewConn("HTTP/1.1 200 OK\r\n\r\nhello")
	s, _ := newTestSession("example.com", conn)

	_, err := s.SendRequest(protocol.NewRequest(consts.MethodGet, "/"))
	assert.Nil(t, err)

	resp := protocol.AcquireResponse()
	r, err := s.ReceiveResponse(resp)
	assert.Nil(t, err)

	body, err := io.ReadAll(r)
	assert.Nil(t, err)
	assert.DeepEqual(t, "hello", string(body))
}

func TestReceiveResponseSkipsContinue(t *testing.T) {
	conn := mock.NewConn("HTTP/1.1 100 Continue\r\n\r\n" + emptyOKResponse)
	s, _ := newTestSession("example.com", conn)

	req := protocol.NewRequest(consts.MethodPut, "/upload")
	req.Header.SetContentLength(0)
	_, err := s.SendRequest(req)
	assert.Nil(t, err)

	resp := protocol.AcquireResponse()
	_, err = s.ReceiveResponse(resp)
	assert.Nil(t, err)
	assert.DeepEqual(t, consts.StatusOK, resp.Header.StatusCode())
}

func TestPeekResponse(t *testing.T) {
	conn := mock.NewConn("HTTP/1.1 100 Continue\r\n\r\n" + emptyOKResponse)
	s, _ := newTestSession("example.com", conn)

	req := protocol.NewRequest(consts.MethodPut, "/upload")
	req.Header.SetContentLength(0)
	_, err := s.SendRequest(req)
	assert.Nil(t, err)

	resp := protocol.AcquireResponse()
	final, err := s.PeekResponse(resp)
	assert.Nil(t, err)
	assert.False(t, final)
	assert.DeepEqual(t, consts.StatusContinue, resp.Header.StatusCode())

	final, err = s.PeekResponse(resp)
	assert.Nil(t, err)
	assert.True(t, final)
	assert.DeepEqual(t, consts.StatusOK, resp.Header.StatusCode())

	assert.Panic(t, func() {
		s.PeekResponse(resp)
	})

	// the peeked final response is handed over without another read
	r, err := s.ReceiveResponse(resp)
	assert.Nil(t, err)
	buf := make([]byte, 1)
	_, err = r.Read(buf)
	assert.DeepEqual(t, io.EOF, err)
}

func TestMustReconnectOnZeroTimeout(t *testing.T) {
	s, _ := newTestSession("example.com")
	assert.False(t, s.MustReconnect())
	s.SetKeepAliveTimeout(0)
	assert.True(t, s.MustReconnect())
}

func TestMustReconnectOnConnectionClose(t *testing.T) {
	conn1 := mock.NewConn("HTTP/1.1 200 OK\r\nContent-Length: 0\r\nConnection: close\r\n\r\n")
	conn2 := mock.NewConn(emptyOKResponse)
	s, d := newTestSession("example.com", conn1, conn2)

	_, err := s.SendRequest(protocol.NewRequest(consts.MethodGet, "/"))
	assert.Nil(t, err)
	resp := protocol.AcquireResponse()
	_, err = s.ReceiveResponse(resp)
	assert.Nil(t, err)
	assert.True(t, s.MustReconnect())

	_, err = s.SendRequest(protocol.NewRequest(consts.MethodGet, "/"))
	assert.Nil(t, err)
	assert.True(t, conn1.IsClosed())
	assert.DeepEqual(t, 2, len(d.Dialed))
}

func TestKeepAliveReuse(t *testing.T) {
	conn := mock.NewConn(emptyOKResponse + emptyOKResponse)
	s, d := newTestSession("example.com", conn)

	for i := 0; i < 2; i++ {
		_, err := s.SendRequest(protocol.NewRequest(consts.MethodGet, "/"))
		assert.Nil(t, err)
		resp := protocol.AcquireResponse()
		_, err = s.ReceiveResponse(resp)
		assert.Nil(t, err)
		assert.DeepEqual(t, consts.StatusOK, resp.Header.StatusCode())
	}
	assert.DeepEqual(t, 1, len(d.Dialed))
	assert.False(t, conn.IsClosed())
}

func TestDisabledKeepAliveStampsConnectionClose(t *testing.T) {
	conn := mock.NewConn(emptyOKResponse)
	d := &mock.Dialer{Conns: []network.Conn{conn}}
	s := NewClientSession(Options{Host: "example.com", Dialer: d, DisableKeepAlive: true})

	_, err := s.SendRequest(protocol.NewRequest(consts.MethodGet, "/"))
	assert.Nil(t, err)
	assert.True(t, strings.Contains(string(conn.Out()), "\r\nConnection: close\r\n"))
}

func TestWriteRetryOnReusedConn(t *testing.T) {
	broken := mock.NewBrokenWriteConn("", errors.New("broken pipe"))
	replacement := mock.NewConn(emptyOKResponse)
	d := &mock.Dialer{Conns: []network.Conn{replacement}}
	s := NewClientSession(Options{Host: "example.com", Dialer: d})
	assert.Nil(t, s.AttachConn(broken))

	_, err := s.SendRequest(protocol.NewRequest(consts.MethodGet, "/"))
	assert.Nil(t, err)
	assert.True(t, broken.IsClosed())
	assert.DeepEqual(t, []string{"example.com:80"}, d.Dialed)
	assert.True(t, strings.HasPrefix(string(replacement.Out()), "GET / HTTP/1.1\r\n"))
}

func TestNoWriteRetryOnFreshConn(t *testing.T) {
	broken := mock.NewBrokenWriteConn("", errors.New("broken pipe"))
	d := &mock.Dialer{Conns: []network.Conn{broken}}
	s := NewClientSession(Options{Host: "example.com", Dialer: d})

	_, err := s.SendRequest(protocol.NewRequest(consts.MethodGet, "/"))
	assert.NotNil(t, err)
	assert.DeepEqual(t, 1, len(d.Dialed))
	assert.True(t, broken.IsClosed())
	assert.False(t, s.Connected())
}

func TestSessionWriteThrough(t *testing.T) {
	conn := mock.NewConn("")
	s, _ := newTestSession("example.com")
	assert.Nil(t, s.AttachConn(conn))

	_, err := s.WriteBinary([]byte("ab"))
	assert.Nil(t, err)
	_, err = s.WriteBinary([]byte("cd"))
	assert.Nil(t, err)

	assert.DeepEqual(t, 2, conn.FlushedTimes())
	assert.DeepEqual(t, "abcd", string(conn.Out()))
}

func TestProxyBypass(t *testing.T) {
	cfg := &ProxyConfig{
		Host:          "proxy.local",
		Port:          3128,
		NonProxyHosts: `(localhost|127\.0\.0\.1)`,
	}

	d := &mock.Dialer{Conns: []network.Conn{mock.NewConn(emptyOKResponse)}}
	s := NewClientSession(Options{Host: "localhost", Dialer: d, Proxy: cfg})
	_, err := s.SendRequest(protocol.NewRequest(consts.MethodGet, "/"))
	assert.Nil(t, err)
	assert.DeepEqual(t, []string{"localhost:80"}, d.Dialed)

	conn := mock.NewConn(emptyOKResponse)
	d = &mock.Dialer{Conns: []network.Conn{conn}}
	s = NewClientSession(Options{Host: "example.com", Dialer: d, Proxy: cfg})
	_, err = s.SendRequest(protocol.NewRequest(consts.MethodGet, "/"))
	assert.Nil(t, err)
	assert.DeepEqual(t, []string{"proxy.local:3128"}, d.Dialed)
	assert.True(t, strings.HasPrefix(string(conn.Out()), "GET http://example.com:80/ HTTP/1.1\r\n"))
}

func TestProxyAuthHeader(t *testing.T) {
	conn := mock.NewConn(emptyOKResponse)
	d := &mock.Dialer{Conns: []network.Conn{conn}}
	s := NewClientSession(Options{
		Host:   "example.com",
		Dialer: d,
		Proxy:  &ProxyConfig{Host: "proxy.local", Port: 3128, Username: "user", Password: "pass"},
	})

	_, err := s.SendRequest(protocol.NewRequest(consts.MethodGet, "/"))
	assert.Nil(t, err)
	assert.True(t, strings.Contains(string(conn.Out()), "\r\nProxy-Authorization: Basic dXNlcjpwYXNz\r\n"))
}

func TestProxyTunnel(t *testing.T) {
	conn := mock.NewConn("HTTP/1.1 200 Connection established\r\n\r\n" + emptyOKResponse)
	d := &mock.Dialer{Conns: []network.Conn{conn}}
	s := NewClientSession(Options{
		Host:   "origin.test",
		Port:   8443,
		Dialer: d,
		Proxy:  &ProxyConfig{Host: "proxy.local", Port: 3128},
	})

	assert.Nil(t, s.ProxyTunnel())
	assert.True(t, s.Connected())
	assert.DeepEqual(t, []string{"proxy.local:3128"}, d.Dialed)

	out := string(conn.Out())
	assert.True(t, strings.HasPrefix(out, "CONNECT origin.test:8443 HTTP/1.1\r\n"))
	assert.True(t, strings.Contains(out, "\r\nHost: origin.test\r\n"))
	assert.True(t, strings.Contains(out, "\r\nProxy-Connection: keep-alive\r\n"))

	// requests now go end-to-end, no absolute-URI rewriting
	_, err := s.SendRequest(protocol.NewRequest(consts.MethodGet, "/secret"))
	assert.Nil(t, err)
	assert.True(t, strings.Contains(string(conn.Out()), "GET /secret HTTP/1.1\r\n"))
	assert.DeepEqual(t, 1, len(d.Dialed))
}

func TestProxyTunnelRefused(t *testing.T) {
	conn := mock.NewConn("HTTP/1.1 502 Bad Gateway\r\n\r\n")
	d := &mock.Dialer{Conns: []network.Conn{conn}}
	s := NewClientSession(Options{
		Host:   "origin.test",
		Port:   443,
		Dialer: d,
		Proxy:  &ProxyConfig{Host: "proxy.local", Port: 3128},
	})

	err := s.ProxyTunnel()
	assert.NotNil(t, err)
	assert.True(t, errs.IsType(err, errs.ErrorTypeProxyTunnel))

	var e *errs.Error
	assert.True(t, errors.As(err, &e))
	assert.DeepEqual(t, "Bad Gateway", e.Meta)
	assert.False(t, s.Connected())
	assert.True(t, conn.IsClosed())
}

func TestConfigFrozenWhileConnected(t *testing.T) {
	s, _ := newTestSession("example.com")
	assert.Nil(t, s.SetHost("other.example.com"))
	assert.Nil(t, s.SetPort(8080))

	assert.Nil(t, s.AttachConn(mock.NewConn("")))
	assert.True(t, errs.IsType(s.SetHost("x"), errs.ErrorTypeStateConflict))
	assert.True(t, errs.IsType(s.SetPort(1), errs.ErrorTypeStateConflict))
	assert.True(t, errs.IsType(s.SetProxy(ProxyConfig{Host: "p"}), errs.ErrorTypeStateConflict))

	// credentials and keep-alive tuning stay mutable on a live connection
	s.SetProxyCredentials("user", "pass")
	s.SetKeepAlive(false)
	s.SetKeepAliveTimeout(time.Second)

	s.Close()
	assert.Nil(t, s.SetHost("x"))
}

func TestLatchedErrorPreferred(t *testing.T) {
	latched := errors.New("original network failure")

	s, _ := newTestSession("example.com")
	assert.Nil(t, s.AttachConn(mock.NewErrorReadConn(errors.New("fresh read failure"))))
	s.lastErr = latched

	resp := protocol.AcquireResponse()
	err := s.readResponseHeader(&resp.Header)
	assert.DeepEqual(t, latched, err)
	assert.False(t, s.Connected())
}

func TestSendRequestDialFailure(t *testing.T) {
	d := &mock.Dialer{Err: errors.New("connection refused")}
	s := NewClientSession(Options{Host: "example.com", Dialer: d})

	_, err := s.SendRequest(protocol.NewRequest(consts.MethodGet, "/"))
	assert.NotNil(t, err)
	assert.True(t, errs.IsType(err, errs.ErrorTypeTransport))
	assert.False(t, s.Connected())
}
