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
	"crypto/tls"
	"io"
	"net"
	"regexp"
	"strconv"
	"time"

	"github.com/netfork/h1session/internal/bytestr"
	errs "github.com/netfork/h1session/pkg/common/errors"
	"github.com/netfork/h1session/pkg/common/hlog"
	"github.com/netfork/h1session/pkg/network"
	"github.com/netfork/h1session/pkg/network/dialer"
	"github.com/netfork/h1session/pkg/protocol"
	"github.com/netfork/h1session/pkg/protocol/consts"
	"github.com/netfork/h1session/pkg/protocol/http1/ext"
	"github.com/netfork/h1session/pkg/protocol/http1/proxy"
	reqI "github.com/netfork/h1session/pkg/protocol/http1/req"
	respI "github.com/netfork/h1session/pkg/protocol/http1/resp"
)

// ClientSession owns one logical connection to an origin server, directly or
// through an HTTP proxy. It frames outgoing request bodies, delimits incoming
// response bodies and reuses the connection across exchanges when keep-alive
// allows it.
//
// A session is not safe for concurrent use. At most one request body writer
// and one response body reader are alive at a time; starting a new exchange
// discards the previous handles without flushing them.
type ClientSession struct {
	host string
	port int

	proxy ProxyConfig

	// compiled form of proxy.NonProxyHosts, rebuilt when the pattern changes
	nonProxyRe      *regexp.Regexp
	nonProxyPattern string

	keepAlive        bool
	keepAliveTimeout time.Duration
	dialTimeout      time.Duration
	readTimeout      time.Duration
	writeTimeout     time.Duration
	tlsConfig        *tls.Config
	dialer           network.Dialer

	conn        network.Conn
	lastErr     error
	lastRequest time.Time

	// retryWrite marks the current exchange as eligible for the single
	// reconnect-and-resend after a failed write. Only set while writing
	// the first bytes of a request onto a reused keep-alive connection.
	retryWrite bool

	// forceReconnect is set when the peer's last response declared it
	// will not keep the connection alive.
	forceReconnect bool

	expectResponseBody bool
	responseReceived   bool

	// tunneled means conn goes end-to-end to the target through a CONNECT
	// tunnel, so requests are not rewritten into absolute-URI proxy form.
	tunneled bool

	bw *ext.BodyWriter
	br *ext.BodyReader
}

// NewClientSession creates an unconnected session. Missing options are filled
// with defaults, see Options.
func NewClientSession(opts Options) *ClientSession {
	s := &ClientSession{
		host:             opts.Host,
		port:             opts.Port,
		keepAlive:        !opts.DisableKeepAlive,
		keepAliveTimeout: opts.KeepAliveTimeout,
		dialTimeout:      opts.DialTimeout,
		readTimeout:      opts.ReadTimeout,
		writeTimeout:     opts.WriteTimeout,
		tlsConfig:        opts.TLSConfig,
		dialer:           opts.Dialer,
		lastRequest:      time.Now(),
	}
	switch {
	case opts.Proxy != nil:
		s.proxy = *opts.Proxy
	case opts.ProxyProvider != nil:
		s.proxy = opts.ProxyProvider()
	}
	if s.proxy.Host != "" && s.proxy.Port == 0 {
		s.proxy.Port = consts.DefaultHTTPPort
	}
	if s.port == 0 {
		if s.tlsConfig != nil {
			s.port = consts.DefaultHTTPSPort
		} else {
			s.port = consts.DefaultHTTPPort
		}
	}
	if s.dialTimeout == 0 {
		s.dialTimeout = consts.DefaultDialTimeout
	}
	if s.keepAliveTimeout == 0 {
		s.keepAliveTimeout = consts.DefaultKeepAliveTimeout
	}
	if s.dialer == nil {
		s.dialer = dialer.DefaultDialer()
	}
	return s
}

// SendRequest writes the request line and headers of req and returns the
// writer for its body. The framing mode is fixed by the request's headers:
// chunked transfer encoding, an exact byte budget when a Content-Length is
// declared (the serialized header block counts toward the budget), or an
// until-close stream for PUT/POST/PATCH without a declared length.
//
// Opening the transport, rewriting the target for proxied requests and the
// keep-alive bookkeeping all happen here. Any transport failure closes the
// connection and is returned.
func (s *ClientSession) SendRequest(req *protocol.Request) (*ext.BodyWriter, error) {
	s.bw = nil
	s.br = nil
	s.lastErr = nil
	s.responseReceived = false

	if ((s.conn != nil && !s.keepAlive) || s.MustReconnect()) && s.host != "" {
		s.Close()
		s.forceReconnect = false
	}

	reused := s.conn != nil
	if !reused {
		if err := s.Reconnect(); err != nil {
			return nil, err
		}
	}

	if !s.keepAlive {
		req.Header.SetConnectionClose(true)
	}
	if len(req.Header.Host()) == 0 && s.host != "" {
		req.Header.SetHost(s.host, s.port)
	}
	if s.proxy.Host != "" && !s.bypassProxy() && !s.tunneled {
		req.Header.SetRequestURIBytes(append(s.proxyRequestPrefix(), req.Header.RequestURI()...))
		proxy.SetProxyAuthHeader(&req.Header, s.proxy.Username, s.proxy.Password)
	}

	s.retryWrite = s.keepAlive && reused
	s.expectResponseBody = req.Header.Method() != consts.MethodHead

	var err error
	switch {
	case req.Header.Chunked():
		err = reqI.WriteHeader(&req.Header, s)
		s.bw = ext.NewBodyWriter(s, ext.BodySizeChunked)
	case req.Header.ContentLength() >= 0:
		header := req.Header.Header()
		s.bw = ext.NewBodyWriter(s, len(header)+req.Header.ContentLength())
		_, err = s.bw.Write(header)
	case !methodCarriesBody(req.Header.Method()) || req.Header.Has(consts.HeaderUpgrade):
		header := req.Header.Header()
		s.bw = ext.NewBodyWriter(s, len(header))
		_, err = s.bw.Write(header)
	default:
		s.bw = ext.NewBodyWriter(s, ext.BodySizeUntilClose)
		_, err = s.bw.Write(req.Header.Header())
	}
	if err != nil {
		s.bw = nil
		s.Close()
		return nil, err
	}
	s.lastRequest = time.Now()
	return s.bw, nil
}

// ReceiveResponse finalizes the pending request writer, reads the response
// head and returns a reader for the body. Interim 100 Continue responses are
// consumed transparently unless the caller already took them via
// PeekResponse. The caller must drain the reader before the next exchange.
func (s *ClientSession) ReceiveResponse(resp *protocol.Response) (io.Reader, error) {
	if s.bw != nil {
		bw := s.bw
		s.bw = nil
		if err := bw.Finalize(); err != nil {
			return nil, err
		}
	}
	if s.lastErr != nil {
		return nil, s.lastErr
	}
	if !s.responseReceived {
		for {
			resp.Header.Reset()
			if err := s.readResponseHeader(&resp.Header); err != nil {
				return nil, err
			}
			if resp.Header.StatusCode() != consts.StatusContinue {
				break
			}
		}
	}
	s.responseReceived = false
	s.forceReconnect = s.keepAlive && !resp.Header.KeepAlive()

	s.br = ext.NewBodyReader(s.conn, s.responseBodySize(&resp.Header))
	return s.br, nil
}

// PeekResponse reads exactly one status line and header block so the caller
// can inspect interim 100 Continue responses before committing the body. It
// reports whether the response is final; on false the caller peeks again.
// After a final response has been peeked, the next intake must go through
// ReceiveResponse.
func (s *ClientSession) PeekResponse(resp *protocol.Response) (bool, error) {
	if s.responseReceived {
		panic("BUG: PeekResponse called after a final response was already received")
	}
	if s.bw != nil {
		if err := s.bw.Flush(); err != nil {
			return false, err
		}
	}
	if s.lastErr != nil {
		return false, s.lastErr
	}
	resp.Header.Reset()
	if err := s.readResponseHeader(&resp.Header); err != nil {
		return false, err
	}
	s.responseReceived = resp.Header.StatusCode() != consts.StatusContinue
	return s.responseReceived, nil
}

func (s *ClientSession) readResponseHeader(h *protocol.ResponseHeader) error {
	if s.conn == nil {
		return s.closedErr()
	}
	if err := respI.ReadHeader(h, s.conn); err != nil {
		latched := s.lastErr
		s.Close()
		if latched != nil {
			return latched
		}
		return err
	}
	return nil
}

func (s *ClientSession) responseBodySize(h *protocol.ResponseHeader) int {
	switch {
	case !s.expectResponseBody,
		h.StatusCode() < consts.StatusOK,
		h.StatusCode() == consts.StatusNoContent,
		h.StatusCode() == consts.StatusNotModified:
		return 0
	case h.Chunked():
		return ext.BodySizeChunked
	case h.ContentLength() >= 0:
		return h.ContentLength()
	default:
		return ext.BodySizeUntilClose
	}
}

// Reconnect opens the transport: to the proxy when one is configured and the
// target host does not match the bypass pattern, otherwise to the target.
// A single attempt, no backoff. With both a proxy and TLS configured it
// establishes a CONNECT tunnel first and negotiates TLS through it.
func (s *ClientSession) Reconnect() error {
	proxied := s.proxy.Host != "" && !s.bypassProxy()
	if proxied && s.tlsConfig != nil {
		conn, err := s.ProxyConnect()
		if err != nil {
			return err
		}
		tlsConn, err := s.dialer.AddTLS(conn, s.tlsConfig)
		if err != nil {
			conn.Close()
			return errs.NewTransport(err)
		}
		if err := s.attach(tlsConn); err != nil {
			return err
		}
		s.tunneled = true
		return nil
	}

	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	tlsConfig := s.tlsConfig
	if proxied {
		addr = net.JoinHostPort(s.proxy.Host, strconv.Itoa(s.proxy.Port))
		tlsConfig = nil
	}
	conn, err := s.dialer.DialConnection("tcp", addr, s.dialTimeout, tlsConfig)
	if err != nil {
		return errs.NewTransport(err)
	}
	return s.attach(conn)
}

// MustReconnect reports whether the current connection must not be reused:
// either the peer announced it will close, or the connection has been idle
// for at least the keep-alive timeout and is presumed dropped by the peer
// or an intermediary.
func (s *ClientSession) MustReconnect() bool {
	if s.forceReconnect {
		return true
	}
	return time.Since(s.lastRequest) >= s.keepAliveTimeout
}

// ProxyConnect opens a short-lived session to the proxy itself and issues a
// CONNECT for the session's target. On success it returns the raw transport,
// now tunneled end-to-end to the target; ownership transfers to the caller.
// A non-200 proxy response yields a proxy tunnel error carrying the proxy's
// reason phrase.
func (s *ClientSession) ProxyConnect() (network.Conn, error) {
	inner := NewClientSession(Options{
		Host:             s.proxy.Host,
		Port:             s.proxy.Port,
		Dialer:           s.dialer,
		DialTimeout:      s.dialTimeout,
		ReadTimeout:      s.readTimeout,
		WriteTimeout:     s.writeTimeout,
		KeepAliveTimeout: s.keepAliveTimeout,
	})

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(consts.MethodConnect)
	req.Header.SetRequestURI(net.JoinHostPort(s.host, strconv.Itoa(s.port)))
	req.Header.SetCanonical(bytestr.StrProxyConnection, bytestr.StrKeepAlive)
	req.Header.Set(consts.HeaderHost, s.host)
	proxy.SetProxyAuthHeader(&req.Header, s.proxy.Username, s.proxy.Password)

	if _, err := inner.SendRequest(req); err != nil {
		inner.Close()
		return nil, err
	}
	if _, err := inner.ReceiveResponse(resp); err != nil {
		inner.Close()
		return nil, err
	}
	if resp.Header.StatusCode() != consts.StatusOK {
		inner.Close()
		return nil, errs.NewProxyTunnel(string(resp.Header.Reason()))
	}
	return inner.DetachConn(), nil
}

// ProxyTunnel establishes a CONNECT tunnel and rebinds this session's
// transport to it. Subsequent requests go end-to-end to the target and are
// not rewritten into absolute-URI proxy form.
func (s *ClientSession) ProxyTunnel() error {
	conn, err := s.ProxyConnect()
	if err != nil {
		return err
	}
	if err := s.AttachConn(conn); err != nil {
		conn.Close()
		return err
	}
	s.tunneled = true
	return nil
}

func (s *ClientSession) bypassProxy() bool {
	if s.proxy.NonProxyHosts == "" {
		return false
	}
	if s.nonProxyRe == nil || s.nonProxyPattern != s.proxy.NonProxyHosts {
		re, err := regexp.Compile("(?i)^(?:" + s.proxy.NonProxyHosts + ")$")
		if err != nil {
			hlog.SystemLogger().Warnf("invalid non-proxy hosts pattern %q: %v", s.proxy.NonProxyHosts, err)
			return false
		}
		s.nonProxyRe = re
		s.nonProxyPattern = s.proxy.NonProxyHosts
	}
	return s.nonProxyRe.MatchString(s.host)
}

func (s *ClientSession) proxyRequestPrefix() []byte {
	scheme := bytestr.StrHTTP
	if s.tlsConfig != nil {
		scheme = bytestr.StrHTTPS
	}
	hostPort := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	prefix := make([]byte, 0, len(scheme)+len(bytestr.StrColonSlashSlash)+len(hostPort))
	prefix = append(prefix, scheme...)
	prefix = append(prefix, bytestr.StrColonSlashSlash...)
	prefix = append(prefix, hostPort...)
	return prefix
}

func methodCarriesBody(method string) bool {
	switch method {
	case consts.MethodPost, consts.MethodPut, consts.MethodPatch:
		return true
	}
	return false
}

// Malloc implements network.Writer by delegating to the transport. Bytes
// placed in the returned buffer go out with the next flush.
func (s *ClientSession) Malloc(n int) ([]byte, error) {
	if s.conn == nil {
		return nil, s.closedErr()
	}
	return s.conn.Malloc(n)
}

// WriteBinary implements network.Writer. It writes through: the bytes are
// flushed to the wire before it returns, so a transport failure surfaces on
// the write that caused it. A failed write on a reused keep-alive connection
// is retried exactly once after a reconnect; the first successful write of an
// exchange disarms the retry. Failures latch on the session and close the
// transport.
func (s *ClientSession) WriteBinary(b []byte) (int, error) {
	if s.conn == nil {
		return 0, s.closedErr()
	}
	n, err := s.writeThrough(b)
	if err != nil && s.retryWrite {
		s.retryWrite = false
		hlog.SystemLogger().Warnf("write on reused connection to %s failed, reconnecting: %v", s.host, err)
		s.Close()
		if rerr := s.Reconnect(); rerr != nil {
			s.lastErr = rerr
			return 0, rerr
		}
		n, err = s.writeThrough(b)
	}
	if err != nil {
		s.lastErr = err
		s.Close()
		return n, err
	}
	s.retryWrite = false
	return n, nil
}

// Flush implements network.Writer.
func (s *ClientSession) Flush() error {
	if s.conn == nil {
		return s.closedErr()
	}
	err := s.conn.Flush()
	if err != nil {
		err = s.toSessionError(err)
		s.lastErr = err
		s.Close()
	}
	return err
}

func (s *ClientSession) writeThrough(b []byte) (int, error) {
	n, err := s.conn.WriteBinary(b)
	if err == nil {
		err = s.conn.Flush()
	}
	if err != nil {
		err = s.toSessionError(err)
	}
	return n, err
}

func (s *ClientSession) toSessionError(err error) error {
	if en, ok := s.conn.(network.ErrorNormalization); ok {
		return en.ToSessionError(err)
	}
	return err
}

func (s *ClientSession) closedErr() error {
	if s.lastErr != nil {
		return s.lastErr
	}
	return errs.NewTransport(errs.ErrConnectionClosed)
}

func (s *ClientSession) attach(conn network.Conn) error {
	if s.readTimeout > 0 {
		if err := conn.SetReadTimeout(s.readTimeout); err != nil {
			conn.Close()
			return errs.NewTransport(err)
		}
	}
	if s.writeTimeout > 0 {
		if err := conn.SetWriteTimeout(s.writeTimeout); err != nil {
			conn.Close()
			return errs.NewTransport(err)
		}
	}
	s.conn = conn
	return nil
}

// AttachConn binds an already-connected transport to the session, for
// sessions constructed around an existing connection. Fails with a state
// conflict while the session holds a connection.
func (s *ClientSession) AttachConn(conn network.Conn) error {
	if s.conn != nil {
		return errs.NewStateConflict("conn")
	}
	return s.attach(conn)
}

// DetachConn releases the transport to the caller without closing it. The
// session is unconnected afterwards.
func (s *ClientSession) DetachConn() network.Conn {
	conn := s.conn
	s.conn = nil
	s.tunneled = false
	return conn
}

// Close shuts the transport down. Closing an unconnected session is a no-op.
func (s *ClientSession) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	s.tunneled = false
	return err
}

// Reset unconditionally closes the transport. Configuration is untouched.
func (s *ClientSession) Reset() {
	s.Close()
}

// Connected reports whether the session holds an open transport.
func (s *ClientSession) Connected() bool {
	return s.conn != nil
}

// SetHost changes the target host. Fails while connected.
func (s *ClientSession) SetHost(host string) error {
	if s.conn != nil {
		return errs.NewStateConflict("host")
	}
	s.host = host
	return nil
}

// SetPort changes the target port. Fails while connected.
func (s *ClientSession) SetPort(port int) error {
	if s.conn != nil {
		return errs.NewStateConflict("port")
	}
	s.port = port
	return nil
}

// SetProxy replaces the proxy configuration. Fails while connected.
func (s *ClientSession) SetProxy(cfg ProxyConfig) error {
	if s.conn != nil {
		return errs.NewStateConflict("proxy")
	}
	if cfg.Host != "" && cfg.Port == 0 {
		cfg.Port = consts.DefaultHTTPPort
	}
	s.proxy = cfg
	s.nonProxyRe = nil
	s.nonProxyPattern = ""
	return nil
}

// SetProxyCredentials updates the proxy credentials. Allowed at any time,
// they only matter when the next request or tunnel is sent.
func (s *ClientSession) SetProxyCredentials(username, password string) {
	s.proxy.Username = username
	s.proxy.Password = password
}

// SetKeepAlive toggles connection reuse for subsequent exchanges.
func (s *ClientSession) SetKeepAlive(keepAlive bool) {
	s.keepAlive = keepAlive
}

// SetKeepAliveTimeout sets how long an idle connection stays reusable.
// A zero timeout makes every idle connection stale.
func (s *ClientSession) SetKeepAliveTimeout(d time.Duration) {
	s.keepAliveTimeout = d
}

// SetReadTimeout applies to the current connection, if any, and to all
// future connections.
func (s *ClientSession) SetReadTimeout(d time.Duration) error {
	s.readTimeout = d
	if s.conn != nil {
		return s.conn.SetReadTimeout(d)
	}
	return nil
}

// SetWriteTimeout applies to the current connection, if any, and to all
// future connections.
func (s *ClientSession) SetWriteTimeout(d time.Duration) error {
	s.writeTimeout = d
	if s.conn != nil {
		return s.conn.SetWriteTimeout(d)
	}
	return nil
}

// SetDialTimeout bounds future connection attempts.
func (s *ClientSession) SetDialTimeout(d time.Duration) {
	s.dialTimeout = d
}

// Host returns the target host.
func (s *ClientSession) Host() string {
	return s.host
}

// Port returns the target port.
func (s *ClientSession) Port() int {
	return s.port
}

// Proxy returns the session's proxy configuration. An empty Host means the
// session connects directly.
func (s *ClientSession) Proxy() ProxyConfig {
	return s.proxy
}

// KeepAlive reports whether connection reuse is enabled.
func (s *ClientSession) KeepAlive() bool {
	return s.keepAlive
}

// KeepAliveTimeout returns the idle reuse window.
func (s *ClientSession) KeepAliveTimeout() time.Duration {
	return s.keepAliveTimeout
}
