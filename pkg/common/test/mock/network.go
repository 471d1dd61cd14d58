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

package mock

import (
	"bytes"
	"crypto/tls"
	"io"
	"net"
	"strings"
	"time"

	"github.com/cloudwego/netpoll"
	errs "github.com/netfork/h1session/pkg/common/errors"
	"github.com/netfork/h1session/pkg/network"
)

// Conn is an in-memory network.Conn. Reads are served from a fixed source
// string, writes accumulate in a buffer that becomes visible through Out
// once flushed. Peek past the end of the source returns io.EOF.
type Conn struct {
	readTimeout  time.Duration
	writeTimeout time.Duration
	zr           network.Reader
	zw           network.ReadWriter
	out          *bytes.Buffer
	flushed      int
	closed       bool
}

func NewConn(source string) *Conn {
	out := &bytes.Buffer{}
	return &Conn{
		zr:  netpoll.NewReader(strings.NewReader(source)),
		zw:  netpoll.NewReadWriter(out),
		out: out,
	}
}

// Out returns everything flushed to the peer so far.
func (m *Conn) Out() []byte {
	return m.out.Bytes()
}

// FlushedTimes returns how many Flush calls reached the peer.
func (m *Conn) FlushedTimes() int {
	return m.flushed
}

func (m *Conn) IsClosed() bool {
	return m.closed
}

func (m *Conn) Peek(i int) ([]byte, error) {
	b, err := m.zr.Peek(i)
	if err != nil || len(b) != i {
		return nil, io.EOF
	}
	return b, nil
}

func (m *Conn) Skip(n int) error {
	return m.zr.Skip(n)
}

func (m *Conn) ReadByte() (byte, error) {
	return m.zr.ReadByte()
}

func (m *Conn) ReadBinary(n int) (p []byte, err error) {
	return m.zr.(netpoll.Reader).ReadBinary(n)
}

func (m *Conn) Len() int {
	return m.zr.Len()
}

func (m *Conn) Release() error {
	return nil
}

func (m *Conn) Malloc(n int) (buf []byte, err error) {
	return m.zw.Malloc(n)
}

func (m *Conn) WriteBinary(b []byte) (n int, err error) {
	return m.zw.WriteBinary(b)
}

func (m *Conn) Flush() error {
	m.flushed++
	return m.zw.Flush()
}

func (m *Conn) Read(b []byte) (n int, err error) {
	return netpoll.NewIOReader(m.zr.(netpoll.Reader)).Read(b)
}

func (m *Conn) Write(b []byte) (n int, err error) {
	return netpoll.NewIOWriter(m.zw.(netpoll.ReadWriter)).Write(b)
}

func (m *Conn) Close() error {
	m.closed = true
	return nil
}

func (m *Conn) LocalAddr() net.Addr {
	return nil
}

func (m *Conn) RemoteAddr() net.Addr {
	return nil
}

func (m *Conn) SetDeadline(t time.Time) error {
	return nil
}

func (m *Conn) SetReadDeadline(t time.Time) error {
	m.readTimeout = -time.Since(t)
	return nil
}

func (m *Conn) SetWriteDeadline(t time.Time) error {
	return nil
}

func (m *Conn) SetReadTimeout(t time.Duration) error {
	m.readTimeout = t
	return nil
}

func (m *Conn) SetWriteTimeout(t time.Duration) error {
	m.writeTimeout = t
	return nil
}

func (m *Conn) GetReadTimeout() time.Duration {
	return m.readTimeout
}

func (m *Conn) GetWriteTimeout() time.Duration {
	return m.writeTimeout
}

// BrokenConn fails every read and every flush, mimicking a peer that went
// away while the connection sat idle in keep-alive.
type BrokenConn struct {
	*Conn
}

func NewBrokenConn(source string) *BrokenConn {
	return &BrokenConn{Conn: NewConn(source)}
}

func (o *BrokenConn) Peek(i int) ([]byte, error) {
	return nil, io.ErrUnexpectedEOF
}

func (o *BrokenConn) Read(b []byte) (n int, err error) {
	return 0, io.ErrUnexpectedEOF
}

func (o *BrokenConn) Flush() error {
	return errs.ErrConnectionClosed
}

// BrokenWriteConn accepts writes but fails on Flush with the given error,
// while reads keep working.
type BrokenWriteConn struct {
	*Conn
	flushErr error
}

func NewBrokenWriteConn(source string, flushErr error) *BrokenWriteConn {
	return &BrokenWriteConn{Conn: NewConn(source), flushErr: flushErr}
}

func (o *BrokenWriteConn) Flush() error {
	return o.flushErr
}

// ErrorReadConn returns the given error on every Peek.
type ErrorReadConn struct {
	*Conn
	errorToReturn error
}

func NewErrorReadConn(err error) *ErrorReadConn {
	return &ErrorReadConn{
		Conn:          NewConn(""),
		errorToReturn: err,
	}
}

func (er *ErrorReadConn) Peek(n int) ([]byte, error) {
	return nil, er.errorToReturn
}

// Dialer hands out prepared connections in order and records every address
// dialed. The zero value refuses all dials.
type Dialer struct {
	Conns  []network.Conn
	Dialed []string
	Err    error
}

func (d *Dialer) DialConnection(n, address string, timeout time.Duration, tlsConfig *tls.Config) (network.Conn, error) {
	d.Dialed = append(d.Dialed, address)
	if d.Err != nil {
		return nil, d.Err
	}
	if len(d.Conns) == 0 {
		return nil, errs.ErrConnectionClosed
	}
	conn := d.Conns[0]
	d.Conns = d.Conns[1:]
	return conn, nil
}

func (d *Dialer) AddTLS(conn network.Conn, tlsConfig *tls.Config) (network.Conn, error) {
	return conn, nil
}

// DialerFunc adapts a plain dial function to network.Dialer.
type DialerFunc func(address string) (network.Conn, error)

func (f DialerFunc) DialConnection(n, address string, timeout time.Duration, tlsConfig *tls.Config) (network.Conn, error) {
	return f(address)
}

func (f DialerFunc) AddTLS(conn network.Conn, tlsConfig *tls.Config) (network.Conn, error) {
	return conn, nil
}
