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

package standard

import (
	"crypto/tls"
	"errors"
	"net"
	"strconv"
	"syscall"
	"time"

	"github.com/bytedance/gopkg/lang/mcache"
	errs "github.com/netfork/h1session/pkg/common/errors"
	"github.com/netfork/h1session/pkg/network"
)

const (
	block1k           = 1024
	block4k           = 4096
	mallocMax         = block1k * 512
	defaultMallocSize = block4k
)

var (
	_ network.Conn               = (*Conn)(nil)
	_ network.Conn               = (*TLSConn)(nil)
	_ network.ErrorNormalization = (*Conn)(nil)
)

// Conn wraps a net.Conn with mcache backed input and output buffers so that
// the codec layer can peek and malloc without extra copies.
type Conn struct {
	c   net.Conn
	in  []byte // buffered input, in[r:] is unread
	r   int
	out []byte // pending output, flushed as a whole

	err error // read error held back while buffered data remains
}

func newConn(c net.Conn, size int) *Conn {
	if size < defaultMallocSize {
		size = defaultMallocSize
	}
	return &Conn{
		c:   c,
		in:  mcache.Malloc(0, size),
		out: mcache.Malloc(0, defaultMallocSize),
	}
}

// ToSessionError maps socket errors onto the sentinel errors the session
// layer branches on.
func (c *Conn) ToSessionError(err error) error {
	if errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ENOTCONN) || errors.Is(err, syscall.ECONNRESET) {
		return errs.ErrConnectionClosed
	}
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return errs.ErrTimeout
	}
	return err
}

func (c *Conn) SetReadTimeout(t time.Duration) error {
	if t <= 0 {
		return c.c.SetReadDeadline(time.Time{})
	}
	return c.c.SetReadDeadline(time.Now().Add(t))
}

func (c *Conn) SetWriteTimeout(t time.Duration) error {
	if t <= 0 {
		return c.c.SetWriteDeadline(time.Time{})
	}
	return c.c.SetWriteDeadline(time.Now().Add(t))
}

// Len returns the total length of the readable data in the reader.
func (c *Conn) Len() int {
	return len(c.in) - c.r
}

// grow makes room for at least need more bytes in the input buffer,
// compacting consumed data first.
func (c *Conn) grow(need int) {
	if cap(c.in)-len(c.in) >= need {
		return
	}
	if c.r > 0 {
		copy(c.in, c.in[c.r:])
		c.in = c.in[:len(c.in)-c.r]
		c.r = 0
		if cap(c.in)-len(c.in) >= need {
			return
		}
	}
	newCap := 2 * cap(c.in)
	if newCap < len(c.in)+need {
		newCap = len(c.in) + need
	}
	buf := mcache.Malloc(len(c.in), newCap)
	copy(buf, c.in)
	mcache.Free(c.in)
	c.in = buf
}

// fill blocks until at least i bytes are buffered. A read error observed
// after enough data already arrived is held back for the next call.
func (c *Conn) fill(i int) error {
	if c.Len() >= i {
		return nil
	}
	if c.err != nil {
		err := c.err
		c.err = nil
		return err
	}
	c.grow(i - c.Len())
	for c.Len() < i {
		n, err := c.c.Read(c.in[len(c.in):cap(c.in)])
		c.in = c.in[:len(c.in)+n]
		if err != nil {
			if c.Len() >= i {
				c.err = err
				return nil
			}
			return err
		}
	}
	return nil
}

// Peek returns the next i bytes without advancing the reader. The returned
// slice stays valid until the next Skip or Release.
func (c *Conn) Peek(i int) ([]byte, error) {
	if err := c.fill(i); err != nil {
		return nil, err
	}
	return c.in[c.r : c.r+i], nil
}

// Skip discards the next n bytes.
func (c *Conn) Skip(n int) error {
	if c.Len() < n {
		return errs.NewTransportf("input buffer skip[" + strconv.Itoa(n) + "] not enough")
	}
	c.r += n
	return nil
}

// Release recycles consumed input. Oversized buffers are returned to mcache
// so a single large response does not pin its memory for the connection's
// lifetime.
func (c *Conn) Release() error {
	if c.Len() != 0 {
		return nil
	}
	if cap(c.in) > mallocMax {
		mcache.Free(c.in)
		c.in = mcache.Malloc(0, defaultMallocSize)
	} else {
		c.in = c.in[:0]
	}
	c.r = 0
	return nil
}

// ReadByte is used to read one byte with advancing the read pointer.
func (c *Conn) ReadByte() (byte, error) {
	b, err := c.Peek(1)
	if err != nil {
		return ' ', err
	}
	c.r++
	return b[0], nil
}

// ReadBinary is used to read next n byte with copy, and the read pointer will be advanced.
func (c *Conn) ReadBinary(n int) ([]byte, error) {
	b, err := c.Peek(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	c.r += n
	return out, nil
}

func (c *Conn) Read(b []byte) (int, error) {
	if l := c.Len(); l > 0 {
		if l > len(b) {
			l = len(b)
		}
		copy(b, c.in[c.r:c.r+l])
		c.r += l
		return l, nil
	}
	return c.c.Read(b)
}

// Malloc will provide a n bytes buffer to send data.
func (c *Conn) Malloc(n int) ([]byte, error) {
	if cap(c.out)-len(c.out) < n {
		newCap := 2 * cap(c.out)
		if newCap < len(c.out)+n {
			newCap = len(c.out) + n
		}
		buf := mcache.Malloc(len(c.out), newCap)
		copy(buf, c.out)
		mcache.Free(c.out)
		c.out = buf
	}
	m := len(c.out)
	c.out = c.out[:m+n]
	return c.out[m : m+n], nil
}

// WriteBinary will use the user buffer to flush.
// NOTE: Before flush successfully, the buffer b should be valid.
func (c *Conn) WriteBinary(b []byte) (int, error) {
	buf, err := c.Malloc(len(b))
	if err != nil {
		return 0, err
	}
	return copy(buf, b), nil
}

// Flush will send the pending output to the peer end.
func (c *Conn) Flush() error {
	written := 0
	for written < len(c.out) {
		n, err := c.c.Write(c.out[written:])
		written += n
		if err != nil {
			copy(c.out, c.out[written:])
			c.out = c.out[:len(c.out)-written]
			return err
		}
	}
	if cap(c.out) > mallocMax {
		mcache.Free(c.out)
		c.out = mcache.Malloc(0, defaultMallocSize)
	} else {
		c.out = c.out[:0]
	}
	return nil
}

// Write flushes pending output first, then sends b directly.
func (c *Conn) Write(b []byte) (int, error) {
	if err := c.Flush(); err != nil {
		return 0, err
	}
	return c.c.Write(b)
}

func (c *Conn) Close() error {
	return c.c.Close()
}

func (c *Conn) LocalAddr() net.Addr {
	return c.c.LocalAddr()
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.c.RemoteAddr()
}

func (c *Conn) SetDeadline(t time.Time) error {
	return c.c.SetDeadline(t)
}

func (c *Conn) SetReadDeadline(t time.Time) error {
	return c.c.SetReadDeadline(t)
}

func (c *Conn) SetWriteDeadline(t time.Time) error {
	return c.c.SetWriteDeadline(t)
}

type TLSConn struct {
	Conn
}

func (c *TLSConn) Handshake() error {
	return c.c.(*tls.Conn).Handshake()
}

func (c *TLSConn) ConnectionState() tls.ConnectionState {
	return c.c.(*tls.Conn).ConnectionState()
}

func newTLSConn(c net.Conn, size int) *TLSConn {
	conn := newConn(c, size)
	return &TLSConn{Conn: *conn}
}
