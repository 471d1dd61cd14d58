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
	"errors"
	"io"
	"testing"

	errs "github.com/netfork/h1session/pkg/common/errors"
	"github.com/netfork/h1session/pkg/common/test/assert"
	"github.com/netfork/h1session/pkg/common/test/mock"
)

func TestBodyWriterFixedBudget(t *testing.T) {
	conn := mock.NewConn("")
	bw := NewBodyWriter(conn, 5)

	n, err := bw.Write([]byte("hel"))
	assert.Nil(t, err)
	assert.DeepEqual(t, 3, n)
	_, err = bw.Write([]byte("lo"))
	assert.Nil(t, err)
	assert.DeepEqual(t, 5, bw.Written())

	_, err = bw.Write([]byte("x"))
	assert.NotNil(t, err)
	assert.True(t, errors.Is(err, errs.ErrBodyTooLarge))

	assert.Nil(t, bw.Finalize())
	assert.DeepEqual(t, "hello", string(conn.Out()))
}

func TestBodyWriterFixedUnderwrite(t *testing.T) {
	conn := mock.NewConn("")
	bw := NewBodyWriter(conn, 10)

	_, err := bw.Write([]byte("short"))
	assert.Nil(t, err)

	// completion with fewer bytes than declared is the peer's problem
	assert.Nil(t, bw.Finalize())
	assert.DeepEqual(t, "short", string(conn.Out()))
}

func TestBodyWriterChunkedRoundTrip(t *testing.T) {
	conn := mock.NewConn("")
	bw := NewBodyWriter(conn, BodySizeChunked)
	assert.True(t, bw.IsChunked())

	for _, piece := range []string{"abc", "de", "fghij"} {
		_, err := bw.Write([]byte(piece))
		assert.Nil(t, err)
	}
	assert.Nil(t, bw.Finalize())
	assert.DeepEqual(t, "3\r\nabc\r\n2\r\nde\r\n5\r\nfghij\r\n0\r\n\r\n", string(conn.Out()))

	br := NewBodyReader(mock.NewConn(string(conn.Out())), BodySizeChunked)
	body, err := io.ReadAll(br)
	assert.Nil(t, err)
	assert.DeepEqual(t, "abcdefghij", string(body))
}

func TestBodyWriterFinalizeIdempotent(t *testing.T) {
	conn := mock.NewConn("")
	bw := NewBodyWriter(conn, BodySizeChunked)

	_, err := bw.Write([]byte("a"))
	assert.Nil(t, err)
	assert.Nil(t, bw.Finalize())
	assert.Nil(t, bw.Finalize())
	assert.DeepEqual(t, "1\r\na\r\n0\r\n\r\n", string(conn.Out()))

	_, err = bw.Write([]byte("b"))
	assert.True(t, errors.Is(err, errs.ErrConnectionClosed))
}

func TestBodyReaderFixedZero(t *testing.T) {
	br := NewBodyReader(mock.NewConn("leftover"), 0)

	buf := make([]byte, 4)
	n, err := br.Read(buf)
	assert.DeepEqual(t, 0, n)
	assert.DeepEqual(t, io.EOF, err)
}

func TestBodyReaderFixed(t *testing.T) {
	br := NewBodyReader(mock.NewConn("hello, world"), 5)

	body, err := io.ReadAll(br)
	assert.Nil(t, err)
	assert.DeepEqual(t, "hello", string(body))
}

func TestBodyReaderFixedShort(t *testing.T) {
	br := NewBodyReader(mock.NewConn("ab"), 5)

	buf := make([]byte, 5)
	n, err := br.Read(buf)
	assert.DeepEqual(t, 2, n)
	assert.Nil(t, err)

	_, err = br.Read(buf)
	assert.DeepEqual(t, io.ErrUnexpectedEOF, err)
}

func TestBodyReaderUntilClose(t *testing.T) {
	br := NewBodyReader(mock.NewConn("entire stream"), BodySizeUntilClose)

	body, err := io.ReadAll(br)
	assert.Nil(t, err)
	assert.DeepEqual(t, "entire stream", string(body))
}

func TestBodyReaderChunkedTrailer(t *testing.T) {
	br := NewBodyReader(mock.NewConn("3\r\nabc\r\n0\r\nExpires: date\r\n\r\n"), BodySizeChunked)

	body, err := io.ReadAll(br)
	assert.Nil(t, err)
	assert.DeepEqual(t, "abc", string(body))
}

func TestBodyReaderChunkedMalformed(t *testing.T) {
	br := NewBodyReader(mock.NewConn("zz\r\nabc\r\n"), BodySizeChunked)

	_, err := io.ReadAll(br)
	assert.NotNil(t, err)
	assert.True(t, errs.IsType(err, errs.ErrorTypeProtocol))
}
