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

package errors

import (
	"errors"
	"fmt"
)

var (
	// These errors are the base errors, which are used for checking in errors.Is()
	ErrNeedMore         = errors.New("need more data")
	ErrTimeout          = errors.New("timeout")
	ErrConnectionClosed = errors.New("connection closed")
	ErrBodyTooLarge     = errors.New("body size exceeds the declared length")
	ErrStateConflict    = errors.New("session configuration is frozen while connected")
)

// ErrorType discriminates session errors into the categories a caller can
// act on: configuration misuse, socket-level failures, malformed peer data
// and failed CONNECT handshakes.
type ErrorType uint64

const (
	// ErrorTypeStateConflict is used when identity or routing configuration
	// is mutated on an already connected session.
	ErrorTypeStateConflict ErrorType = 1 << iota
	// ErrorTypeTransport is used for connect/write/read failures at the
	// socket layer.
	ErrorTypeTransport
	// ErrorTypeProtocol is used for malformed status lines or headers.
	ErrorTypeProtocol
	// ErrorTypeProxyTunnel is used when a proxy refuses a CONNECT request.
	ErrorTypeProxyTunnel
	// ErrorTypeAny indicates any other error.
	ErrorTypeAny
)

type Error struct {
	Err  error
	Type ErrorType
	Meta interface{}
}

var _ error = (*Error)(nil)

func (msg *Error) Error() string {
	return msg.Err.Error()
}

func (msg *Error) Unwrap() error {
	return msg.Err
}

// SetType sets the error's type.
func (msg *Error) SetType(flags ErrorType) *Error {
	msg.Type = flags
	return msg
}

// SetMeta sets the error's meta data.
func (msg *Error) SetMeta(data interface{}) *Error {
	msg.Meta = data
	return msg
}

// IsType judges one error.
func (msg *Error) IsType(flags ErrorType) bool {
	return (msg.Type & flags) > 0
}

func New(err error, t ErrorType, meta interface{}) *Error {
	return &Error{
		Err:  err,
		Type: t,
		Meta: meta,
	}
}

func Newf(t ErrorType, meta interface{}, format string, v ...interface{}) *Error {
	return New(fmt.Errorf(format, v...), t, meta)
}

// NewTransport wraps a socket-level failure.
func NewTransport(err error) *Error {
	return New(err, ErrorTypeTransport, nil)
}

func NewTransportf(format string, v ...interface{}) *Error {
	return New(fmt.Errorf(format, v...), ErrorTypeTransport, nil)
}

// NewProtocol wraps a malformed status line or header block.
func NewProtocol(err error) *Error {
	return New(err, ErrorTypeProtocol, nil)
}

func NewProtocolf(format string, v ...interface{}) *Error {
	return New(fmt.Errorf(format, v...), ErrorTypeProtocol, nil)
}

// NewStateConflict reports a configuration mutation on a connected session.
// what names the rejected field, e.g. "host".
func NewStateConflict(what string) *Error {
	return New(ErrStateConflict, ErrorTypeStateConflict, what)
}

// NewProxyTunnel reports a refused CONNECT handshake. reason carries the
// proxy's reason phrase and is retrievable via Meta.
func NewProxyTunnel(reason string) *Error {
	return New(fmt.Errorf("cannot establish proxy connection: %s", reason), ErrorTypeProxyTunnel, reason)
}

// TypeOf returns the ErrorType of err, or ErrorTypeAny for errors that did
// not originate from this package.
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeAny
}

// IsType reports whether err carries one of the given type flags.
func IsType(err error, flags ErrorType) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.IsType(flags)
	}
	return false
}
