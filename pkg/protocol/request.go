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
	"sync"

	"github.com/netfork/h1session/internal/nocopy"
)

var requestPool = sync.Pool{
	New: func() interface{} {
		req := new(Request)
		req.Reset()
		return req
	},
}

// Request represents an outgoing HTTP request. The body is not part of the
// message: it is streamed through the writer handed out by the session.
//
// It is forbidden copying Request instances.
type Request struct {
	noCopy nocopy.NoCopy //lint:ignore U1000 until noCopy is used

	// Header holds the request line and all header fields.
	Header RequestHeader
}

func (req *Request) Reset() {
	req.Header.Reset()
}

// NewRequest makes a request descriptor for the given method and target.
func NewRequest(method, requestURI string) *Request {
	req := &Request{}
	req.Reset()
	req.Header.SetMethod(method)
	req.Header.SetRequestURI(requestURI)
	return req
}

// AcquireRequest returns an empty Request instance from the request pool.
//
// The returned Request instance may be passed to ReleaseRequest when it is
// no longer needed. This allows Request recycling, reduces GC pressure
// and usually improves performance.
func AcquireRequest() *Request {
	v := requestPool.Get().(*Request)
	return v
}

// ReleaseRequest returns req acquired via AcquireRequest to the request pool.
//
// It is forbidden accessing req and/or its members after returning
// it to the request pool.
func ReleaseRequest(req *Request) {
	req.Reset()
	requestPool.Put(req)
}
