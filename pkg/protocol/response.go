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

var responsePool = sync.Pool{
	New: func() interface{} {
		resp := new(Response)
		resp.Reset()
		return resp
	},
}

// Response represents an incoming HTTP response. The body is not part of the
// message: it is streamed through the reader handed out by the session.
//
// It is forbidden copying Response instances.
type Response struct {
	noCopy nocopy.NoCopy //lint:ignore U1000 until noCopy is used

	// Header holds the status line and all header fields.
	Header ResponseHeader
}

func (resp *Response) Reset() {
	resp.Header.Reset()
}

// AcquireResponse returns an empty Response instance from the response pool.
//
// The returned Response instance may be passed to ReleaseResponse when it is
// no longer needed. This allows Response recycling, reduces GC pressure
// and usually improves performance.
func AcquireResponse() *Response {
	v := responsePool.Get().(*Response)
	return v
}

// ReleaseResponse returns resp acquired via AcquireResponse to the response pool.
//
// It is forbidden accessing resp and/or its members after returning
// it to the response pool.
func ReleaseResponse(resp *Response) {
	resp.Reset()
	responsePool.Put(resp)
}
