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

package consts

// HTTP methods were copied from net/http.
const (
	MethodGet     = "GET"     // RFC 7231, 4.3.1
	MethodHead    = "HEAD"    // RFC 7231, 4.3.2
	MethodPost    = "POST"    // RFC 7231, 4.3.3
	MethodPut     = "PUT"     // RFC 7231, 4.3.4
	MethodPatch   = "PATCH"   // RFC 5789
	MethodDelete  = "DELETE"  // RFC 7231, 4.3.5
	MethodConnect = "CONNECT" // RFC 7231, 4.3.6
	MethodOptions = "OPTIONS" // RFC 7231, 4.3.7
	MethodTrace   = "TRACE"   // RFC 7231, 4.3.8
)

const (
	HeaderConnection         = "Connection"
	HeaderContentLength      = "Content-Length"
	HeaderTransferEncoding   = "Transfer-Encoding"
	HeaderHost               = "Host"
	HeaderUpgrade            = "Upgrade"
	HeaderExpect             = "Expect"
	HeaderUserAgent          = "User-Agent"
	HeaderProxyConnection    = "Proxy-Connection"
	HeaderProxyAuthorization = "Proxy-Authorization"
)

// Protocol versions appearing on request and status lines.
const (
	HTTP11 = "HTTP/1.1"
	HTTP10 = "HTTP/1.0"
)
