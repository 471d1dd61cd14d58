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

// HTTP status codes the session core cares about.
const (
	StatusContinue           = 100 // RFC 7231, 6.2.1
	StatusSwitchingProtocols = 101 // RFC 7231, 6.2.2

	StatusOK          = 200 // RFC 7231, 6.3.1
	StatusNoContent   = 204 // RFC 7231, 6.3.5
	StatusNotModified = 304 // RFC 7232, 4.1

	StatusProxyAuthRequired = 407 // RFC 7235, 3.2

	StatusBadGateway         = 502 // RFC 7231, 6.6.3
	StatusServiceUnavailable = 503 // RFC 7231, 6.6.4
	StatusGatewayTimeout     = 504 // RFC 7231, 6.6.5
)

var statusMessages = map[int]string{
	StatusContinue:           "Continue",
	StatusSwitchingProtocols: "Switching Protocols",
	StatusOK:                 "OK",
	StatusNoContent:          "No Content",
	StatusNotModified:        "Not Modified",
	StatusProxyAuthRequired:  "Proxy Authentication Required",
	StatusBadGateway:         "Bad Gateway",
	StatusServiceUnavailable: "Service Unavailable",
	StatusGatewayTimeout:     "Gateway Timeout",
}

// StatusMessage returns the default reason phrase for the given status code.
func StatusMessage(statusCode int) string {
	s := statusMessages[statusCode]
	if s == "" {
		s = "Unknown Status Code"
	}
	return s
}
