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

package proxy

import (
	"encoding/base64"

	"github.com/netfork/h1session/internal/bytesconv"
	"github.com/netfork/h1session/internal/bytestr"
	"github.com/netfork/h1session/pkg/protocol"
)

// SetProxyAuthHeader adds a Basic Proxy-Authorization header when a username
// is configured. No-op otherwise.
func SetProxyAuthHeader(h *protocol.RequestHeader, username, password string) {
	if username == "" {
		return
	}
	auth := base64.StdEncoding.EncodeToString(bytesconv.S2b(username + ":" + password))
	value := make([]byte, 0, len(bytestr.StrBasicSpace)+len(auth))
	value = append(value, bytestr.StrBasicSpace...)
	value = append(value, auth...)
	h.SetCanonical(bytestr.StrProxyAuthorization, value)
}
