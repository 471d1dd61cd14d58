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
	"testing"

	"github.com/netfork/h1session/pkg/common/test/assert"
	"github.com/netfork/h1session/pkg/protocol"
	"github.com/netfork/h1session/pkg/protocol/consts"
)

func TestSetProxyAuthHeader(t *testing.T) {
	var h protocol.RequestHeader
	h.Reset()
	SetProxyAuthHeader(&h, "aladdin", "opensesame")
	assert.DeepEqual(t, "Basic YWxhZGRpbjpvcGVuc2VzYW1l", string(h.Peek(consts.HeaderProxyAuthorization)))
}

func TestSetProxyAuthHeaderNoCredentials(t *testing.T) {
	var h protocol.RequestHeader
	h.Reset()
	SetProxyAuthHeader(&h, "", "ignored")
	assert.False(t, h.Has(consts.HeaderProxyAuthorization))
}
