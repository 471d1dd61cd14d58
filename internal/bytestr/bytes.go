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

// Package bytestr defines some common bytes.
package bytestr

import (
	"github.com/netfork/h1session/pkg/protocol/consts"
)

var (
	StrCRLF            = []byte("\r\n")
	StrColonSpace      = []byte(": ")
	StrHTTP            = []byte("http")
	StrHTTPS           = []byte("https")
	StrHTTP11          = []byte(consts.HTTP11)
	StrColonSlashSlash = []byte("://")
	StrSlash           = []byte("/")

	StrConnection         = []byte(consts.HeaderConnection)
	StrContentLength      = []byte(consts.HeaderContentLength)
	StrTransferEncoding   = []byte(consts.HeaderTransferEncoding)
	StrHost               = []byte(consts.HeaderHost)
	StrProxyConnection    = []byte(consts.HeaderProxyConnection)
	StrProxyAuthorization = []byte(consts.HeaderProxyAuthorization)

	StrClose      = []byte("close")
	StrKeepAlive  = []byte("keep-alive")
	StrChunked    = []byte("chunked")
	StrChunkedEnd = []byte("0\r\n\r\n")
	StrBasicSpace = []byte("Basic ")
)
