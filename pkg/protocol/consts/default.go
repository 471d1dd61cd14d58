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

import "time"

const (
	DefaultHTTPPort  = 80
	DefaultHTTPSPort = 443

	DefaultDialTimeout = time.Second

	// DefaultKeepAliveTimeout is how long an idle connection is still
	// presumed reusable. Most servers keep idle connections open for
	// slightly longer, so 8 seconds is a conservative default.
	DefaultKeepAliveTimeout = 8 * time.Second

	// ContentLengthUnset marks a message with no declared Content-Length.
	ContentLengthUnset = -1
)
