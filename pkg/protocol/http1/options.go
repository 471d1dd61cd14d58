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

package http1

import (
	"crypto/tls"
	"time"

	"github.com/netfork/h1session/pkg/network"
)

// ProxyConfig routes a session through an HTTP proxy. An empty Host means no
// proxy. NonProxyHosts is a case-insensitive pattern matched against the
// whole target hostname; matching hosts are dialed directly even when a
// proxy is configured.
type ProxyConfig struct {
	Host          string
	Port          int
	Username      string
	Password      string
	NonProxyHosts string
}

// ProxyConfigProvider supplies the proxy configuration for sessions that do
// not carry one themselves. It replaces a process-global default: share a
// provider between sessions that should follow the same routing.
type ProxyConfigProvider func() ProxyConfig

// Options configures a ClientSession at construction time. The zero value is
// usable: it keeps connections alive, uses the process default dialer and
// dials port 80, or 443 when TLSConfig is set.
type Options struct {
	// Host and Port identify the target server.
	Host string
	Port int

	// Proxy overrides ProxyProvider when non-nil.
	Proxy         *ProxyConfig
	ProxyProvider ProxyConfigProvider

	// Dialer opens transports. Defaults to the process default dialer.
	Dialer      network.Dialer
	DialTimeout time.Duration

	// ReadTimeout and WriteTimeout are forwarded to the transport.
	// Zero means no deadline.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// DisableKeepAlive closes the connection after every exchange.
	DisableKeepAlive bool

	// KeepAliveTimeout is how long an idle connection is still presumed
	// reusable. Defaults to consts.DefaultKeepAliveTimeout.
	KeepAliveTimeout time.Duration

	// TLSConfig switches dials to TLS. With a proxy configured, the
	// session first opens a CONNECT tunnel and then negotiates TLS
	// through it.
	TLSConfig *tls.Config
}
