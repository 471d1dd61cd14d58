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

package netpoll

import (
	"crypto/tls"
	"time"

	"github.com/cloudwego/netpoll"
	"github.com/netfork/h1session/pkg/common/errors"
	"github.com/netfork/h1session/pkg/network"
)

var errNotSupportTLS = errors.NewTransportf("netpoll transport does not support tls")

type dialer struct {
	netpoll.Dialer
}

func (d dialer) DialConnection(n, address string, timeout time.Duration, tlsConfig *tls.Config) (conn network.Conn, err error) {
	if tlsConfig != nil {
		return nil, errNotSupportTLS
	}
	c, err := d.Dialer.DialConnection(n, address, timeout)
	if err != nil {
		return nil, err
	}
	conn = newConn(c)
	return
}

func (d dialer) AddTLS(conn network.Conn, tlsConfig *tls.Config) (network.Conn, error) {
	return nil, errNotSupportTLS
}

// NewDialer creates a netpoll based dialer.
func NewDialer() network.Dialer {
	return dialer{Dialer: netpoll.NewDialer()}
}
