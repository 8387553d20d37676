// Copyright 2020 Google LLC All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package httpx builds the base http.RoundTripper this client issues every
// registry request through.
package httpx

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// SocketTimeout bounds how long a single connect or a single read/write may
// stall before the connection is abandoned. There is deliberately no
// overall request timeout layered on top: a multi-gigabyte blob transfer
// that keeps making progress, one read at a time, must not be capped by
// its total duration.
const SocketTimeout = 10 * time.Second

// TLSOptions configures the trust store NewTransport builds its
// tls.Config from, matching the CLI's --insecure/--cafile/--capath flags.
type TLSOptions struct {
	// InsecureSkipVerify disables certificate verification entirely.
	InsecureSkipVerify bool
	// CAFile, if set, is a PEM file of additional trusted root
	// certificates.
	CAFile string
	// CAPath, if set, is a directory of PEM files of additional trusted
	// root certificates.
	CAPath string
}

// NewTransport builds an http.RoundTripper with SocketTimeout enforced on
// both connection establishment and every subsequent read/write, and with
// the trust store described by opts.
func NewTransport(opts TLSOptions) (http.RoundTripper, error) {
	tlsConfig := &tls.Config{InsecureSkipVerify: opts.InsecureSkipVerify} //nolint:gosec
	if opts.CAFile != "" || opts.CAPath != "" {
		pool, err := loadCertPool(opts.CAFile, opts.CAPath)
		if err != nil {
			return nil, err
		}
		tlsConfig.RootCAs = pool
	}

	dialer := &net.Dialer{Timeout: SocketTimeout}
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			return &deadlineConn{Conn: conn, timeout: SocketTimeout}, nil
		},
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   SocketTimeout,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig:       tlsConfig,
	}, nil
}

// loadCertPool builds a cert pool from the system trust store plus caFile
// (a single PEM file) and every PEM file found directly inside caPath.
func loadCertPool(caFile, caPath string) (*x509.CertPool, error) {
	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}

	if caFile != "" {
		pem, err := os.ReadFile(caFile)
		if err != nil {
			return nil, fmt.Errorf("httpx: reading --cafile %s: %w", caFile, err)
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("httpx: no certificates found in --cafile %s", caFile)
		}
	}

	if caPath != "" {
		entries, err := os.ReadDir(caPath)
		if err != nil {
			return nil, fmt.Errorf("httpx: reading --capath %s: %w", caPath, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			pem, err := os.ReadFile(filepath.Join(caPath, entry.Name()))
			if err != nil {
				return nil, fmt.Errorf("httpx: reading %s: %w", entry.Name(), err)
			}
			pool.AppendCertsFromPEM(pem)
		}
	}

	return pool, nil
}

// deadlineConn resets a read/write deadline of timeout before every Read
// and Write, so a stalled socket times out while a socket that keeps
// making progress — however slowly, however long in total — never does.
type deadlineConn struct {
	net.Conn
	timeout time.Duration
}

func (c *deadlineConn) Read(b []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(b)
}

func (c *deadlineConn) Write(b []byte) (int, error) {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Write(b)
}
