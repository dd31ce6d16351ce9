/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package frostload

import (
	"fmt"
	"net"
	"time"

	"github.com/valyala/fasthttp"
)

// FastHTTPClient fasthttp client which can dump requests and responses
type FastHTTPClient struct {
	dump bool
	fasthttp.Client
}

// NewLoggingFastHTTPClient creates new client with debug http, zero dialTimeout means fasthttp default
func NewLoggingFastHTTPClient(debug bool, dialTimeout time.Duration) *FastHTTPClient {
	c := &FastHTTPClient{
		dump: debug,
		Client: fasthttp.Client{
			MaxConnsPerHost:           65535,
			MaxIdleConnDuration:       90 * time.Second,
			MaxIdemponentCallAttempts: 1,
		},
	}
	if dialTimeout > 0 {
		c.Client.Dial = func(addr string) (net.Conn, error) {
			return fasthttp.DialTimeout(addr, dialTimeout)
		}
	}
	return c
}

// DoTimeout performs request waiting response no longer than timeout, zero timeout waits forever
func (m *FastHTTPClient) DoTimeout(req *fasthttp.Request, resp *fasthttp.Response, timeout time.Duration) error {
	if m.dump {
		fmt.Printf(RequestHeader, req.String())
	}
	var err error
	if timeout > 0 {
		err = m.Client.DoTimeout(req, resp, timeout)
	} else {
		err = m.Client.Do(req, resp)
	}
	if err != nil {
		return err
	}
	if m.dump {
		fmt.Printf(ResponseHeader, resp.String())
	}
	return nil
}
