/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package frostload

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// HTTPDoer is any http client, aws sdk clients included
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// TuneHTTPTransport sets load generator limits on a transport, zero timeout means no limit
func TuneHTTPTransport(t *http.Transport, responseTimeout time.Duration) {
	t.MaxConnsPerHost = 65535
	t.MaxIdleConns = 65535
	t.MaxIdleConnsPerHost = 65535
	t.DisableCompression = true
	t.ResponseHeaderTimeout = responseTimeout
}

const (
	RequestHeader      = "========== REQUEST ==========\n%s\n"
	RequestHeaderBody  = "========== REQUEST ==========\n%s\n%s\n"
	ResponseHeaderBody = "========== RESPONSE ==========\n%s\n%s\n"
	ResponseHeader     = "========== RESPONSE ==========\n%s\n"
	HTTPBodyDelimiter  = "\r\n\r\n"
)

// DumpClient log http request/responses of a wrapped client, pprint bodies
type DumpClient struct {
	c HTTPDoer
}

// NewDumpHTTPClient wraps c, the wrapped client keeps its own transport settings
func NewDumpHTTPClient(c HTTPDoer) *DumpClient {
	return &DumpClient{c: c}
}

func (d *DumpClient) Do(h *http.Request) (*http.Response, error) {
	dump, _ := httputil.DumpRequestOut(h, true)
	if bodyIsJson(h.Header) {
		req, pprintBody := d.prettyPrintJsonBody(dump)
		fmt.Printf(RequestHeaderBody, req, pprintBody)
	} else {
		fmt.Printf(RequestHeader, dump)
	}
	resp, err := d.c.Do(h)
	if err != nil {
		return nil, err
	}
	dump, _ = httputil.DumpResponse(resp, true)
	if bodyIsJson(resp.Header) {
		respString, pprintBody := d.prettyPrintJsonBody(dump)
		fmt.Printf(ResponseHeaderBody, respString, pprintBody)
		return resp, nil
	}
	fmt.Printf(ResponseHeader, dump)
	return resp, nil
}

// prettyPrintJsonBody returns http format request and pretty printed json body
func (d *DumpClient) prettyPrintJsonBody(b []byte) (string, string) {
	s := string(b)
	sp := strings.SplitN(s, HTTPBodyDelimiter, 2)
	if len(sp) != 2 {
		return s, ""
	}
	var body interface{}
	if err := jsoniter.Unmarshal([]byte(sp[1]), &body); err != nil {
		return sp[0], sp[1]
	}
	pprintBody, err := jsoniter.MarshalIndent(body, "", "    ")
	if err != nil {
		return sp[0], sp[1]
	}
	return sp[0], string(pprintBody)
}

func bodyIsJson(h http.Header) bool {
	return strings.Contains(h.Get("content-type"), "application/json")
}
