package native

import (
	"context"
	"encoding/base64"
	"net/http"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
)

// EncodeAttributes packs object attributes into X-Attributes header value
func EncodeAttributes(attrs map[string]string) (string, error) {
	if len(attrs) == 0 {
		return "", nil
	}
	raw, err := jsoniter.Marshal(attrs)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DecodeAttributes unpacks X-Attributes header value, empty value means no attributes
func DecodeAttributes(v string) (map[string]string, error) {
	attrs := make(map[string]string)
	if v == "" {
		return attrs, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(v)
	if err != nil {
		return nil, errors.Wrap(err, "bad attributes encoding")
	}
	if err := jsoniter.Unmarshal(raw, &attrs); err != nil {
		return nil, errors.Wrap(err, "bad attributes")
	}
	return attrs, nil
}

// PayloadHash is a hex xxhash64 checksum sent along with a payload
func PayloadHash(payload []byte) string {
	return strconv.FormatUint(xxhash.Sum64(payload), 16)
}

// Put stores payload as a new object, headers become object attributes
func (c *Client) Put(ctx context.Context, containerID string, headers map[string]string, payload []byte) PutResponse {
	return c.put(ctx, containerID, headers, payload, PayloadHash(payload))
}

func (c *Client) put(ctx context.Context, containerID string, headers map[string]string, payload []byte, hash string) PutResponse {
	start := time.Now()
	if containerID == "" {
		objPutMetrics.observe(start, true)
		return PutResponse{Success: false, Error: "empty container id"}
	}
	attrs, err := EncodeAttributes(headers)
	if err != nil {
		objPutMetrics.observe(start, true)
		return PutResponse{Success: false, Error: err.Error()}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)
	req.Header.SetMethod(fasthttp.MethodPut)
	req.Header.SetContentType(ContentTypeBinary)
	if attrs != "" {
		req.Header.Set(HeaderAttributes, attrs)
	}
	req.Header.Set(HeaderPayloadHash, hash)
	req.SetBody(payload)

	if err := c.do(ctx, req, resp, PathObjects+"/"+containerID, http.StatusOK); err != nil {
		objPutMetrics.observe(start, true)
		c.L.Debugf("put object: %v", err)
		return PutResponse{Success: false, Error: err.Error()}
	}
	var res ObjectsPutResponse
	if err := jsoniter.Unmarshal(resp.Body(), &res); err != nil || res.ObjectID == "" {
		objPutMetrics.observe(start, true)
		return PutResponse{Success: false, Error: "malformed object put response"}
	}
	objPutMetrics.observe(start, false)
	return PutResponse{Success: true, ObjectID: res.ObjectID}
}

// Get reads object payload and attributes
func (c *Client) Get(ctx context.Context, containerID, objectID string) GetResponse {
	start := time.Now()
	if containerID == "" || objectID == "" {
		objGetMetrics.observe(start, true)
		return GetResponse{Success: false, Error: "empty container or object id"}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := c.do(ctx, req, resp, PathObjects+"/"+containerID+"/"+objectID, http.StatusOK); err != nil {
		objGetMetrics.observe(start, true)
		c.L.Debugf("get object: %v", err)
		return GetResponse{Success: false, Error: err.Error()}
	}
	attrs, err := DecodeAttributes(string(resp.Header.Peek(HeaderAttributes)))
	if err != nil {
		objGetMetrics.observe(start, true)
		return GetResponse{Success: false, Error: err.Error()}
	}
	// response body is owned by the pooled response
	payload := append([]byte(nil), resp.Body()...)
	objGetMetrics.observe(start, false)
	return GetResponse{Success: true, Payload: payload, Headers: attrs}
}

// Delete removes object
func (c *Client) Delete(ctx context.Context, containerID, objectID string) DeleteResponse {
	start := time.Now()
	if containerID == "" || objectID == "" {
		objDeleteMetrics.observe(start, true)
		return DeleteResponse{Success: false, Error: "empty container or object id"}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)
	req.Header.SetMethod(fasthttp.MethodDelete)

	if err := c.do(ctx, req, resp, PathObjects+"/"+containerID+"/"+objectID, http.StatusNoContent); err != nil {
		objDeleteMetrics.observe(start, true)
		c.L.Debugf("delete object: %v", err)
		return DeleteResponse{Success: false, Error: err.Error()}
	}
	objDeleteMetrics.observe(start, false)
	return DeleteResponse{Success: true}
}
