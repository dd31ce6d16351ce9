package s3

import (
	"context"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const metaPrefix = "X-Amz-Meta-"

type fakeObject struct {
	data []byte
	meta map[string]string
}

// fakeGateway is a path-style S3 gateway keeping objects in memory
type fakeGateway struct {
	mu      sync.Mutex
	buckets map[string]map[string]fakeObject
}

func s3Error(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>%s</Code><Message>%s</Message></Error>`, code, code)
}

func (g *fakeGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()
	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)
	bucket := parts[0]
	objects, ok := g.buckets[bucket]
	if len(parts) == 1 || parts[1] == "" {
		if r.Method != http.MethodPut {
			s3Error(w, http.StatusMethodNotAllowed, "MethodNotAllowed")
			return
		}
		if _, versioning := r.URL.Query()["versioning"]; versioning {
			if !ok {
				s3Error(w, http.StatusNotFound, "NoSuchBucket")
			}
			return
		}
		if ok {
			s3Error(w, http.StatusConflict, "BucketAlreadyOwnedByYou")
			return
		}
		g.buckets[bucket] = make(map[string]fakeObject)
		return
	}
	if !ok {
		s3Error(w, http.StatusNotFound, "NoSuchBucket")
		return
	}
	key := parts[1]
	switch r.Method {
	case http.MethodPut:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			s3Error(w, http.StatusBadRequest, "IncompleteBody")
			return
		}
		meta := make(map[string]string)
		for h := range r.Header {
			if strings.HasPrefix(h, metaPrefix) {
				meta[strings.ToLower(strings.TrimPrefix(h, metaPrefix))] = r.Header.Get(h)
			}
		}
		objects[key] = fakeObject{data: data, meta: meta}
		w.Header().Set("ETag", `"etag"`)
	case http.MethodGet:
		obj, ok := objects[key]
		if !ok {
			s3Error(w, http.StatusNotFound, "NoSuchKey")
			return
		}
		for k, v := range obj.meta {
			w.Header().Set(metaPrefix+k, v)
		}
		w.Header().Set("Content-Length", fmt.Sprint(len(obj.data)))
		_, _ = w.Write(obj.data)
	case http.MethodDelete:
		delete(objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		s3Error(w, http.StatusMethodNotAllowed, "MethodNotAllowed")
	}
}

func startGateway(t *testing.T) string {
	srv := httptest.NewServer(&fakeGateway{buckets: make(map[string]map[string]fakeObject)})
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestPutGetDelete(t *testing.T) {
	c, err := Connect(startGateway(t), WithCredentials("access", "secret"))
	require.NoError(t, err)
	ctx := context.Background()

	res := c.CreateBucket(ctx, "load", BucketParams{Versioning: true})
	require.True(t, res.Success, res.Error)
	again := c.CreateBucket(ctx, "load", BucketParams{})
	require.False(t, again.Success)
	require.Contains(t, again.Error, "BucketAlreadyOwnedByYou")

	payload := []byte(strings.Repeat("frost", 100))
	put := c.Put(ctx, "load", "obj-1", map[string]string{"unique_header": "42"}, payload)
	require.True(t, put.Success, put.Error)

	get := c.Get(ctx, "load", "obj-1")
	require.True(t, get.Success, get.Error)
	require.Equal(t, payload, get.Payload)
	require.Equal(t, "42", get.Headers["unique_header"])

	del := c.Delete(ctx, "load", "obj-1")
	require.True(t, del.Success, del.Error)
	missing := c.Get(ctx, "load", "obj-1")
	require.False(t, missing.Success)
	require.Contains(t, missing.Error, "NoSuchKey")
}

func TestPutNoBucket(t *testing.T) {
	c, err := Connect(startGateway(t), WithCredentials("access", "secret"))
	require.NoError(t, err)
	put := c.Put(context.Background(), "absent", "k", nil, []byte("x"))
	require.False(t, put.Success)
	require.NotEmpty(t, put.Error)
}

func TestConnect(t *testing.T) {
	_, err := Connect("")
	require.Error(t, err)

	c, err := Connect("127.0.0.1:1", WithCredentials("access", "secret"))
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:1", c.endpoint)
	res := c.Get(context.Background(), "b", "k")
	require.False(t, res.Success)
}

func TestConnectCustomCABundle(t *testing.T) {
	tlsSrv := httptest.NewTLSServer(http.NotFoundHandler())
	defer tlsSrv.Close()
	bundle := filepath.Join(t.TempDir(), "ca.pem")
	cert := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: tlsSrv.Certificate().Raw})
	require.NoError(t, os.WriteFile(bundle, cert, 0o600))
	t.Setenv("AWS_CA_BUNDLE", bundle)

	for _, dump := range []bool{false, true} {
		c, err := Connect(startGateway(t), WithCredentials("access", "secret"), WithDumpTransport(dump))
		require.NoError(t, err)
		res := c.CreateBucket(context.Background(), fmt.Sprintf("ca-%t", dump), BucketParams{})
		require.True(t, res.Success, res.Error)
	}
}
