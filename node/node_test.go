package node

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/insolar/frostload/native"
)

type testNode struct {
	n   *Node
	url string
}

func startTestNode(t *testing.T) testNode {
	n, err := New(Config{}, nil)
	require.NoError(t, err)
	srv := httptest.NewServer(n.Handler())
	t.Cleanup(func() {
		srv.Close()
		_ = n.Close()
	})
	return testNode{n: n, url: srv.URL}
}

func (tn testNode) client(t *testing.T) *native.Client {
	c, err := native.Connect(tn.url, "")
	require.NoError(t, err)
	return c
}

func createContainer(t *testing.T, c *native.Client, acl string) string {
	res := c.PutContainer(context.Background(), native.ContainerParams{ACL: acl, PlacementPolicy: "REP 2"})
	require.True(t, res.Success, res.Error)
	return res.ContainerID
}

func TestBasicACL(t *testing.T) {
	tn := startTestNode(t)
	ctx := context.Background()
	owner, stranger := tn.client(t), tn.client(t)

	type expect struct{ read, write, delete bool }
	cases := map[string]expect{
		native.ACLPrivate:         {false, false, false},
		native.ACLPublicRead:      {true, false, false},
		native.ACLPublicAppend:    {true, true, false},
		native.ACLPublicReadWrite: {true, true, true},
	}
	for acl, e := range cases {
		cid := createContainer(t, owner, acl)
		put := owner.Put(ctx, cid, nil, []byte("x"))
		require.True(t, put.Success, put.Error)

		get := stranger.Get(ctx, cid, put.ObjectID)
		require.Equal(t, e.read, get.Success, acl)
		sput := stranger.Put(ctx, cid, nil, []byte("y"))
		require.Equal(t, e.write, sput.Success, acl)
		if !e.write {
			require.Contains(t, sput.Error, "403", acl)
		}
		del := stranger.Delete(ctx, cid, put.ObjectID)
		require.Equal(t, e.delete, del.Success, acl)

		if !e.delete {
			require.True(t, owner.Get(ctx, cid, put.ObjectID).Success, acl)
		}
	}
}

func TestGlobalNameConflict(t *testing.T) {
	tn := startTestNode(t)
	c := tn.client(t)
	ctx := context.Background()
	p := native.ContainerParams{ACL: native.ACLPrivate, PlacementPolicy: "REP 1", Name: "bench", NameGlobalScope: true}

	first := c.PutContainer(ctx, p)
	require.True(t, first.Success, first.Error)
	second := c.PutContainer(ctx, p)
	require.False(t, second.Success)
	require.Contains(t, second.Error, "409")

	// local names may repeat
	p.NameGlobalScope = false
	a := c.PutContainer(ctx, p)
	b := c.PutContainer(ctx, p)
	require.True(t, a.Success, a.Error)
	require.True(t, b.Success, b.Error)
	require.NotEqual(t, a.ContainerID, b.ContainerID)
}

func TestUnauthorized(t *testing.T) {
	tn := startTestNode(t)
	req, err := http.NewRequest(http.MethodPut, tn.url+native.PathContainers, strings.NewReader(`{}`))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get(native.HeaderRequestID))

	req, err = http.NewRequest(http.MethodPut, tn.url+native.PathContainers, strings.NewReader(`{}`))
	require.NoError(t, err)
	req.Header.Set(native.HeaderAuthorization, "Bearer forged")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
}

func TestPayloadHashMismatch(t *testing.T) {
	tn := startTestNode(t)
	c := tn.client(t)
	cid := createContainer(t, c, native.ACLPublicReadWrite)

	key, err := native.ParsePrivateKey("")
	require.NoError(t, err)
	tok, _, err := native.NewSessionToken(key, time.Hour)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPut, tn.url+native.PathObjects+"/"+cid, strings.NewReader("payload"))
	require.NoError(t, err)
	req.Header.Set(native.HeaderAuthorization, "Bearer "+tok)
	req.Header.Set(native.HeaderPayloadHash, native.PayloadHash([]byte("other")))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	n, err := tn.n.store.countObjects(cid)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestDeleteObject(t *testing.T) {
	tn := startTestNode(t)
	c := tn.client(t)
	ctx := context.Background()
	cid := createContainer(t, c, native.ACLPrivate)

	var ids []string
	for i := 0; i < 3; i++ {
		res := c.Put(ctx, cid, nil, []byte("x"))
		require.True(t, res.Success, res.Error)
		ids = append(ids, res.ObjectID)
	}
	n, err := tn.n.store.countObjects(cid)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	require.True(t, c.Delete(ctx, cid, ids[0]).Success)
	again := c.Delete(ctx, cid, ids[0])
	require.False(t, again.Success)
	require.Contains(t, again.Error, "404")

	n, err = tn.n.store.countObjects(cid)
	require.NoError(t, err)
	require.Equal(t, 2, n)
}
