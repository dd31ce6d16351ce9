// Package node is an in-process storage node speaking the native REST dialect.
// It keeps containers and objects in buntdb and checks bearer session tokens and basic ACLs.
package node

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/teris-io/shortid"

	"github.com/insolar/frostload"
	"github.com/insolar/frostload/native"
)

const (
	// DefaultStorePath keeps node data in memory
	DefaultStorePath = ":memory:"
	shutdownTimeout  = 5 * time.Second
)

// Config of a node
type Config struct {
	// StorePath buntdb file path, in memory by default
	StorePath string
	// Debug enables gin request logging
	Debug bool
	// Seed of container ids generator
	Seed uint64
}

// Node serves containers and objects over http
type Node struct {
	cfg    Config
	store  *store
	sid    *shortid.Shortid
	router *gin.Engine
	L      *frostload.Logger
}

// New opens node store and builds router
func New(cfg Config, l *frostload.Logger) (*Node, error) {
	if cfg.StorePath == "" {
		cfg.StorePath = DefaultStorePath
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}
	if l == nil {
		l = frostload.NewNopLogger()
	}
	s, err := openStore(cfg.StorePath)
	if err != nil {
		return nil, err
	}
	sid, err := shortid.New(1, shortid.DefaultABC, cfg.Seed)
	if err != nil {
		_ = s.Close()
		return nil, errors.Wrap(err, "init id generator")
	}
	n := &Node{
		cfg:   cfg,
		store: s,
		sid:   sid,
		L:     l,
	}
	n.router = n.newRouter()
	return n, nil
}

func (n *Node) newRouter() *gin.Engine {
	if n.cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	if n.cfg.Debug {
		r.Use(gin.Logger())
	}
	r.Use(n.requestID())

	v1 := r.Group("/v1", n.authenticate())
	v1.PUT("/containers", n.putContainer)
	v1.PUT("/objects/:cid", n.putObject)
	v1.GET("/objects/:cid/:oid", n.getObject)
	v1.DELETE("/objects/:cid/:oid", n.deleteObject)
	return r
}

// Handler to be mounted into http server or httptest
func (n *Node) Handler() http.Handler {
	return n.router
}

// Close releases node store
func (n *Node) Close() error {
	return n.store.Close()
}

// Serve listens on addr until ctx is done
func (n *Node) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: n.router,
	}
	errc := make(chan error, 1)
	go func() {
		n.L.Infof("storage node listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	n.L.Infof("shutting down storage node")
	return srv.Shutdown(sctx)
}

func (n *Node) genID() string {
	id, err := n.sid.Generate()
	if err != nil {
		// generator is exhausted only on clock issues, fall back to object ids
		return newObjectID()
	}
	return id
}

func (n *Node) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(native.HeaderRequestID)
		if id == "" {
			id = n.genID()
		}
		c.Header(native.HeaderRequestID, id)
		c.Next()
	}
}

func abortWithError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, native.ErrorResponse{Message: msg})
}
