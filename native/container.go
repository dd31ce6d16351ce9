package native

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
)

// Basic ACL presets understood by a node
const (
	ACLPrivate         = "private"
	ACLPublicRead      = "public-read"
	ACLPublicReadWrite = "public-read-write"
	ACLPublicAppend    = "public-append"

	DefaultACL             = ACLPrivate
	DefaultPlacementPolicy = "REP 1"
)

// Recognized container params keys
const (
	ParamACL             = "acl"
	ParamPlacementPolicy = "placement_policy"
	ParamName            = "name"
	ParamNameGlobalScope = "name_global_scope"
)

// ErrInvalidParams container params can't be parsed
var ErrInvalidParams = errors.New("invalid container params")

// ContainerParams of a new container
type ContainerParams struct {
	// ACL basic access control preset, private by default
	ACL string
	// PlacementPolicy replication spec, "REP 1" by default
	PlacementPolicy string
	// Name human label of a container
	Name string
	// NameGlobalScope makes name unique across a node
	NameGlobalScope bool
}

// ParseContainerParams builds params from loosely typed options, unknown keys are rejected
func ParseContainerParams(m map[string]string) (ContainerParams, error) {
	p := ContainerParams{
		ACL:             DefaultACL,
		PlacementPolicy: DefaultPlacementPolicy,
	}
	for k, v := range m {
		switch k {
		case ParamACL:
			p.ACL = v
		case ParamPlacementPolicy:
			p.PlacementPolicy = v
		case ParamName:
			p.Name = v
		case ParamNameGlobalScope:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return p, errors.Wrapf(ErrInvalidParams, "%s: %q is not a boolean", k, v)
			}
			p.NameGlobalScope = b
		default:
			return p, errors.Wrapf(ErrInvalidParams, "unknown key %q", k)
		}
	}
	return p, p.Validate()
}

// Validate checks acl and placement policy
func (p ContainerParams) Validate() error {
	if !IsKnownACL(p.ACL) {
		return errors.Wrapf(ErrInvalidParams, "unknown acl %q", p.ACL)
	}
	if err := ValidatePlacementPolicy(p.PlacementPolicy); err != nil {
		return errors.Wrap(ErrInvalidParams, err.Error())
	}
	if p.NameGlobalScope && p.Name == "" {
		return errors.Wrap(ErrInvalidParams, "global scope requires a name")
	}
	return nil
}

// IsKnownACL reports whether acl is one of basic presets
func IsKnownACL(acl string) bool {
	switch acl {
	case ACLPrivate, ACLPublicRead, ACLPublicReadWrite, ACLPublicAppend:
		return true
	}
	return false
}

// ValidatePlacementPolicy checks policy starts with "REP <n>" clause, the rest is not interpreted
func ValidatePlacementPolicy(policy string) error {
	fields := strings.Fields(policy)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "REP") {
		return errors.Errorf("placement policy %q must start with REP <n>", policy)
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 1 {
		return errors.Errorf("placement policy %q: bad replica count", policy)
	}
	return nil
}

// PutContainer creates a container, not idempotent: same name may produce another container or fail
func (c *Client) PutContainer(ctx context.Context, p ContainerParams) PutContainerResponse {
	start := time.Now()
	if err := p.Validate(); err != nil {
		cnrPutMetrics.observe(start, true)
		return PutContainerResponse{Success: false, Error: err.Error()}
	}
	body, err := jsoniter.Marshal(ContainersPutRequest{
		ContainerName:   p.Name,
		PlacementPolicy: p.PlacementPolicy,
		BasicACL:        p.ACL,
		NameGlobalScope: p.NameGlobalScope,
	})
	if err != nil {
		cnrPutMetrics.observe(start, true)
		return PutContainerResponse{Success: false, Error: err.Error()}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)
	req.Header.SetMethod(fasthttp.MethodPut)
	req.Header.SetContentType(ContentTypeJSON)
	req.SetBody(body)

	if err := c.do(ctx, req, resp, PathContainers, http.StatusCreated); err != nil {
		cnrPutMetrics.observe(start, true)
		c.L.Debugf("put container: %v", err)
		return PutContainerResponse{Success: false, Error: err.Error()}
	}
	var res ContainersPutResponse
	if err := jsoniter.Unmarshal(resp.Body(), &res); err != nil || res.ContainerID == "" {
		cnrPutMetrics.observe(start, true)
		return PutContainerResponse{Success: false, Error: "malformed container put response"}
	}
	cnrPutMetrics.observe(start, false)
	return PutContainerResponse{Success: true, ContainerID: res.ContainerID}
}
