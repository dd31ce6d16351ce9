package node

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/insolar/frostload/native"
)

const ownerKey = "owner"

type operation int

const (
	opRead operation = iota
	opWrite
	opDelete
)

// authenticate verifies bearer session token and stores owner id in context
func (n *Node) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader(native.HeaderAuthorization)
		tok := strings.TrimPrefix(h, "Bearer ")
		if h == "" || tok == h {
			abortWithError(c, http.StatusUnauthorized, "bearer session token required")
			return
		}
		owner, err := native.VerifySessionToken(tok)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, err.Error())
			return
		}
		c.Set(ownerKey, owner)
		c.Next()
	}
}

func ownerOf(c *gin.Context) string {
	return c.GetString(ownerKey)
}

// allowed checks basic acl of a container for a requester
func allowed(cnr containerRecord, requester string, op operation) bool {
	if requester == cnr.Owner {
		return true
	}
	switch cnr.BasicACL {
	case native.ACLPublicReadWrite:
		return true
	case native.ACLPublicAppend:
		return op != opDelete
	case native.ACLPublicRead:
		return op == opRead
	default:
		return false
	}
}
