package node

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/insolar/frostload/native"
)

func newObjectID() string {
	return shortuuid.New()
}

func (n *Node) putContainer(c *gin.Context) {
	var req native.ContainersPutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "bad container request: "+err.Error())
		return
	}
	p := native.ContainerParams{
		ACL:             req.BasicACL,
		PlacementPolicy: req.PlacementPolicy,
		Name:            req.ContainerName,
		NameGlobalScope: req.NameGlobalScope,
	}
	if p.ACL == "" {
		p.ACL = native.DefaultACL
	}
	if p.PlacementPolicy == "" {
		p.PlacementPolicy = native.DefaultPlacementPolicy
	}
	if err := p.Validate(); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	rec := containerRecord{
		ID:              n.genID(),
		Owner:           ownerOf(c),
		Name:            p.Name,
		PlacementPolicy: p.PlacementPolicy,
		BasicACL:        p.ACL,
		NameGlobalScope: p.NameGlobalScope,
		Created:         time.Now().UTC(),
	}
	err := n.store.putContainer(rec)
	switch {
	case errors.Is(err, errNameConflict):
		abortWithError(c, http.StatusConflict, err.Error())
		return
	case err != nil:
		n.L.Errorf("put container: %v", err)
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	n.L.Debugf("container %s created, acl: %s", rec.ID, rec.BasicACL)
	c.JSON(http.StatusCreated, native.ContainersPutResponse{ContainerID: rec.ID})
}

// container loads container and checks acl, writes error response on failure
func (n *Node) container(c *gin.Context, op operation) (containerRecord, bool) {
	cnr, err := n.store.getContainer(c.Param("cid"))
	switch {
	case errors.Is(err, errNotFound):
		abortWithError(c, http.StatusNotFound, "container not found")
		return cnr, false
	case err != nil:
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return cnr, false
	}
	if !allowed(cnr, ownerOf(c), op) {
		abortWithError(c, http.StatusForbidden, "access denied by basic acl")
		return cnr, false
	}
	return cnr, true
}

func (n *Node) putObject(c *gin.Context) {
	cnr, ok := n.container(c, opWrite)
	if !ok {
		return
	}
	attrs, err := native.DecodeAttributes(c.GetHeader(native.HeaderAttributes))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	payload, err := c.GetRawData()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "can't read payload: "+err.Error())
		return
	}
	hash := native.PayloadHash(payload)
	if expected := c.GetHeader(native.HeaderPayloadHash); expected != "" && expected != hash {
		abortWithError(c, http.StatusBadRequest, "payload hash mismatch")
		return
	}
	rec := objectRecord{
		ID:         newObjectID(),
		Container:  cnr.ID,
		Owner:      ownerOf(c),
		Attributes: attrs,
		Hash:       hash,
		Size:       len(payload),
		Created:    time.Now().UTC(),
	}
	if err := n.store.putObject(rec, payload); err != nil {
		if errors.Is(err, errNotFound) {
			abortWithError(c, http.StatusNotFound, "container not found")
			return
		}
		n.L.Errorf("put object: %v", err)
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, native.ObjectsPutResponse{ContainerID: cnr.ID, ObjectID: rec.ID})
}

func (n *Node) getObject(c *gin.Context) {
	cnr, ok := n.container(c, opRead)
	if !ok {
		return
	}
	rec, payload, err := n.store.getObject(cnr.ID, c.Param("oid"))
	switch {
	case errors.Is(err, errNotFound):
		abortWithError(c, http.StatusNotFound, "object not found")
		return
	case err != nil:
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	attrs, err := native.EncodeAttributes(rec.Attributes)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if attrs != "" {
		c.Header(native.HeaderAttributes, attrs)
	}
	c.Header(native.HeaderPayloadHash, rec.Hash)
	c.Data(http.StatusOK, native.ContentTypeBinary, payload)
}

func (n *Node) deleteObject(c *gin.Context) {
	cnr, ok := n.container(c, opDelete)
	if !ok {
		return
	}
	err := n.store.deleteObject(cnr.ID, c.Param("oid"))
	switch {
	case errors.Is(err, errNotFound):
		abortWithError(c, http.StatusNotFound, "object not found")
		return
	case err != nil:
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}
