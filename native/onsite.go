package native

import "context"

// PreparedObject is a payload bound to a container, ready to be stored many times
type PreparedObject struct {
	c           *Client
	containerID string
	payload     []byte
	hash        string
}

// Onsite prepares payload for repeated puts into a container, no network I/O involved
func (c *Client) Onsite(containerID string, payload []byte) *PreparedObject {
	return &PreparedObject{
		c:           c,
		containerID: containerID,
		payload:     payload,
		hash:        PayloadHash(payload),
	}
}

// ContainerID the object is bound to
func (o *PreparedObject) ContainerID() string {
	return o.containerID
}

// Put stores prepared payload as a new object with headers as attributes
func (o *PreparedObject) Put(ctx context.Context, headers map[string]string) PutResponse {
	return o.c.put(ctx, o.containerID, headers, o.payload, o.hash)
}
