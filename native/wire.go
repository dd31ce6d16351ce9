package native

// REST dialect spoken with a storage node
const (
	PathContainers = "/v1/containers"
	PathObjects    = "/v1/objects"

	HeaderAuthorization = "Authorization"
	// HeaderAttributes carries base64url encoded json object of object attributes
	HeaderAttributes = "X-Attributes"
	// HeaderPayloadHash xxhash64 hex of a payload, verified by a node when present
	HeaderPayloadHash = "X-Payload-Hash"
	HeaderRequestID   = "X-Request-Id"

	ContentTypeJSON   = "application/json"
	ContentTypeBinary = "application/octet-stream"
)

// ContainersPutRequest is model for request body to create new container.
type ContainersPutRequest struct {
	ContainerName   string `json:"containerName"`
	PlacementPolicy string `json:"placementPolicy"`
	BasicACL        string `json:"basicAcl"`
	NameGlobalScope bool   `json:"nameGlobalScope"`
}

// ContainersPutResponse is model for response after put new container.
type ContainersPutResponse struct {
	ContainerID string `json:"containerId"`
}

// ObjectsPutResponse is model for response after upload object.
type ObjectsPutResponse struct {
	ContainerID string `json:"containerId"`
	ObjectID    string `json:"objectId"`
}

// ErrorResponse is model for any failed request.
type ErrorResponse struct {
	Message string `json:"message"`
}
