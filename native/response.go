package native

// PutContainerResponse result of a container creation
type PutContainerResponse struct {
	Success     bool   `json:"success"`
	ContainerID string `json:"container_id"`
	Error       string `json:"error"`
}

// PutResponse result of an object upload
type PutResponse struct {
	Success  bool   `json:"success"`
	ObjectID string `json:"object_id"`
	Error    string `json:"error"`
}

// GetResponse result of an object download
type GetResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Payload []byte            `json:"-"`
	Headers map[string]string `json:"headers,omitempty"`
}

// DeleteResponse result of an object removal
type DeleteResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
