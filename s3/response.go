package s3

// BucketParams of a new bucket
type BucketParams struct {
	// Location constraint, empty for default region
	Location string
	// Versioning enables object versions
	Versioning bool
}

type CreateBucketResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type PutResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type GetResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Payload []byte            `json:"-"`
	Headers map[string]string `json:"headers,omitempty"`
}

type DeleteResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
