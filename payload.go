package frostload

import (
	"crypto/rand"
	"os"

	"github.com/pkg/errors"
)

// LoadPayload reads payload file once, or generates sizeKB of random bytes when path is empty
func LoadPayload(path string, sizeKB int) ([]byte, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read payload file")
		}
		return data, nil
	}
	if sizeKB < 0 {
		return nil, errors.Errorf("bad payload size: %d kb", sizeKB)
	}
	data := make([]byte, sizeKB*1024)
	if _, err := rand.Read(data); err != nil {
		return nil, errors.Wrap(err, "failed to generate payload")
	}
	return data, nil
}
