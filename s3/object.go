package s3

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// CreateBucket creates bucket and optionally enables versioning
func (c *Client) CreateBucket(ctx context.Context, bucket string, p BucketParams) CreateBucketResponse {
	start := time.Now()
	in := &s3.CreateBucketInput{Bucket: aws.String(bucket)}
	if p.Location != "" {
		in.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(p.Location),
		}
	}
	_, err := c.svc.CreateBucket(ctx, in)
	if err == nil && p.Versioning {
		_, err = c.svc.PutBucketVersioning(ctx, &s3.PutBucketVersioningInput{
			Bucket: aws.String(bucket),
			VersioningConfiguration: &types.VersioningConfiguration{
				Status: types.BucketVersioningStatusEnabled,
			},
		})
	}
	bucketCreateMetrics.observe(start, err)
	if err != nil {
		c.L.Debugf("create bucket: %v", err)
		return CreateBucketResponse{Success: false, Error: err.Error()}
	}
	return CreateBucketResponse{Success: true}
}

// Put uploads payload under key, headers become user metadata
func (c *Client) Put(ctx context.Context, bucket, key string, headers map[string]string, payload []byte) PutResponse {
	start := time.Now()
	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:   aws.String(bucket),
		Key:      aws.String(key),
		Body:     bytes.NewReader(payload),
		Metadata: headers,
	})
	objPutMetrics.observe(start, err)
	if err != nil {
		c.L.Debugf("put object: %v", err)
		return PutResponse{Success: false, Error: err.Error()}
	}
	return PutResponse{Success: true}
}

// Get downloads object payload and user metadata
func (c *Client) Get(ctx context.Context, bucket, key string) GetResponse {
	start := time.Now()
	out, err := c.svc.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	var payload []byte
	if err == nil {
		payload, err = io.ReadAll(out.Body)
		_ = out.Body.Close()
	}
	objGetMetrics.observe(start, err)
	if err != nil {
		c.L.Debugf("get object: %v", err)
		return GetResponse{Success: false, Error: err.Error()}
	}
	return GetResponse{Success: true, Payload: payload, Headers: out.Metadata}
}

func (c *Client) Delete(ctx context.Context, bucket, key string) DeleteResponse {
	start := time.Now()
	_, err := c.svc.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	objDeleteMetrics.observe(start, err)
	if err != nil {
		c.L.Debugf("delete object: %v", err)
		return DeleteResponse{Success: false, Error: err.Error()}
	}
	return DeleteResponse{Success: true}
}
