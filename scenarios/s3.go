package scenarios

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/insolar/frostload"
	"github.com/insolar/frostload/s3"
)

type S3Data struct {
	Client  *s3.Client
	Bucket  string
	Payload []byte
}

// S3 puts uuid named objects into a bucket and reads them back
type S3 struct {
	base
}

func (s *S3) Setup(ctx context.Context, cfg frostload.RunnerConfig) (interface{}, error) {
	l := s.setupLogger(NameS3, cfg)
	t := cfg.Target
	payload, err := frostload.LoadPayload(t.PayloadFile, t.PayloadSizeKB)
	if err != nil {
		return nil, err
	}
	opts := []s3.Option{
		s3.WithDialTimeout(t.DialTimeout),
		s3.WithStreamTimeout(t.StreamTimeout),
		s3.WithDumpTransport(cfg.DumpTransport),
		s3.WithLogger(l),
	}
	if t.Region != "" {
		opts = append(opts, s3.WithRegion(t.Region))
	}
	if t.AccessKey != "" {
		opts = append(opts, s3.WithCredentials(t.AccessKey, t.SecretKey))
	}
	c, err := s3.Connect(t.Endpoint, opts...)
	if err != nil {
		return nil, err
	}
	bucket := t.Bucket
	if bucket == "" {
		bucket = "frostload-" + uuid.New().String()
		res := c.CreateBucket(ctx, bucket, s3.BucketParams{})
		if !res.Success {
			return nil, errors.Errorf("create bucket: %s", res.Error)
		}
		l.Infof("created bucket %s", bucket)
	}
	return &S3Data{Client: c, Bucket: bucket, Payload: payload}, nil
}

func (s *S3) Do(ctx context.Context, data interface{}) frostload.DoResult {
	d := data.(*S3Data)
	key := uuid.New().String()
	sent := int64(len(d.Payload))
	put := d.Client.Put(ctx, d.Bucket, key, uniqueHeaders(), d.Payload)
	if !put.Success {
		s.L.Infof("put object: %s", put.Error)
		return frostload.DoResult{RequestLabel: NameS3, Error: "put object: " + put.Error}
	}
	get := d.Client.Get(ctx, d.Bucket, key)
	if !get.Success {
		s.L.Infof("get object: %s", get.Error)
		return frostload.DoResult{RequestLabel: NameS3, Error: "get object: " + get.Error, BytesOut: sent}
	}
	return frostload.DoResult{RequestLabel: NameS3, BytesOut: sent, BytesIn: int64(len(get.Payload))}
}

func (s *S3) Teardown(context.Context, interface{}) error {
	return nil
}

func (s *S3) Clone(r *frostload.Runner) frostload.Scenario {
	c := &S3{}
	cloneInto(c, s, r)
	c.L = r.L.With("scenario", NameS3)
	return c
}
