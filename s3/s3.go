// Package s3 is a storage client facade over the S3 gateway protocol.
// It follows the same tagged response contract as the native facade.
package s3

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3manager "github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"

	"github.com/insolar/frostload"
)

const DefaultRegion = "us-east-1"

type options struct {
	accessKey     string
	secretKey     string
	region        string
	dialTimeout   time.Duration
	streamTimeout time.Duration
	dump          bool
	logger        *frostload.Logger
}

// Option configures Connect
type Option func(*options)

// WithCredentials sets static access keys, shared aws config is used otherwise
func WithCredentials(accessKey, secretKey string) Option {
	return func(o *options) {
		o.accessKey = accessKey
		o.secretKey = secretKey
	}
}

func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

func WithDialTimeout(d time.Duration) Option {
	return func(o *options) { o.dialTimeout = d }
}

func WithStreamTimeout(d time.Duration) Option {
	return func(o *options) { o.streamTimeout = d }
}

func WithDumpTransport(dump bool) Option {
	return func(o *options) { o.dump = dump }
}

func WithLogger(l *frostload.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Client of one S3 gateway
type Client struct {
	endpoint string
	svc      *s3.Client
	uploader *s3manager.Uploader
	L        *frostload.Logger
}

// Connect builds a client, no requests are sent
func Connect(endpoint string, opts ...Option) (*Client, error) {
	o := options{region: DefaultRegion}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = frostload.NewNopLogger()
	}
	if endpoint == "" {
		return nil, errors.New("empty s3 endpoint")
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "http://" + endpoint
	}
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(o.region),
		// buildable client lets shared config add a custom CA bundle
		config.WithHTTPClient(newHTTPClient(o.dialTimeout, o.streamTimeout)),
		// a failed request is a failed iteration, no retries
		config.WithRetryMaxAttempts(1),
	}
	if o.accessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.accessKey, o.secretKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}
	cfg.BaseEndpoint = aws.String(endpoint)
	if o.dump {
		cfg.HTTPClient = frostload.NewDumpHTTPClient(cfg.HTTPClient)
	}

	svc := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})
	return &Client{
		endpoint: endpoint,
		svc:      svc,
		uploader: s3manager.NewUploader(svc),
		L:        o.logger.With("endpoint", endpoint),
	}, nil
}

func newHTTPClient(dialTimeout, streamTimeout time.Duration) *awshttp.BuildableClient {
	c := awshttp.NewBuildableClient().
		WithTransportOptions(func(t *http.Transport) {
			frostload.TuneHTTPTransport(t, streamTimeout)
		}).
		WithTimeout(streamTimeout)
	if dialTimeout > 0 {
		c = c.WithDialerOptions(func(d *net.Dialer) {
			d.Timeout = dialTimeout
		})
	}
	return c
}
