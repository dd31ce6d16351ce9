package scenarios

import (
	"context"

	"github.com/pkg/errors"

	"github.com/insolar/frostload"
	"github.com/insolar/frostload/native"
)

type NativeOnsiteData struct {
	Client *native.Client
	Object *native.PreparedObject
	Size   int64
}

// NativeOnsite writes a prepared payload into an existing container, credential may be empty
type NativeOnsite struct {
	base
}

func (s *NativeOnsite) Setup(_ context.Context, cfg frostload.RunnerConfig) (interface{}, error) {
	l := s.setupLogger(NameNativeOnsite, cfg)
	if cfg.Target.ContainerID == "" {
		return nil, errors.New("target container_id is required")
	}
	payload, err := frostload.LoadPayload(cfg.Target.PayloadFile, cfg.Target.PayloadSizeKB)
	if err != nil {
		return nil, err
	}
	c, err := connectNative(cfg.Target, cfg.DumpTransport, l)
	if err != nil {
		return nil, err
	}
	return &NativeOnsiteData{
		Client: c,
		Object: c.Onsite(cfg.Target.ContainerID, payload),
		Size:   int64(len(payload)),
	}, nil
}

func (s *NativeOnsite) Do(ctx context.Context, data interface{}) frostload.DoResult {
	d := data.(*NativeOnsiteData)
	put := d.Object.Put(ctx, uniqueHeaders())
	if !put.Success {
		s.L.Infof("put object: %s", put.Error)
		return frostload.DoResult{RequestLabel: NameNativeOnsite, Error: "put object: " + put.Error}
	}
	return readBack(ctx, s.L, NameNativeOnsite, d.Client, d.Object.ContainerID(), put.ObjectID, d.Size)
}

func (s *NativeOnsite) Teardown(context.Context, interface{}) error {
	return nil
}

func (s *NativeOnsite) Clone(r *frostload.Runner) frostload.Scenario {
	c := &NativeOnsite{}
	cloneInto(c, s, r)
	c.L = r.L.With("scenario", NameNativeOnsite)
	return c
}
