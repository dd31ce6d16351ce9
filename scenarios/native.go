package scenarios

import (
	"context"

	"github.com/pkg/errors"

	"github.com/insolar/frostload"
	"github.com/insolar/frostload/native"
)

// NativeData is created once by setup and shared by all iterations
type NativeData struct {
	Client      *native.Client
	ContainerID string
	Payload     []byte
}

// Native creates a container once, then every iteration puts an object and reads it back
type Native struct {
	base
}

func (s *Native) Setup(ctx context.Context, cfg frostload.RunnerConfig) (interface{}, error) {
	l := s.setupLogger(NameNative, cfg)
	params, err := native.ParseContainerParams(cfg.Target.Container)
	if err != nil {
		return nil, err
	}
	payload, err := frostload.LoadPayload(cfg.Target.PayloadFile, cfg.Target.PayloadSizeKB)
	if err != nil {
		return nil, err
	}
	c, err := connectNative(cfg.Target, cfg.DumpTransport, l)
	if err != nil {
		return nil, err
	}
	res := c.PutContainer(ctx, params)
	if !res.Success {
		return nil, errors.Errorf("put container: %s", res.Error)
	}
	l.Infof("created container %s", res.ContainerID)
	return &NativeData{Client: c, ContainerID: res.ContainerID, Payload: payload}, nil
}

func (s *Native) Do(ctx context.Context, data interface{}) frostload.DoResult {
	d := data.(*NativeData)
	put := d.Client.Put(ctx, d.ContainerID, uniqueHeaders(), d.Payload)
	if !put.Success {
		s.L.Infof("put object: %s", put.Error)
		return frostload.DoResult{RequestLabel: NameNative, Error: "put object: " + put.Error}
	}
	return readBack(ctx, s.L, NameNative, d.Client, d.ContainerID, put.ObjectID, int64(len(d.Payload)))
}

func (s *Native) Teardown(context.Context, interface{}) error {
	return nil
}

func (s *Native) Clone(r *frostload.Runner) frostload.Scenario {
	c := &Native{}
	cloneInto(c, s, r)
	c.L = r.L.With("scenario", NameNative)
	return c
}

// readBack gets just written object
func readBack(ctx context.Context, l *frostload.Logger, label string, c *native.Client, cid, oid string, sent int64) frostload.DoResult {
	get := c.Get(ctx, cid, oid)
	if !get.Success {
		l.Infof("get object: %s", get.Error)
		return frostload.DoResult{RequestLabel: label, Error: "get object: " + get.Error, BytesOut: sent}
	}
	return frostload.DoResult{RequestLabel: label, BytesOut: sent, BytesIn: int64(len(get.Payload))}
}
