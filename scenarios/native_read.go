package scenarios

import (
	"context"

	"github.com/pkg/errors"

	"github.com/insolar/frostload"
	"github.com/insolar/frostload/native"
	"github.com/insolar/frostload/preset"
)

type NativeReadData struct {
	Client  *native.Client
	Objects *frostload.SharedDataSlice
}

// NativeRead reads preset objects round-robin
type NativeRead struct {
	base
}

func (s *NativeRead) Setup(_ context.Context, cfg frostload.RunnerConfig) (interface{}, error) {
	l := s.setupLogger(NameNativeRead, cfg)
	if cfg.Target.PresetFile == "" {
		return nil, errors.New("target preset_file is required")
	}
	res, err := preset.LoadResult(cfg.Target.PresetFile)
	if err != nil {
		return nil, err
	}
	if len(res.Objects) == 0 {
		return nil, preset.ErrNoObjects
	}
	objs := make([]interface{}, 0, len(res.Objects))
	for _, o := range res.Objects {
		objs = append(objs, o)
	}
	c, err := connectNative(cfg.Target, cfg.DumpTransport, l)
	if err != nil {
		return nil, err
	}
	l.Infof("loaded %d preset objects", len(objs))
	return &NativeReadData{Client: c, Objects: frostload.NewSharedDataSlice(objs)}, nil
}

func (s *NativeRead) Do(ctx context.Context, data interface{}) frostload.DoResult {
	d := data.(*NativeReadData)
	ref := d.Objects.Get().(preset.ObjectRef)
	return readBack(ctx, s.L, NameNativeRead, d.Client, ref.Container, ref.Object, 0)
}

func (s *NativeRead) Teardown(context.Context, interface{}) error {
	return nil
}

func (s *NativeRead) Clone(r *frostload.Runner) frostload.Scenario {
	c := &NativeRead{}
	cloneInto(c, s, r)
	c.L = r.L.With("scenario", NameNativeRead)
	return c
}
