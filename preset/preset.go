// Package preset prepares containers and objects before a read load run
// and saves their identifiers to a json file.
package preset

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/insolar/frostload"
	"github.com/insolar/frostload/native"
)

const (
	MaxWorkers = 50
	// UniqueHeader attribute makes every preloaded object distinct
	UniqueHeader = "unique_header"
)

var (
	ErrNoContainers = errors.New("no containers to work with")
	ErrNoObjects    = errors.New("no objects were uploaded")
)

// Storage is the part of a storage client used by preset
type Storage interface {
	PutContainer(ctx context.Context, p native.ContainerParams) native.PutContainerResponse
	Put(ctx context.Context, containerID string, headers map[string]string, payload []byte) native.PutResponse
}

// Config of a preset run
type Config struct {
	// Containers to create
	Containers int
	// Objects to preload into every container
	Objects int
	// SizeKB of every object
	SizeKB int
	// Workers uploading concurrently, capped by MaxWorkers
	Workers int
	// Out json file with result
	Out string
	// Update reuses containers from existing Out file instead of creating new
	Update bool
	// IgnoreErrors doesn't fail when nothing was created
	IgnoreErrors bool
	// Container params of new containers
	Container native.ContainerParams
}

// ObjectRef identifies a preloaded object
type ObjectRef struct {
	Container string `json:"container"`
	Object    string `json:"object"`
}

// Result is saved to Out file
type Result struct {
	Containers []string    `json:"containers"`
	Objects    []ObjectRef `json:"objects"`
	ObjSize    string      `json:"obj_size"`
}

func (c Config) workers() int {
	if c.Workers <= 0 || c.Workers > MaxWorkers {
		return MaxWorkers
	}
	return c.Workers
}

// Run creates containers, uploads objects and writes result to cfg.Out
func Run(ctx context.Context, cfg Config, s Storage, l *frostload.Logger) (*Result, error) {
	if l == nil {
		l = frostload.NewNopLogger()
	}
	res := &Result{
		Containers: []string{},
		Objects:    []ObjectRef{},
		ObjSize:    fmt.Sprintf("%d Kb", cfg.SizeKB),
	}
	if cfg.Update {
		prev, err := LoadResult(cfg.Out)
		if err != nil {
			return nil, err
		}
		res.Containers = prev.Containers
	} else {
		l.Infof("create containers: %d", cfg.Containers)
		cids, err := createContainers(ctx, cfg, s, l)
		if err != nil {
			return nil, err
		}
		res.Containers = cids
		l.Infof("create containers: completed")
	}
	l.Infof("containers: %v", res.Containers)
	if len(res.Containers) == 0 && !cfg.IgnoreErrors {
		return nil, ErrNoContainers
	}

	payload, err := frostload.LoadPayload("", cfg.SizeKB)
	if err != nil {
		return nil, err
	}
	for _, cid := range res.Containers {
		l.Infof("upload objects for container %s", cid)
		objs, err := uploadObjects(ctx, cfg, s, l, cid, payload)
		if err != nil {
			return nil, err
		}
		res.Objects = append(res.Objects, objs...)
	}
	if cfg.Objects > 0 && len(res.Objects) == 0 && !cfg.IgnoreErrors {
		return nil, ErrNoObjects
	}

	if cfg.Out != "" {
		if err := res.Save(cfg.Out); err != nil {
			return nil, err
		}
	}
	l.Infof("total containers: %d, total objects: %d", len(res.Containers), len(res.Objects))
	return res, nil
}

func createContainers(ctx context.Context, cfg Config, s Storage, l *frostload.Logger) ([]string, error) {
	var (
		mu   sync.Mutex
		cids = make([]string, 0, cfg.Containers)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers())
	for i := 0; i < cfg.Containers; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r := s.PutContainer(gctx, cfg.Container)
			if !r.Success {
				l.Errorf("create container: %s", r.Error)
				return nil
			}
			mu.Lock()
			cids = append(cids, r.ContainerID)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cids, nil
}

func uploadObjects(ctx context.Context, cfg Config, s Storage, l *frostload.Logger, cid string, payload []byte) ([]ObjectRef, error) {
	var (
		mu   sync.Mutex
		objs = make([]ObjectRef, 0, cfg.Objects)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers())
	for i := 0; i < cfg.Objects; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r := s.Put(gctx, cid, map[string]string{UniqueHeader: uuid.New().String()}, payload)
			if !r.Success {
				l.Errorf("put object: %s", r.Error)
				return nil
			}
			mu.Lock()
			objs = append(objs, ObjectRef{Container: cid, Object: r.ObjectID})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return objs, nil
}

// Save writes indented json result
func (r *Result) Save(path string) error {
	data, err := jsoniter.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	f, err := frostload.CreateFileOrReplace(path)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "write preset result %s", path)
	}
	return f.Close()
}

// LoadResult reads preset result file
func LoadResult(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read preset file")
	}
	var r Result
	if err := jsoniter.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrapf(err, "bad preset file %s", path)
	}
	return &r, nil
}
