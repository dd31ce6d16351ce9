/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package frostload

import (
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/pkg/errors"
)

// handleShutdownSignal cancels the run gracefully on SIGINT/SIGTERM
func (r *Runner) handleShutdownSignal() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-r.TimeoutCtx.Done():
			return
		case <-sigs:
			r.L.Infof("exit signal received, exiting")
			if r.Cfg.GoroutinesDump {
				buf := make([]byte, 1<<20)
				stacklen := runtime.Stack(buf, true)
				r.L.Infof("=== received SIGTERM ===\n*** goroutine dump...\n%s\n*** end\n", buf[:stacklen])
			}
			r.CancelFunc()
		}
	}()
}

// CreateFileOrReplace creates file and missing parent dirs, truncates existing one
func CreateFileOrReplace(fname string) (*os.File, error) {
	fpath, err := filepath.Abs(fname)
	if err != nil {
		return nil, errors.Wrapf(err, "bad file path %s", fname)
	}
	if err := os.MkdirAll(filepath.Dir(fpath), 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create dir for %s", fname)
	}
	file, err := os.Create(fpath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create %s", fname)
	}
	return file, nil
}

func MaxRPS(array []float64) float64 {
	if len(array) == 0 {
		return 1
	}
	var max = array[0]
	for _, value := range array {
		if max < value {
			max = value
		}
	}
	return max
}
