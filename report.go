/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package frostload

import (
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type Report struct {
	runId               string
	runName             string
	metricsLogFilename  string
	percsReportFilename string
	percLogFilename     string
	metricsLogFile      *csv.Writer
	percLogFile         *csv.Writer
	closers             []func() error
	reportOptions       *ReportOptions
	L                   *Logger
}

func NewReport(cfg *RunnerConfig) (*Report, error) {
	tn := time.Now().Unix()
	runId := uuid.New().String()
	dir := cfg.ReportOptions.Dir
	metricsLogFilename := filepath.Join(dir, fmt.Sprintf(MetricsLogFile, cfg.Name, runId, tn))
	percsReportFilename := filepath.Join(dir, fmt.Sprintf(ReportGraphFile, cfg.Name, runId, tn))
	percLogFilename := filepath.Join(dir, fmt.Sprintf(PercsLogFile, cfg.Name, runId, tn))
	metricsFile, err := CreateFileOrReplace(metricsLogFilename)
	if err != nil {
		return nil, err
	}
	percFile, err := CreateFileOrReplace(percLogFilename)
	if err != nil {
		_ = metricsFile.Close()
		return nil, err
	}
	r := &Report{
		runId:               runId,
		runName:             cfg.Name,
		metricsLogFilename:  metricsLogFilename,
		percsReportFilename: percsReportFilename,
		percLogFilename:     percLogFilename,
		metricsLogFile:      csv.NewWriter(metricsFile),
		percLogFile:         csv.NewWriter(percFile),
		closers:             []func() error{metricsFile.Close, percFile.Close},
		reportOptions:       cfg.ReportOptions,
		L:                   NewLogger(cfg).With("report", cfg.Name),
	}
	_ = r.metricsLogFile.Write(ResultsCsvHeader)
	_ = r.percLogFile.Write(PercsCsvHeader)
	return r, nil
}

// RunID unique id of a run, part of report file names
func (r *Report) RunID() string {
	return r.runId
}

// Files returns paths of produced report files
func (r *Report) Files() []string {
	files := []string{r.metricsLogFilename, r.percLogFilename}
	if r.reportOptions.HTML {
		files = append(files, r.percsReportFilename)
	}
	return files
}

func (r *Report) plot() {
	if r.reportOptions.HTML {
		r.L.Infof("reporting graphs: %s", r.percLogFilename)
		chart, err := PercsChart(r.percLogFilename, r.runName)
		if err != nil {
			r.L.Error(err)
			return
		}
		if err := RenderEChart(chart, r.percsReportFilename); err != nil {
			r.L.Error(err)
		}
	}
}

func (r *Report) flushLogs() {
	r.percLogFile.Flush()
	r.metricsLogFile.Flush()
	for _, c := range r.closers {
		if err := c(); err != nil {
			r.L.Error(err)
		}
	}
	r.closers = nil
}

func (r *Report) writeResultEntry(res IterationResult, errorMsg string) {
	_ = r.metricsLogFile.Write([]string{
		res.DoResult.RequestLabel,
		strconv.Itoa(res.VU),
		strconv.FormatInt(res.Begin.UnixNano(), 10),
		strconv.FormatInt(res.End.UnixNano(), 10),
		res.Elapsed.String(),
		strconv.Itoa(res.DoResult.StatusCode),
		errorMsg,
	})
}

func (r *Report) writePercentilesEntry(tick int, res IterationResult, tickMetrics *Metrics) {
	_ = r.percLogFile.Write([]string{
		res.DoResult.RequestLabel,
		strconv.Itoa(tick),
		strconv.Itoa(res.ActiveVUs),
		strconv.Itoa(int(tickMetrics.Rate)),
		strconv.Itoa(int(tickMetrics.Latency.P50.Milliseconds())),
		strconv.Itoa(int(tickMetrics.Latency.P95.Milliseconds())),
		strconv.Itoa(int(tickMetrics.Latency.P99.Milliseconds())),
	})
}
