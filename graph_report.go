/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package frostload

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/charts"
)

type ChartLine struct {
	XValues []float64
	YValues []float64
}

var percsColumns = map[string]int{
	"vus": 2,
	"rps": 3,
	"p50": 4,
	"p95": 5,
	"p99": 6,
}

func parsePercsData(path string) (map[string]*ChartLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	reader := csv.NewReader(f)
	percs := make(map[string]*ChartLine, len(percsColumns))
	for name := range percsColumns {
		percs[name] = &ChartLine{}
	}
	// skip csv header
	_, _ = reader.Read()

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) != len(PercsCsvHeader) {
			return nil, errors.New("malformed csv")
		}
		// seconds
		xValue, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, err
		}
		for name, col := range percsColumns {
			yValue, err := strconv.ParseFloat(record[col], 64)
			if err != nil {
				return nil, err
			}
			percs[name].XValues = append(percs[name].XValues, xValue)
			percs[name].YValues = append(percs[name].YValues, yValue)
		}
	}
	for _, v := range percs {
		if len(v.XValues) == 0 || len(v.YValues) == 0 {
			return nil, errors.New("empty csv, nothing to plot")
		}
	}
	return percs, nil
}

func PercsChart(path string, title string) (*charts.Line, error) {
	d, err := parsePercsData(path)
	if err != nil {
		return nil, err
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.DataZoomOpts{},
		charts.TitleOpts{Title: title},
		charts.XAxisOpts{Name: "Time (sec)"},
		charts.YAxisOpts{Name: "Response (ms)"},
	)
	line.AddXAxis(d["rps"].XValues)
	for _, k := range []string{"vus", "rps", "p50", "p95", "p99"} {
		line.AddYAxis(k, d[k].YValues, defaultMaxLabel(k)...)
	}
	return line, nil
}

func RenderEChart(data *charts.Line, name string) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return data.Render(f)
}

// draws max label for every line
func defaultMaxLabel(metric string) []charts.SeriesOptser {
	return []charts.SeriesOptser{
		charts.MPNameTypeItem{Name: "max " + metric, Type: "max"},
		charts.MPStyleOpts{Label: charts.LabelTextOpts{Show: true}},
	}
}
