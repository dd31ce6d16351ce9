package frostload

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writePercs(t *testing.T, rows [][]string) string {
	path := filepath.Join(t.TempDir(), "percs.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	w := csv.NewWriter(f)
	require.NoError(t, w.Write(PercsCsvHeader))
	require.NoError(t, w.WriteAll(rows))
	require.NoError(t, f.Close())
	return path
}

func TestCommonRenderPercs(t *testing.T) {
	path := writePercs(t, [][]string{
		{"native", "1", "2", "40", "10", "20", "30"},
		{"native", "2", "4", "80", "11", "22", "33"},
	})
	data, err := PercsChart(path, "Response times")
	require.NoError(t, err)
	out := filepath.Join(t.TempDir(), "responses.html")
	require.NoError(t, RenderEChart(data, out))
	info, err := os.Stat(out)
	require.NoError(t, err)
	require.NotZero(t, info.Size())
}

func TestCommonRenderErr(t *testing.T) {
	_, err := PercsChart(writePercs(t, nil), "Response times")
	require.Error(t, err)
	_, err = PercsChart(writePercs(t, [][]string{{"native", "1", "x", "1", "1", "1", "1"}}), "Response times")
	require.Error(t, err)
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	m.summarize()
	require.Zero(t, m.Rate)

	begin := time.Now()
	for i := 0; i < 10; i++ {
		res := IterationResult{
			Begin:   begin.Add(time.Duration(i) * 100 * time.Millisecond),
			Elapsed: 10 * time.Millisecond,
		}
		res.End = res.Begin.Add(res.Elapsed)
		if i%5 == 0 {
			res.DoResult.Error = "put object: status 403"
		}
		m.observe(res)
	}
	m.summarize()
	require.EqualValues(t, 10, m.Iterations)
	require.EqualValues(t, 2, m.Failed)
	require.Equal(t, []string{"put object: status 403"}, m.Errors)
	require.InDelta(t, 0.8, m.Success, 0.001)
	require.Equal(t, 10*time.Millisecond, m.Latency.Max)
	require.InDelta(t, 11.1, m.Rate, 0.1)
}
