package frostload

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSharedDataSlice(t *testing.T) {
	s := NewSharedDataSlice(nil)
	require.Nil(t, s.Get())
	s.Add("a")
	s.Add("b")
	require.Equal(t, 2, s.Len())
	require.Equal(t, []interface{}{"a", "b", "a", "b"}, []interface{}{s.Get(), s.Get(), s.Get(), s.Get()})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				require.NotNil(t, s.Get())
			}
		}()
	}
	wg.Wait()
}

func TestScenarioRegistry(t *testing.T) {
	RegisterScenario("mock", newMockScenario(&mockState{}))
	s, err := ScenarioFromString("mock")
	require.NoError(t, err)
	require.IsType(t, &MockScenario{}, s)
	require.Contains(t, ScenarioNames(), "mock")

	_, err = ScenarioFromString("absent")
	require.EqualError(t, err, "unknown scenario: absent")
}

func TestLoadPayload(t *testing.T) {
	p, err := LoadPayload("", 2)
	require.NoError(t, err)
	require.Len(t, p, 2048)

	path := filepath.Join(t.TempDir(), "payload.bin")
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0600))
	p, err = LoadPayload(path, 100)
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), p)

	_, err = LoadPayload(filepath.Join(t.TempDir(), "absent"), 0)
	require.Error(t, err)
	_, err = LoadPayload("", -1)
	require.Error(t, err)
}
