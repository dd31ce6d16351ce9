package frostload

import (
	"sync"
)

// SharedDataSlice is a round-robin pool of items shared between virtual users
type SharedDataSlice struct {
	*sync.Mutex
	Index int
	Data  []interface{}
}

func NewSharedDataSlice(data []interface{}) *SharedDataSlice {
	return &SharedDataSlice{
		Mutex: &sync.Mutex{},
		Index: 0,
		Data:  data,
	}
}

// Get returns next item, nil for empty pool
func (m *SharedDataSlice) Get() interface{} {
	m.Lock()
	defer m.Unlock()
	if len(m.Data) == 0 {
		return nil
	}
	if m.Index > len(m.Data)-1 {
		m.Index = 0
	}
	data := m.Data[m.Index]
	m.Index++
	return data
}

func (m *SharedDataSlice) Add(d interface{}) {
	m.Lock()
	defer m.Unlock()
	m.Data = append(m.Data, d)
}

func (m *SharedDataSlice) Len() int {
	m.Lock()
	defer m.Unlock()
	return len(m.Data)
}
