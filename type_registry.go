package frostload

import (
	"fmt"
	"sort"
	"sync"
)

var (
	scenarioRegistryMu sync.RWMutex
	scenarioRegistry   = make(map[string]Scenario)
)

// RegisterScenario makes scenario prototype available by name, usually from init()
func RegisterScenario(name string, s Scenario) {
	scenarioRegistryMu.Lock()
	defer scenarioRegistryMu.Unlock()
	scenarioRegistry[name] = s
}

// ScenarioFromString returns registered scenario prototype
func ScenarioFromString(name string) (Scenario, error) {
	scenarioRegistryMu.RLock()
	defer scenarioRegistryMu.RUnlock()
	s, ok := scenarioRegistry[name]
	if !ok {
		return nil, fmt.Errorf(errUnknownScenario, name)
	}
	return s, nil
}

// ScenarioNames sorted names of registered scenarios
func ScenarioNames() []string {
	scenarioRegistryMu.RLock()
	defer scenarioRegistryMu.RUnlock()
	names := make([]string, 0, len(scenarioRegistry))
	for name := range scenarioRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
