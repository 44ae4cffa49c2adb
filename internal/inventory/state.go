package inventory

import (
	"encoding/json"
	"fmt"
	"os"
)

// loadHostState reads the plugin state file. A missing file means no
// plugin is active and none auto-updates.
func loadHostState(path string) (*hostState, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &hostState{}, nil
	}
	if err != nil {
		return nil, err
	}
	var st hostState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &st, nil
}

// loadUpdateIndex reads the available-updates index (slug -> version). A
// missing file means no updates are known.
func loadUpdateIndex(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	idx := make(map[string]string)
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return idx, nil
}

func toSet(ss []string) map[string]bool {
	m := make(map[string]bool, len(ss))
	for _, s := range ss {
		m[s] = true
	}
	return m
}
