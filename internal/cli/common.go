package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/dimu/internal/config"
	"github.com/roach88/dimu/internal/store"
)

// RunView is the JSON form of a stored run.
type RunView struct {
	ID               string `json:"id"`
	Seq              int64  `json:"seq"`
	Label            string `json:"label"`
	Events           int64  `json:"events"`
	Objects          int    `json:"objects"`
	ConfigDigest     string `json:"config_digest"`
	CollectionDigest string `json:"collection_digest"`
	ToolVersion      string `json:"tool_version"`
	CreatedAt        string `json:"created_at"`
}

func viewOf(r store.Run) RunView {
	return RunView{
		ID:               r.ID,
		Seq:              r.Seq,
		Label:            r.Label,
		Events:           r.Events,
		Objects:          r.Objects,
		ConfigDigest:     r.ConfigDigest,
		CollectionDigest: r.CollectionDigest,
		ToolVersion:      r.ToolVersion,
		CreatedAt:        r.CreatedAt,
	}
}

func (v RunView) String() string {
	return fmt.Sprintf("run %s (seq %d, %q): %d events, %d objects, digest %s",
		v.ID, v.Seq, v.Label, v.Events, v.Objects, shortDigest(v.CollectionDigest))
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}

// loadConfig reads path, or returns the validated defaults when path is
// empty.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		cfg := config.Default()
		return cfg, cfg.Validate()
	}
	if _, err := os.Stat(path); err != nil {
		return config.Config{}, fmt.Errorf("config file not found: %s", path)
	}
	return config.Load(path)
}

// openExistingStore opens a database that must already exist.
func openExistingStore(path string, opts ...store.Option) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("database not found: %s", path)
	}
	return store.Open(path, opts...)
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrRunNotFound) || errors.Is(err, os.ErrNotExist)
}
