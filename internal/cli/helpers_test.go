package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dimu/internal/collection"
	"github.com/roach88/dimu/internal/event"
	"github.com/roach88/dimu/internal/source"
	"github.com/roach88/dimu/internal/store"
	"github.com/roach88/dimu/internal/testutil"
)

const dimuonTrigger = "CMUL7-B-NOPF-MUFAST"

// writeEvents writes events as JSON Lines into dir and returns the path.
func writeEvents(t *testing.T, dir, name string, events ...*event.Event) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := source.NewWriter(f)
	for _, ev := range events {
		require.NoError(t, w.Write(ev))
	}
	return path
}

func dimuonEvents(n int) []*event.Event {
	events := make([]*event.Event, n)
	for i := range events {
		events[i] = testutil.DimuonEvent(1, i+1, dimuonTrigger)
	}
	return events
}

// execute runs cmd with args and returns stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// decodeResponse decodes a JSON CLIResponse and re-decodes its data into v.
func decodeResponse(t *testing.T, out string, v any) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	if v != nil && resp.Data != nil {
		data, err := json.Marshal(resp.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, v))
	}
	return resp
}

// processEvents runs the run command on n dimuon events with a fixed id.
func processEvents(t *testing.T, db, id string, n int) {
	t.Helper()
	input := writeEvents(t, filepath.Dir(db), id+".jsonl", dimuonEvents(n)...)

	cmd := newRunCommand(&RunOptions{
		RootOptions: &RootOptions{Format: "json"},
		IDGenerator: testutil.NewFixedRunID(id),
	})

	_, err := execute(t, cmd, "--db", db, "--label", id, input)
	require.NoError(t, err)
}

func loadRun(t *testing.T, db, id string) *collection.Collection {
	t.Helper()
	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()
	coll, err := st.LoadCollection(context.Background(), id)
	require.NoError(t, err)
	return coll
}
