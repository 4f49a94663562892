// Package harness runs end-to-end scenarios through the full pipeline.
//
// A scenario names a configuration, a worker count, a list of events and
// assertions on the merged aggregate. The harness processes the events
// with RunWorkers and the default collaborators, persists the merged
// collection to a fresh in-memory store, reloads it, and evaluates the
// assertions against the reloaded copy, so every scenario also covers the
// storage round trip.
//
// # Scenario Format
//
//	name: two_workers_same_pair
//	description: "Both workers record the same pair"
//	workers: 2
//	merge: tree            # fold (default) or tree
//	config:                # inline configuration, or config_file: path
//	  thresholds: [5, 2]
//	events:                # inline events, or events_file: path.jsonl
//	  - run: 1
//	    number: 1
//	    triggers: [CMUL7-B-NOPF-MUFAST]
//	    physics_selected: true
//	    tracks: [...]
//	assertions:
//	  - type: counter
//	    path: /CMUL7
//	    value: 2
//	  - type: weight
//	    path: /CMUL7/trackletDistCuts_none/Unidentified/OS
//	    x: [2.3, -3.1, 1.2, 3.1, 15, 10]
//	    weight: 2
//	  - type: paths
//	    paths: [/CMUL7, /CMUL7/trackletDistCuts_none/Unidentified/OS]
//
// Relative config_file and events_file paths are resolved against the
// scenario file's directory.
//
// # Assertion Types
//
//   - counter: the counter at path (name defaults to nevents) has value
//   - weight: the histogram at path (name defaults to DimuSparse) holds
//     weight in the bin containing x, or in total when x is omitted;
//     entries checks the fill count the same way
//   - paths: the aggregate holds objects under exactly these paths
//
// # Golden Files
//
// RunWithGolden compares a canonical JSON summary of the aggregate with
// testdata/golden/{name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
