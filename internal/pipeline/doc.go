// Package pipeline turns raw events into classified pair samples and fills
// them into a worker-owned collection.
//
// ARCHITECTURE:
//
// Per-event state machine:
//
//	Idle -> Selection -> Pairing -> Dispatch -> Idle
//
// 1. Selection asks the Authority whether the event enters the analysis and
// which trigger labels it fired. Rejected events return to Idle.
// 2. For each pass (reconstructed always, generated when the event carries
// simulation truth) the selected particles are annotated by the Resolver.
// 3. Pairing visits every unordered pair once.
// 4. Dispatch classifies the pair, computes its kinematics and tracklet
// counts, and fills one sample per trigger label and cut level at
// {trigger, cut level, pair type, charge}.
//
// Ownership:
//
// A Processor owns its Collection and is driven by exactly one goroutine.
// Finish hands the collection off; the processor refuses further events.
// RunWorkers runs one processor per goroutine over a round-robin share of
// the input and folds the handed-off collections into one aggregate.
//
// ERROR HANDLING: failures of a single entity, pair or object are logged and
// skipped. Event processing never aborts on them.
package pipeline
