package selection

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dimu/internal/config"
	"github.com/roach88/dimu/internal/event"
)

// forward returns a particle at eta ~ -3 with the given match level.
func forward(match int) *event.Particle {
	return &event.Particle{Px: 1, Pz: -10, Charge: 1, Match: match, Mother: -1, Label: -1}
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Triggers = []config.TriggerClass{
		{Name: "CINT7", PtCut: event.MatchNone},
		{Name: "CMSL7", Label: "single", PtCut: event.MatchLowPt},
		{Name: "CMUL7", PtCut: event.MatchLowPt, Dimuon: true},
	}
	return cfg
}

func TestTriggers(t *testing.T) {
	c := NewCuts(testConfig(), nil)

	ev := &event.Event{Triggers: []string{"CMUL7-B-NOPF-MUFAST", "CINT7", "CMSL7X"}}
	assert.Equal(t, []string{"CINT7", "CMUL7"}, c.Triggers(ev))

	ev = &event.Event{Triggers: []string{"CMSL7-B"}}
	assert.Equal(t, []string{"single"}, c.Triggers(ev))

	assert.Empty(t, c.Triggers(&event.Event{}))
}

func TestIsEventSelected(t *testing.T) {
	c := NewCuts(testConfig(), nil)

	assert.True(t, c.IsEventSelected(&event.Event{PhysicsSelected: true, Triggers: []string{"CINT7"}}))
	assert.False(t, c.IsEventSelected(&event.Event{PhysicsSelected: false, Triggers: []string{"CINT7"}}))
	assert.False(t, c.IsEventSelected(&event.Event{PhysicsSelected: true, Triggers: []string{"CEMC7"}}))

	cfg := testConfig()
	cfg.PhysicsSelection = false
	c = NewCuts(cfg, nil)
	assert.True(t, c.IsEventSelected(&event.Event{Triggers: []string{"CINT7"}}))
}

func TestAcceptTrack(t *testing.T) {
	cfg := testConfig()
	cfg.Tracks.PtMin = 0.5
	cfg.Tracks.MinMatch = event.MatchAllPt
	c := NewCuts(cfg, nil)

	assert.True(t, c.AcceptTrack(forward(event.MatchAllPt)))
	assert.False(t, c.AcceptTrack(forward(event.MatchNone)), "not trigger matched")

	central := forward(event.MatchHighPt)
	central.Pz = -5
	assert.False(t, c.AcceptTrack(central), "eta above acceptance")

	soft := forward(event.MatchHighPt)
	soft.Px, soft.Pz = 0.2, -2
	assert.False(t, c.AcceptTrack(soft), "pT below cut")
}

func TestPairMatchesTrigger(t *testing.T) {
	c := NewCuts(testConfig(), nil)
	low, none := forward(event.MatchLowPt), forward(event.MatchNone)

	assert.True(t, c.PairMatchesTrigger("CINT7", none, none))
	assert.True(t, c.PairMatchesTrigger("single", low, none))
	assert.False(t, c.PairMatchesTrigger("single", none, none))
	assert.True(t, c.PairMatchesTrigger("CMUL7", low, low))
	assert.False(t, c.PairMatchesTrigger("CMUL7", low, none))
	assert.False(t, c.PairMatchesTrigger("CMSL7", low, low), "matched by label, not class name")
}

func TestNotifyRunAppliesOverrides(t *testing.T) {
	cfg := testConfig()
	cfg.RunOverrides = []config.RunOverride{{
		FirstRun: 100,
		LastRun:  199,
		Triggers: []config.TriggerClass{{Name: "CMUL7", PtCut: event.MatchHighPt, Dimuon: true}},
		Tracks:   &config.TrackCuts{EtaMin: -3.5, EtaMax: -3.2},
	}}

	var logs bytes.Buffer
	c := NewCuts(cfg, slog.New(slog.NewTextHandler(&logs, nil)))
	p := forward(event.MatchLowPt)

	c.NotifyRun(50)
	assert.True(t, c.AcceptTrack(p))
	assert.True(t, c.PairMatchesTrigger("CMUL7", p, p))

	c.NotifyRun(150)
	assert.False(t, c.AcceptTrack(p), "override narrows eta")
	assert.False(t, c.PairMatchesTrigger("CMUL7", p, p), "override raises pT cut")
	assert.Empty(t, c.Triggers(&event.Event{Triggers: []string{"CINT7"}}))

	c.NotifyRun(250)
	assert.True(t, c.AcceptTrack(p))
	require.Contains(t, logs.String(), "run=150")
	assert.Contains(t, logs.String(), "override=0")
}

func TestAcceptGenerated(t *testing.T) {
	mu := event.Particle{PDG: 13, Status: 1, Px: 1, Pz: -10}
	assert.True(t, AcceptGenerated(&mu))

	anti := mu
	anti.PDG = -13
	assert.True(t, AcceptGenerated(&anti))

	pion := mu
	pion.PDG = 211
	assert.False(t, AcceptGenerated(&pion))

	decayed := mu
	decayed.Status = 21
	assert.False(t, AcceptGenerated(&decayed))

	central := mu
	central.Pz = -1
	assert.False(t, AcceptGenerated(&central))
}
