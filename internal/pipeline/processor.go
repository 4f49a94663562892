package pipeline

import (
	"context"
	"log/slog"

	"github.com/roach88/dimu/internal/cascade"
	"github.com/roach88/dimu/internal/classify"
	"github.com/roach88/dimu/internal/collection"
	"github.com/roach88/dimu/internal/event"
	"github.com/roach88/dimu/internal/hist"
	"github.com/roach88/dimu/internal/ir"
	"github.com/roach88/dimu/internal/selection"
)

const bytesPerMB = 1 << 20

// Stats summarises what a processor did.
type Stats struct {
	Events   int64
	Rejected int64
	Pairs    int64
	Filtered int64
	Fills    int64
	Dropped  int64
	Errors   int64
}

// Processor is the per-worker event processor. It is driven by exactly
// one goroutine.
type Processor struct {
	authority  selection.Authority
	resolver   classify.Resolver
	classifier *classify.Classifier
	thresholds cascade.Thresholds
	allow      classify.AllowList
	levels     []string
	tmpl       *hist.Template
	factory    collection.Factory
	coll       *collection.Collection
	metrics    *Metrics
	logger     *slog.Logger
	worker     string

	state    State
	run      int
	haveRun  bool
	finished bool
	stats    Stats
}

// Option configures a Processor.
type Option func(*Processor)

// WithThresholds sets the tracklet-distance cuts. Default: none, so only
// the unconditional level is filled.
func WithThresholds(t cascade.Thresholds) Option {
	return func(p *Processor) {
		p.thresholds = t
	}
}

// WithAllowList restricts the recorded pair types. Default: all.
func WithAllowList(l classify.AllowList) Option {
	return func(p *Processor) {
		p.allow = l
	}
}

// WithTemplate sets the pair histogram template. Default: the dimuon
// template with a V0M centrality axis.
func WithTemplate(t *hist.Template) Option {
	return func(p *Processor) {
		p.tmpl = t
	}
}

// WithMetrics enables prometheus diagnostics.
func WithMetrics(m *Metrics) Option {
	return func(p *Processor) {
		p.metrics = m
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) {
		p.logger = l
	}
}

// WithWorker names the processor in logs and metrics. Default: "0".
func WithWorker(name string) Option {
	return func(p *Processor) {
		p.worker = name
	}
}

// New creates a Processor with an empty collection.
func New(authority selection.Authority, resolver classify.Resolver, opts ...Option) *Processor {
	p := &Processor{
		authority: authority,
		resolver:  resolver,
		coll:      collection.New(),
		logger:    slog.Default(),
		worker:    "0",
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.tmpl == nil {
		p.tmpl = NewDimuonTemplate("V0M")
	}
	p.factory = ObjectFactory(p.tmpl)
	p.classifier = classify.New(resolver, p.allow)
	p.levels = p.thresholds.Labels()
	p.logger = p.logger.With("worker", p.worker)

	p.logger.Info("processor configured",
		"tracklet_thresholds", p.thresholds.String(),
		"allow_list", p.allow.String())
	return p
}

// State returns the current cycle state. Idle between events.
func (p *Processor) State() State {
	return p.state
}

// Stats returns the counters accumulated so far.
func (p *Processor) Stats() Stats {
	return p.stats
}

// Process runs one event through selection, pairing and dispatch.
// Per-item failures are logged and skipped; the only error is ErrFinished.
func (p *Processor) Process(ev *event.Event) error {
	if p.finished {
		return ErrFinished
	}
	defer func() { p.state = StateIdle }()

	p.stats.Events++
	p.notifyRun(ev.Run)

	p.state = StateSelection
	if !p.authority.IsEventSelected(ev) {
		p.stats.Rejected++
		p.metrics.event(p.worker, "rejected")
		return nil
	}
	p.metrics.event(p.worker, "accepted")

	triggers := p.authority.Triggers(ev)
	centrality := p.authority.Centrality(ev)
	hits := ev.Hits()

	for _, pass := range passesFor(ev.MC != nil) {
		p.state = StateSelection
		labels := triggers
		if pass.Generated {
			labels = []string{GeneratedLabel}
		}
		for _, label := range labels {
			p.countEvent(label)
		}

		sels := p.selectEntities(pass, ev)
		if len(sels) < 2 {
			continue
		}

		p.state = StatePairing
		for i := 0; i < len(sels)-1; i++ {
			for j := i + 1; j < len(sels); j++ {
				p.state = StateDispatch
				p.dispatch(pass, labels, sels[i], sels[j], ev.MC, centrality, hits)
				p.state = StatePairing
			}
		}
	}
	return nil
}

// notifyRun forwards run changes to authorities with per-run settings.
func (p *Processor) notifyRun(run int) {
	if p.haveRun && run == p.run {
		return
	}
	p.run, p.haveRun = run, true
	if n, ok := p.authority.(selection.RunNotifier); ok {
		n.NotifyRun(run)
	}
}

func (p *Processor) countEvent(label string) {
	path, err := ir.NewPath(label)
	if err != nil {
		p.fail("event_counter", err, "trigger", label)
		return
	}
	obj, ok := p.resolve(path, ObjectEvents)
	if !ok {
		return
	}
	obj.Counter().Add(1)
}

// selectEntities returns the particles of pass, annotated with their
// provenance.
func (p *Processor) selectEntities(pass Pass, ev *event.Event) []*event.Selected {
	var sels []*event.Selected
	if pass.Generated {
		for i := range ev.MC.Particles {
			part := &ev.MC.Particles[i]
			if selection.AcceptGenerated(part) {
				sels = append(sels, &event.Selected{Particle: part, Index: i, Label: i})
			}
		}
	} else {
		for i := range ev.Tracks {
			part := &ev.Tracks[i]
			if p.authority.AcceptTrack(part) {
				sels = append(sels, &event.Selected{Particle: part, Index: i, Label: part.Label})
			}
		}
	}

	debug := p.logger.Enabled(context.Background(), slog.LevelDebug)
	for _, s := range sels {
		s.Type = p.resolver.ParticleType(s, ev.MC)
		s.Ancestor = ev.MC.MotherOf(s.Label)
		if debug {
			s.History = p.resolver.History(s, ev.MC)
		}
	}
	return sels
}

func (p *Processor) dispatch(pass Pass, labels []string, a, b *event.Selected, mc *event.MCStack, centrality float64, hits []cascade.Hit) {
	p.stats.Pairs++
	pair, ok := p.classifier.Classify(a, b, mc)
	if !ok {
		p.stats.Filtered++
		p.metrics.pair(p.worker, "filtered")
		return
	}
	p.metrics.pair(p.worker, "recorded")

	kin := event.PairKinematics(a.Particle, b.Particle)
	counts := p.thresholds.Count(kin.Phi, hits)

	p.logger.Debug("pair",
		"pass", pass.Name,
		"type", pair.Type,
		"charge", pair.Charge,
		"ancestor", pair.Ancestor,
		"history_a", a.History,
		"history_b", b.History,
		"mass", kin.Mass)

	for _, trigger := range labels {
		if !pass.Generated && !p.authority.PairMatchesTrigger(trigger, a.Particle, b.Particle) {
			continue
		}
		for level, levelLabel := range p.levels {
			path, err := ir.NewPath(trigger, levelLabel, pair.Type, pair.Charge)
			if err != nil {
				p.fail("path", err, "trigger", trigger, "type", pair.Type)
				continue
			}
			obj, ok := p.resolve(path, ObjectSparse)
			if !ok {
				continue
			}
			x := []float64{kin.Pt, kin.Rapidity, kin.Phi, kin.Mass, centrality, float64(counts[level])}
			if obj.Histogram().Fill(x, 1) {
				p.stats.Fills++
				p.metrics.fill(p.worker, "filled")
			} else {
				p.stats.Dropped++
				p.metrics.fill(p.worker, "dropped")
			}
		}
	}
}

// resolve looks up or creates an object, logging creations and failures.
func (p *Processor) resolve(path ir.Path, name string) (collection.Object, bool) {
	obj, created, err := p.coll.Resolve(path, name, p.factory)
	if err != nil {
		p.fail("resolve", err, "path", path.String(), "name", name)
		return collection.Object{}, false
	}
	if created {
		size := p.coll.EstimateSize()
		p.metrics.created(p.worker, name, size)
		p.logger.Info("object created",
			"key", path.String()+ir.PathSeparator+name,
			"objects", p.coll.Len(),
			"size_mb", float64(size)/bytesPerMB)
	}
	return obj, true
}

func (p *Processor) fail(stage string, err error, args ...any) {
	p.stats.Errors++
	p.metrics.failed(p.worker, stage)
	p.logger.Error("skipped", append([]any{"stage", stage, "error", err}, args...)...)
}

// Finish hands off the collection and marks the processor finished. Later
// calls return nil.
func (p *Processor) Finish() *collection.Collection {
	if p.finished {
		return nil
	}
	p.finished = true
	coll := p.coll
	p.coll = nil
	p.logger.Info("processor finished",
		"events", p.stats.Events,
		"rejected", p.stats.Rejected,
		"pairs", p.stats.Pairs,
		"fills", p.stats.Fills,
		"dropped", p.stats.Dropped,
		"objects", coll.Len())
	return coll
}
