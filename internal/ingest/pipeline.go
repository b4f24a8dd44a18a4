package ingest

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/aircontrol-core/internal/actuator"
	"github.com/nerrad567/aircontrol-core/internal/aqi"
	"github.com/nerrad567/aircontrol-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/aircontrol-core/internal/registry"
	"github.com/nerrad567/aircontrol-core/internal/room"
	"github.com/nerrad567/aircontrol-core/internal/telemetry"
	"github.com/nerrad567/aircontrol-core/internal/weather"
)

const (
	defaultWorkers   = 4
	defaultQueueSize = 256
	defaultTimeout   = 5 * time.Second
)

// Logger defines the logging interface used by the pipeline.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// RoomResolver looks up registry metadata of a room.
type RoomResolver interface {
	RoomInfo(ctx context.Context, id room.ID) (registry.RoomInfo, error)
}

// Applier applies actuator commands.
type Applier interface {
	Apply(ctx context.Context, cmd actuator.Command) error
}

// AdvisoryEmitter publishes the advisory of a room.
type AdvisoryEmitter interface {
	Emit(id room.ID, s aqi.Severity)
}

// ReadingWriter records readings in the time-series store.
type ReadingWriter interface {
	WriteAirQuality(room influxdb.RoomTags, values map[string]float64, severity int, at time.Time)
}

// Deps are the collaborators of a pipeline. Store, Parser and Dispatcher are
// required; the rest may be nil.
type Deps struct {
	Store      *room.Store
	Parser     *telemetry.Parser
	Dispatcher Applier
	Weather    weather.Provider
	Registry   RoomResolver
	Advisory   AdvisoryEmitter
	Readings   ReadingWriter
}

// Options sizes and bounds the pipeline.
type Options struct {
	Workers   int
	QueueSize int

	// WeatherTimeout and RegistryTimeout bound one lookup each.
	WeatherTimeout  time.Duration
	RegistryTimeout time.Duration

	Logger Logger
}

// Stats counts messages seen by the pipeline.
type Stats struct {
	Received  uint64 `json:"received"`
	Malformed uint64 `json:"malformed"`
	Processed uint64 `json:"processed"`
}

// Pipeline is the sharded worker pool running the control cycle.
//
// Thread Safety: Submit is safe for concurrent use.
type Pipeline struct {
	deps Deps
	opts Options
	log  Logger

	mu      sync.RWMutex
	queues  []chan telemetry.Reading
	started bool
	stopped bool
	wg      sync.WaitGroup

	received  atomic.Uint64
	malformed atomic.Uint64
	processed atomic.Uint64
}

// New creates a pipeline. Call Start before Submit.
func New(deps Deps, opts Options) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.WeatherTimeout <= 0 {
		opts.WeatherTimeout = defaultTimeout
	}
	if opts.RegistryTimeout <= 0 {
		opts.RegistryTimeout = defaultTimeout
	}
	log := opts.Logger
	if log == nil {
		log = noopLogger{}
	}
	return &Pipeline{deps: deps, opts: opts, log: log}
}

// Start launches the workers. The cycle runs on a context detached from ctx's
// cancellation so queued messages drain during Stop; lookups and actuator
// calls stay bounded by their own timeouts.
func (p *Pipeline) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	work := context.WithoutCancel(ctx)
	p.queues = make([]chan telemetry.Reading, p.opts.Workers)
	for i := range p.queues {
		q := make(chan telemetry.Reading, p.opts.QueueSize)
		p.queues[i] = q
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for rd := range q {
				p.processRecovered(work, rd)
			}
		}()
	}
	p.log.Info("ingest pipeline started", "workers", p.opts.Workers, "queue_size", p.opts.QueueSize)
}

// processRecovered keeps a panicking cycle from killing its worker, which
// would leave the shard's queue unread.
func (p *Pipeline) processRecovered(ctx context.Context, rd telemetry.Reading) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("panic in control cycle", "room", rd.Room.String(), "panic", r)
		}
	}()
	p.Process(ctx, rd)
}

// Stop refuses new messages, drains the queues and waits for the workers.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	if !p.started || p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	for _, q := range p.queues {
		close(q)
	}
	p.mu.Unlock()

	p.wg.Wait()
	p.log.Info("ingest pipeline stopped", "processed", p.processed.Load())
}

// Run starts the pipeline and stops it when ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.Start(ctx)
	<-ctx.Done()
	p.Stop()
	return nil
}

// Submit parses a message and queues it on its room's worker.
// It has the signature of an MQTT message handler.
//
// Returns:
//   - error wrapping telemetry.ErrMalformed for invalid messages (nothing is queued)
//   - ErrNotStarted or ErrStopped outside the pipeline's lifetime
func (p *Pipeline) Submit(topic string, payload []byte) error {
	p.received.Add(1)
	rd, err := p.deps.Parser.Parse(topic, payload)
	if err != nil {
		p.malformed.Add(1)
		return err
	}
	if len(rd.Ignored) > 0 {
		p.log.Debug("untracked entries ignored", "room", rd.Room.String(), "names", rd.Ignored)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	switch {
	case p.stopped:
		return ErrStopped
	case !p.started:
		return ErrNotStarted
	}
	p.queues[shard(rd.Room, len(p.queues))] <- rd
	return nil
}

// Stats returns the message counters.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Received:  p.received.Load(),
		Malformed: p.malformed.Load(),
		Processed: p.processed.Load(),
	}
}

func shard(id room.ID, n int) int {
	h := fnv.New32a()
	h.Write([]byte(id.String())) //nolint:errcheck // hash writes never fail
	return int(h.Sum32() % uint32(n))
}
