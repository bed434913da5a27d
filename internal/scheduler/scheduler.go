// Package scheduler provides the ticker-driven control loop shared by the
// periodic background jobs: the outbox publisher poll and the settlement
// batch settler. All mutable state lives in a single loop goroutine, so the
// Start/Stop/IsRunning surface needs no locking.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// BatchProcessor is the dependency that actually does the work. The
// scheduler calls ProcessBatch on a fixed interval while running.
type BatchProcessor interface {
	ProcessBatch(ctx context.Context) error
}

// SchedulerService exposes a small control surface: Start/Stop are
// synchronous, IsRunning reports whether ticks are currently accepted.
type SchedulerService interface {
	Start() error
	Stop() error
	IsRunning() bool
}

// DefaultInterval is used when no interval is configured.
const DefaultInterval = 2 * time.Second

// DefaultBatchTimeout bounds a single ProcessBatch call via context
// timeout, so Stop can never hang behind a wedged batch forever.
const DefaultBatchTimeout = 30 * time.Second

// controlTimeout bounds how long Start/Stop wait for the control loop to
// accept and acknowledge a command.
const controlTimeout = 2 * time.Second

type controlOp int

const (
	opStart controlOp = iota
	opStop
	opStatus
)

type controlMsg struct {
	op   controlOp
	resp chan bool
}

type schedulerService struct {
	processor    BatchProcessor
	interval     time.Duration
	batchTimeout time.Duration
	log          zerolog.Logger
	ctrl         chan controlMsg
}

// NewSchedulerService creates a scheduler driving processor at the given
// interval. Non-positive durations fall back to the defaults. The control
// loop goroutine is started immediately and lives for the process.
func NewSchedulerService(processor BatchProcessor, interval, batchTimeout time.Duration, log zerolog.Logger) SchedulerService {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if batchTimeout <= 0 {
		batchTimeout = DefaultBatchTimeout
	}

	s := &schedulerService{
		processor:    processor,
		interval:     interval,
		batchTimeout: batchTimeout,
		log:          log.With().Str("component", "scheduler").Logger(),
		ctrl:         make(chan controlMsg),
	}

	go s.loop()

	return s
}

// Start tells the scheduler to begin processing ticks. It blocks until the
// loop has acknowledged the state change or the control timeout elapses.
func (s *schedulerService) Start() error {
	return s.send(opStart, "Start")
}

// Stop tells the scheduler to stop accepting new ticks. If a batch is
// currently running, Stop waits until it finishes (or its timeout fires)
// before returning.
func (s *schedulerService) Stop() error {
	return s.send(opStop, "Stop")
}

// IsRunning reports whether new ticks will be processed when the timer
// fires. It does not mean a batch is executing right now.
func (s *schedulerService) IsRunning() bool {
	resp := make(chan bool)
	s.ctrl <- controlMsg{op: opStatus, resp: resp}
	return <-resp
}

func (s *schedulerService) send(op controlOp, name string) error {
	resp := make(chan bool)

	// The loop runs a batch inline and only reads ctrl again once it
	// returns, so Stop allows for a full in-flight batch on top of the
	// control timeout.
	wait := controlTimeout
	if op == opStop {
		wait += s.batchTimeout
	}

	select {
	case s.ctrl <- controlMsg{op: op, resp: resp}:
	case <-time.After(wait):
		return fmt.Errorf("scheduler: %s: control loop not responding", name)
	}

	select {
	case <-resp:
		return nil
	case <-time.After(wait):
		return fmt.Errorf("scheduler: %s: acknowledgement timeout", name)
	}
}

func (s *schedulerService) loop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	running := false
	inBatch := false

	// pendingStop holds a Stop caller's response channel when the request
	// arrived mid-batch; it is completed once that batch returns.
	var pendingStop chan bool

	for {
		select {
		case msg := <-s.ctrl:
			switch msg.op {
			case opStart:
				if !running {
					s.log.Info().Dur("interval", s.interval).Dur("batch_timeout", s.batchTimeout).Msg("scheduler started")
				}
				running = true
				msg.resp <- true

			case opStop:
				if !running && !inBatch {
					msg.resp <- true
					continue
				}

				running = false

				if inBatch {
					pendingStop = msg.resp
				} else {
					msg.resp <- true
				}

			case opStatus:
				msg.resp <- running
			}

		case <-ticker.C:
			if !running || inBatch {
				continue
			}

			inBatch = true

			ctx, cancel := context.WithTimeout(context.Background(), s.batchTimeout)
			err := s.processor.ProcessBatch(ctx)
			cancel()

			if err != nil {
				s.log.Error().Err(err).Msg("batch failed")
			}

			inBatch = false

			if pendingStop != nil {
				pendingStop <- true
				pendingStop = nil
			}
		}
	}
}
