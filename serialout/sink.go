package serialout

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"go-fretboard/tone"

	"go.bug.st/serial"
	"golang.org/x/time/rate"
)

// MinInterval is the fastest the guitar accepts frames; the fretting
// solenoids need time to settle.
const MinInterval = 8 * time.Millisecond

const queueSize = 8

// Sink writes fret frames to a port from a worker goroutine, paced by a rate
// limiter. It implements the board's Player.
type Sink struct {
	w       io.WriteCloser
	limiter *rate.Limiter
	log     *slog.Logger

	mu     sync.Mutex
	seq    byte
	closed bool
	queue  chan Frame
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// Open opens the serial device and starts a sink on it.
func Open(device string, baud int, log *slog.Logger) (*Sink, error) {
	p, err := serial.Open(device, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", device, err)
	}
	log.Info("serial: port opened", "device", device, "baud", baud)
	return NewSink(p, rate.NewLimiter(rate.Every(MinInterval), 1), log), nil
}

// NewSink starts a sink writing to w. A nil limiter means no pacing.
func NewSink(w io.WriteCloser, limiter *rate.Limiter, log *slog.Logger) *Sink {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Sink{
		w:       w,
		limiter: limiter,
		log:     log,
		queue:   make(chan Frame, queueSize),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

// TriggerPointRelease queues a frame for points. A full queue drops the
// frame; the next settlement carries the full state anyway.
func (s *Sink) TriggerPointRelease(points []tone.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	f := BuildFrame(points, s.seq, s.log)
	s.seq++
	select {
	case s.queue <- f:
	default:
		s.log.Warn("serial: queue full, frame dropped", "seq", f.Seq)
	}
}

func (s *Sink) run() {
	defer close(s.done)
	for f := range s.queue {
		// Wait fails once Close cancels; what is left goes out unpaced.
		_ = s.limiter.Wait(s.ctx)
		s.write(f)
	}
}

func (s *Sink) write(f Frame) {
	n, err := s.w.Write(f.Encode())
	if err != nil {
		s.log.Error("serial: write error", "seq", f.Seq, "err", err)
		return
	}
	s.log.Debug("serial: frame sent", "bytes", n, "seq", f.Seq, "strum_mask", f.StrumMask)
}

// Close mutes the strings, flushes queued frames and closes the port.
func (s *Sink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	select {
	case s.queue <- EmptyFrame(s.seq):
	default:
	}
	close(s.queue)
	s.mu.Unlock()

	s.cancel()
	<-s.done
	s.log.Info("serial: closing port")
	return s.w.Close()
}
