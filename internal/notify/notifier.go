package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/pousada-reservation/internal/model"
)

// SettingsSource supplies the inn contact details used in templates.
type SettingsSource interface {
	Values(ctx context.Context) (map[string]string, error)
}

// Options configures a Notifier.
type Options struct {
	Workers int
	Queue   int
	Timeout time.Duration
	// NotifyTo receives staff alerts about new contact messages. Empty
	// disables them.
	NotifyTo string
	Logger   *zap.Logger
}

type job struct {
	kind  string
	build func(inn Inn) (Mail, error)
}

// Notifier renders and sends emails from a fixed pool of workers fed by a
// bounded queue. When the queue is full new emails are dropped and logged;
// a failed send is logged and never retried.
type Notifier struct {
	sender   Sender
	settings SettingsSource
	notifyTo string
	timeout  time.Duration
	log      *zap.Logger

	mu      sync.RWMutex
	closed  bool
	jobs    chan job
	g       errgroup.Group
	dropped atomic.Int64
}

// New starts the worker pool. settings may be nil.
func New(sender Sender, settings SettingsSource, opts Options) *Notifier {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Queue < 1 {
		opts.Queue = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	n := &Notifier{
		sender:   sender,
		settings: settings,
		notifyTo: opts.NotifyTo,
		timeout:  opts.Timeout,
		log:      opts.Logger,
		jobs:     make(chan job, opts.Queue),
	}
	for i := 0; i < opts.Workers; i++ {
		n.g.Go(n.work)
	}
	return n
}

// ReservationCreated queues the booking confirmation for the guest.
func (n *Notifier) ReservationCreated(r model.Reservation) {
	n.enqueue(job{kind: "confirmation", build: func(inn Inn) (Mail, error) {
		return confirmationMail(inn, r)
	}})
}

// StatusChanged queues the status update email for the guest.
func (n *Notifier) StatusChanged(r model.Reservation) {
	n.enqueue(job{kind: "status", build: func(inn Inn) (Mail, error) {
		return statusMail(inn, r)
	}})
}

// MessageReceived alerts staff about a new contact message.
func (n *Notifier) MessageReceived(m model.ContactMessage) {
	if n.notifyTo == "" {
		return
	}
	to := n.notifyTo
	n.enqueue(job{kind: "contact", build: func(Inn) (Mail, error) {
		return contactMail(to, m)
	}})
}

// Dropped reports how many emails were discarded because the queue was full
// or the notifier was closed.
func (n *Notifier) Dropped() int64 { return n.dropped.Load() }

// Close stops accepting emails and waits until the queued ones are sent.
func (n *Notifier) Close() error {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.jobs)
	}
	n.mu.Unlock()
	return n.g.Wait()
}

func (n *Notifier) enqueue(j job) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		n.dropped.Add(1)
		n.log.Warn("notifier closed, email dropped", zap.String("kind", j.kind))
		return
	}
	select {
	case n.jobs <- j:
	default:
		n.dropped.Add(1)
		n.log.Warn("mail queue full, email dropped", zap.String("kind", j.kind))
	}
}

func (n *Notifier) work() error {
	for j := range n.jobs {
		n.deliver(j)
	}
	return nil
}

func (n *Notifier) deliver(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	m, err := j.build(n.inn(ctx))
	if err != nil {
		n.log.Error("render email", zap.String("kind", j.kind), zap.Error(err))
		return
	}
	if err := n.sender.Send(ctx, m); err != nil {
		n.log.Error("send email", zap.String("kind", j.kind), zap.Strings("to", m.To), zap.Error(err))
		return
	}
	n.log.Debug("email sent", zap.String("kind", j.kind), zap.Strings("to", m.To))
}

func (n *Notifier) inn(ctx context.Context) Inn {
	if n.settings == nil {
		return defaultInn
	}
	values, err := n.settings.Values(ctx)
	if err != nil {
		n.log.Warn("load settings for email", zap.Error(err))
		return defaultInn
	}
	return innFromSettings(values)
}
