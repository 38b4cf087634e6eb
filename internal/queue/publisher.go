package queue

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	dialTimeout   = 3 * time.Second
	redialBackoff = 10 * time.Second
	publishBuffer = 256
)

var (
	// ErrPublisherBusy is returned when the outgoing buffer is full.
	ErrPublisherBusy = errors.New("event publisher buffer full")
	// ErrPublisherClosed is returned by Publish after Close.
	ErrPublisherClosed = errors.New("event publisher closed")
)

// Publisher sends reservation events to a durable queue on the default
// exchange. Publish only enqueues; a single worker owns the broker
// connection, opens it on first use and reopens it after the broker drops
// it. While the broker is unreachable the worker drops events without
// redialing until the backoff expires.
type Publisher struct {
	url         string
	queue       string
	log         *zap.Logger
	dialTimeout time.Duration

	events  chan ReservationEvent
	done    chan struct{}
	dropped atomic.Int64

	mu     sync.RWMutex
	closed bool

	// owned by the worker goroutine
	conn       *amqp.Connection
	ch         *amqp.Channel
	retryAfter time.Time
}

func NewPublisher(url, queue string, log *zap.Logger) *Publisher {
	return newPublisher(url, queue, log, dialTimeout, publishBuffer)
}

func newPublisher(url, queue string, log *zap.Logger, timeout time.Duration, buffer int) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Publisher{
		url:         url,
		queue:       queue,
		log:         log,
		dialTimeout: timeout,
		events:      make(chan ReservationEvent, buffer),
		done:        make(chan struct{}),
	}
	go p.run()
	return p
}

// Publish hands ev to the worker without waiting for the broker. A full
// buffer drops the event with ErrPublisherBusy.
func (p *Publisher) Publish(ctx context.Context, ev ReservationEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	select {
	case p.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		p.dropped.Add(1)
		return ErrPublisherBusy
	}
}

// Dropped reports how many events never reached the broker.
func (p *Publisher) Dropped() int64 { return p.dropped.Load() }

// Close stops intake, sends what is still buffered and releases the broker
// connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		<-p.done
		return nil
	}
	p.closed = true
	close(p.events)
	p.mu.Unlock()

	<-p.done
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn, p.ch = nil, nil
	return err
}

func (p *Publisher) run() {
	defer close(p.done)
	for ev := range p.events {
		if err := p.send(ev); err != nil {
			p.dropped.Add(1)
			p.log.Warn("publish reservation event",
				zap.String("type", ev.Type), zap.String("reservation_id", ev.ReservationID), zap.Error(err))
		}
	}
}

// send publishes one event as a persistent message. The message id is a
// random UUID and the AMQP type carries ev.Type.
func (p *Publisher) send(ev ReservationEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.dialTimeout)
	defer cancel()

	ch, err := p.channel(ctx)
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Type:         ev.Type,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		p.reset()
		return errors.Wrap(err, "publish")
	}
	return nil
}

// channel returns the open channel, dialing when needed and allowed by the
// backoff.
func (p *Publisher) channel(ctx context.Context) (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()
	if time.Now().Before(p.retryAfter) {
		return nil, errors.New("broker unreachable, waiting to redial")
	}

	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: dialContext(ctx)})
	if err != nil {
		p.retryAfter = time.Now().Add(redialBackoff)
		return nil, errors.Wrap(err, "dial broker")
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		p.retryAfter = time.Now().Add(redialBackoff)
		return nil, errors.Wrap(err, "open channel")
	}
	if _, err := declare(ch, p.queue); err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn, p.ch = conn, ch
	p.retryAfter = time.Time{}
	p.log.Info("event publisher connected", zap.String("queue", p.queue))
	return ch, nil
}

func (p *Publisher) reset() {
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.ch = nil, nil
}

// dialContext bounds both the TCP connect and the AMQP handshake by ctx.
// The client clears the deadline once the connection is open.
func dialContext(ctx context.Context) func(network, addr string) (net.Conn, error) {
	return func(network, addr string) (net.Conn, error) {
		var d net.Dialer
		conn, err := d.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		if deadline, ok := ctx.Deadline(); ok {
			if err := conn.SetDeadline(deadline); err != nil {
				_ = conn.Close()
				return nil, err
			}
		}
		return conn, nil
	}
}

// declare makes sure the durable queue exists. Idempotent.
func declare(ch *amqp.Channel, name string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		name,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return q, errors.Wrap(err, "queue declare")
	}
	return q, nil
}
