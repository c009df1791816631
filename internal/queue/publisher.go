package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

// DefaultDialTimeout bounds the TCP connect and the AMQP handshake of one
// dial attempt.
const DefaultDialTimeout = 3 * time.Second

// ErrBrokerUnavailable is returned while another caller is dialling the
// broker.  Publishing does not wait for that dial.
var ErrBrokerUnavailable = errors.New("broker connection in progress")

// Publisher sends BookingCommittedEvents to a durable queue.  It keeps one
// connection and redials lazily after the broker drops it.  A nil
// *Publisher is valid and publishes nothing.
type Publisher struct {
    url         string
    queue       string
    dialTimeout time.Duration
    log         *zap.Logger

    mu      sync.Mutex
    dialing bool
    closed  bool
    conn    *amqp.Connection
    ch      *amqp.Channel
}

// NewPublisher returns a publisher for the given broker URL and queue name.
// The connection is opened on first use.
func NewPublisher(url, queue string, log *zap.Logger) *Publisher {
    if log == nil {
        log = zap.NewNop()
    }
    return &Publisher{
        url:         url,
        queue:       queue,
        dialTimeout: DefaultDialTimeout,
        log:         log.With(zap.String("component", "publisher")),
    }
}

// channel returns an open channel, dialling and declaring the queue when
// needed.  p.mu is not held across the dial; a caller that finds a dial in
// flight gets ErrBrokerUnavailable instead of queueing behind it.
func (p *Publisher) channel(ctx context.Context) (*amqp.Channel, error) {
    p.mu.Lock()
    if p.ch != nil && !p.ch.IsClosed() {
        ch := p.ch
        p.mu.Unlock()
        return ch, nil
    }
    if p.dialing {
        p.mu.Unlock()
        return nil, ErrBrokerUnavailable
    }
    _ = p.closeLocked()
    p.dialing = true
    p.mu.Unlock()

    conn, ch, err := p.dial(ctx)

    p.mu.Lock()
    defer p.mu.Unlock()
    p.dialing = false
    if err != nil {
        return nil, err
    }
    if p.closed {
        _ = ch.Close()
        _ = conn.Close()
        return nil, amqp.ErrClosed
    }
    p.conn, p.ch = conn, ch
    return ch, nil
}

func (p *Publisher) dial(ctx context.Context) (*amqp.Connection, *amqp.Channel, error) {
    timeout := p.dialTimeout
    if dl, ok := ctx.Deadline(); ok {
        timeout = min(timeout, time.Until(dl))
    }
    if timeout <= 0 {
        return nil, nil, fmt.Errorf("dial broker: %w", context.DeadlineExceeded)
    }
    conn, err := amqp.DialConfig(p.url, amqp.Config{
        Heartbeat: 10 * time.Second,
        Locale:    "en_US",
        Dial:      amqp.DefaultDial(timeout),
    })
    if err != nil {
        return nil, nil, fmt.Errorf("dial broker: %w", err)
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return nil, nil, fmt.Errorf("open channel: %w", err)
    }
    // Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
        _ = ch.Close()
        _ = conn.Close()
        return nil, nil, fmt.Errorf("declare queue %s: %w", p.queue, err)
    }
    return conn, ch, nil
}

// PublishBookingCommitted publishes ev as a persistent JSON message on the
// default exchange, routed to the configured queue.  A dial made on behalf
// of this call gives up at ctx's deadline or the dial timeout, whichever
// comes first.
func (p *Publisher) PublishBookingCommitted(ctx context.Context, ev BookingCommittedEvent) error {
    if p == nil {
        return nil
    }
    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }

    ch, err := p.channel(ctx)
    if err != nil {
        return err
    }
    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
        // force a redial on the next call
        p.mu.Lock()
        if p.ch == ch {
            _ = p.closeLocked()
        }
        p.mu.Unlock()
        return fmt.Errorf("publish: %w", err)
    }
    p.log.Debug("event published", zap.Uint64("show_id", ev.ShowID), zap.Strings("seats", ev.SeatLabels))
    return nil
}

// Close releases the broker connection.
func (p *Publisher) Close() error {
    if p == nil {
        return nil
    }
    p.mu.Lock()
    defer p.mu.Unlock()
    p.closed = true
    return p.closeLocked()
}

func (p *Publisher) closeLocked() error {
    var errs []error
    if p.ch != nil {
        if err := p.ch.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
            errs = append(errs, err)
        }
        p.ch = nil
    }
    if p.conn != nil {
        if err := p.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
            errs = append(errs, err)
        }
        p.conn = nil
    }
    return errors.Join(errs...)
}
