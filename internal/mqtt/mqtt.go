package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danngalann/astroweather/internal/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// RefreshMessage announces that the weather backend has new data. An empty
// Slug means every location was refreshed.
type RefreshMessage struct {
	Slug      string    `json:"slug,omitempty"`
	FetchedAt time.Time `json:"fetched_at,omitempty"`
}

type Subscriber struct {
	client    mqtt.Client
	cfg       config.Config
	logger    *slog.Logger
	mu        sync.RWMutex
	connected bool

	stopCh   chan struct{}
	stopOnce sync.Once

	// set once the first subscription succeeded; clean sessions lose it on
	// reconnect, so OnConnect subscribes again.
	resubscribe atomic.Bool

	handlerMu sync.RWMutex
	// MessageHandler is called for each valid refresh message
	MessageHandler func(msg RefreshMessage) error
}

// RefreshSubscriber interface for attaching message handlers
type RefreshSubscriber interface {
	SetMessageHandler(handler func(msg RefreshMessage) error)
}

// SetMessageHandler sets the message handler for refresh messages
func (s *Subscriber) SetMessageHandler(handler func(msg RefreshMessage) error) {
	s.handlerMu.Lock()
	s.MessageHandler = handler
	s.handlerMu.Unlock()
}

func NewSubscriber(cfg config.Config, logger *slog.Logger) (*Subscriber, error) {
	if cfg.MQTTBroker == "" {
		return nil, fmt.Errorf("mqtt broker not configured")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Subscriber{
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort))
	opts.SetClientID(cfg.MQTTClientID)

	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		s.handleConnect()
	})

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.setConnected(false)
		logger.Warn("mqtt connection lost", "error", err)
	})

	s.client = mqtt.NewClient(opts)
	return s, nil
}

// Connect establishes connection to the MQTT broker and subscribes to the configured topic.
func (s *Subscriber) Connect(ctx context.Context) error {
	select {
	case <-s.stopCh:
		return fmt.Errorf("subscriber stopped")
	default:
	}

	if s.IsConnected() {
		return nil
	}

	token := s.client.Connect()

	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			break
		}

		select {
		case <-ctx.Done():
			s.client.Disconnect(0)
			return ctx.Err()
		case <-s.stopCh:
			s.client.Disconnect(0)
			return fmt.Errorf("subscriber stopped")
		default:
		}
	}

	if err := s.subscribe(); err != nil {
		s.client.Disconnect(0)
		return fmt.Errorf("subscribe: %w", err)
	}
	s.resubscribe.Store(true)

	return nil
}

func (s *Subscriber) handleConnect() {
	s.setConnected(true)
	s.logger.Info("mqtt connected", "broker", s.cfg.MQTTBroker, "port", s.cfg.MQTTPort)

	if !s.resubscribe.Load() {
		return
	}
	if err := s.subscribe(); err != nil {
		s.logger.Error("mqtt resubscribe failed", "topic", s.cfg.MQTTTopic, "error", err)
	}
}

func (s *Subscriber) subscribe() error {
	if !s.client.IsConnected() {
		return fmt.Errorf("mqtt client not connected")
	}

	topic := s.cfg.MQTTTopic
	qos := byte(1)

	token := s.client.Subscribe(topic, qos, func(_ mqtt.Client, msg mqtt.Message) {
		s.handleMessage(msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("subscribe timeout for topic %s", topic)
	}
	if token.Error() != nil {
		return fmt.Errorf("subscribe to %s: %w", topic, token.Error())
	}

	s.logger.Info("subscribed to mqtt topic", "topic", topic, "qos", qos)
	return nil
}

func (s *Subscriber) handleMessage(topic string, payload []byte) {
	s.logger.Debug("received mqtt message", "topic", topic, "size", len(payload))

	msg, err := ParseRefreshMessage(payload)
	if err != nil {
		s.logger.Warn("failed to parse refresh message",
			"topic", topic,
			"error", err,
			"payload", string(payload),
		)
		return
	}

	s.handlerMu.RLock()
	handler := s.MessageHandler
	s.handlerMu.RUnlock()
	if handler == nil {
		return
	}

	if err := handler(msg); err != nil {
		s.logger.Error("message handler failed",
			"topic", topic,
			"slug", msg.Slug,
			"error", err,
		)
		return
	}
	s.logger.Debug("processed refresh message", "slug", msg.Slug)
}

// ParseRefreshMessage decodes a refresh payload. An empty payload refreshes
// everything.
func ParseRefreshMessage(payload []byte) (RefreshMessage, error) {
	var msg RefreshMessage
	if len(payload) == 0 {
		return msg, nil
	}
	if err := json.Unmarshal(payload, &msg); err != nil {
		return RefreshMessage{}, fmt.Errorf("decode refresh message: %w", err)
	}
	return msg, nil
}

// IsConnected returns whether the client is connected.
func (s *Subscriber) IsConnected() bool {
	s.mu.RLock()
	connected := s.connected
	s.mu.RUnlock()
	return connected && s.client.IsConnected()
}

// Disconnect stops the subscriber and closes the MQTT connection.
// Idempotent and safe to call multiple times.
func (s *Subscriber) Disconnect() {
	s.stopOnce.Do(func() { close(s.stopCh) })

	if s.client != nil && s.IsConnected() {
		token := s.client.Unsubscribe(s.cfg.MQTTTopic)
		token.WaitTimeout(2 * time.Second)
	}

	if s.client != nil {
		s.client.Disconnect(250)
	}

	s.setConnected(false)
	s.logger.Info("mqtt subscriber disconnected")
}

func (s *Subscriber) setConnected(v bool) {
	s.mu.Lock()
	s.connected = v
	s.mu.Unlock()
}
