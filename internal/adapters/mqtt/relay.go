// Package mqtt relays row change notifications published on an MQTT broker
// into the realtime hub. Database webhooks or bridges publish the same JSON
// payload the PostgreSQL trigger sends.
package mqtt

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/philly/postboard/internal/adapters/changefeed"
	"github.com/philly/postboard/internal/platform/logger"
)

// DefaultTopic carries change payloads for every table
const DefaultTopic = "postboard/changes"

const relaySource = "mqtt"

// Config holds the broker settings of a Relay
type Config struct {
	// Broker is the broker URL, e.g. "tcp://localhost:1883"
	Broker   string
	Topic    string
	ClientID string
	Username string
	Password string
	// ConnectTimeout bounds the first connection attempt
	ConnectTimeout time.Duration
}

// Relay subscribes to a topic and publishes every decoded payload on the hub.
type Relay struct {
	cfg    Config
	hub    *changefeed.Hub
	logger logger.Logger

	newClient func(*paho.ClientOptions) paho.Client
}

// NewRelay creates a relay; Run connects it.
func NewRelay(cfg Config, hub *changefeed.Hub, logger logger.Logger) *Relay {
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 30 * time.Second
	}
	return &Relay{cfg: cfg, hub: hub, logger: logger, newClient: paho.NewClient}
}

// Name identifies the worker in logs
func (r *Relay) Name() string { return "mqtt-relay" }

// Run connects to the broker and relays messages until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	if r.cfg.Broker == "" {
		return errors.New("mqtt: broker URL is required")
	}

	clientID := r.cfg.ClientID
	if clientID == "" {
		clientID = "postboard-" + randomSuffix()
	}

	opts := paho.NewClientOptions().
		AddBroker(r.cfg.Broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetMaxReconnectInterval(2 * time.Minute).
		SetKeepAlive(60 * time.Second).
		SetCleanSession(true).
		SetOrderMatters(false).
		SetOnConnectHandler(func(c paho.Client) { r.onConnected(ctx, c) }).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			r.logger.Warn(ctx, "mqtt connection lost", "broker", r.cfg.Broker, "error", err)
		})
	if r.cfg.Username != "" {
		opts.SetUsername(r.cfg.Username)
	}
	if r.cfg.Password != "" {
		opts.SetPassword(r.cfg.Password)
	}

	client := r.newClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(r.cfg.ConnectTimeout) {
		client.Disconnect(0)
		return errors.New("mqtt: connection timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt: connecting to broker: %w", err)
	}

	<-ctx.Done()
	client.Unsubscribe(r.cfg.Topic)
	client.Disconnect(1000)
	r.logger.Info(ctx, "mqtt relay stopped", "broker", r.cfg.Broker)
	return nil
}

// subscriptions are lost on reconnect with a clean session, so subscribe on
// every connect
func (r *Relay) onConnected(ctx context.Context, client paho.Client) {
	token := client.Subscribe(r.cfg.Topic, 1, func(_ paho.Client, msg paho.Message) {
		r.handleMessage(ctx, msg.Payload())
	})
	if token.WaitTimeout(10*time.Second) && token.Error() != nil {
		r.logger.Error(ctx, "mqtt subscribe failed", "topic", r.cfg.Topic, "error", token.Error())
		return
	}
	r.logger.Info(ctx, "mqtt relay subscribed", "broker", r.cfg.Broker, "topic", r.cfg.Topic)
}

func (r *Relay) handleMessage(ctx context.Context, payload []byte) {
	change, err := changefeed.DecodePayload(payload, relaySource)
	if err != nil {
		r.logger.Debug(ctx, "dropping mqtt message", "error", err)
		return
	}
	r.hub.Publish(ctx, change)
}

func randomSuffix() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
