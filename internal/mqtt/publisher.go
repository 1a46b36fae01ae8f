// Package mqtt publishes clock events to an MQTT broker.
package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/ledclock/internal/config"
	"github.com/dokzlo13/ledclock/internal/eventbus"
)

// Payload is the JSON body of every published message
type Payload struct {
	Event string                 `json:"event"`
	RunID string                 `json:"run_id"`
	Time  time.Time              `json:"time"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

// client is the part of paho.Client the publisher uses
type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

// Publisher forwards bus events to the broker
type Publisher struct {
	client client
	prefix string
	qos    byte
	retain bool
	runID  string
}

// Connect connects to the configured broker
func Connect(cfg config.MQTTConfig, runID string) (*Publisher, error) {
	options := paho.NewClientOptions()
	options.AddBroker(cfg.Broker)
	options.SetClientID(cfg.ClientID)
	options.SetUsername(cfg.Username)
	options.SetPassword(cfg.Password)
	options.SetAutoReconnect(true)
	options.SetConnectTimeout(cfg.ConnectTimeout.Duration())
	options.SetConnectionLostHandler(func(_ paho.Client, err error) {
		log.Warn().Err(err).Msg("MQTT connection lost")
	})
	options.SetOnConnectHandler(func(paho.Client) {
		log.Info().Str("broker", cfg.Broker).Msg("MQTT connected")
	})

	c := paho.NewClient(options)
	t := c.Connect()
	if !t.WaitTimeout(cfg.ConnectTimeout.Duration()) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", cfg.Broker)
	}
	if err := t.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", cfg.Broker, err)
	}

	return newPublisher(c, cfg.TopicPrefix, cfg.QoS, cfg.Retain, runID), nil
}

func newPublisher(c client, prefix string, qos byte, retain bool, runID string) *Publisher {
	return &Publisher{
		client: c,
		prefix: strings.TrimSuffix(prefix, "/"),
		qos:    qos,
		retain: retain,
		runID:  runID,
	}
}

// Topic returns the topic for an event type
func (p *Publisher) Topic(eventType eventbus.EventType) string {
	return fmt.Sprintf("%s/events/%s", p.prefix, eventType)
}

// Handle publishes a bus event. It is an eventbus.Handler.
func (p *Publisher) Handle(event eventbus.Event) {
	body, err := json.Marshal(Payload{
		Event: string(event.Type),
		RunID: p.runID,
		Time:  event.Time.UTC(),
		Data:  event.Data,
	})
	if err != nil {
		log.Error().Err(err).Str("event_type", string(event.Type)).Msg("Failed to encode MQTT payload")
		return
	}

	topic := p.Topic(event.Type)
	t := p.client.Publish(topic, p.qos, p.retain, body)

	// Bus workers must not block on the broker
	go func() {
		_ = t.Wait()
		if err := t.Error(); err != nil {
			log.Warn().Err(err).Str("topic", topic).Msg("MQTT publish failed")
		}
	}()
}

// Close disconnects from the broker
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
