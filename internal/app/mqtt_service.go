package app

import (
	"github.com/rs/zerolog/log"

	"github.com/dokzlo13/ledclock/internal/config"
	"github.com/dokzlo13/ledclock/internal/eventbus"
	"github.com/dokzlo13/ledclock/internal/mqtt"
)

// MQTTService mirrors bus events to an MQTT broker.
type MQTTService struct {
	cfg       *config.Config
	runID     string
	Publisher *mqtt.Publisher
}

// NewMQTTService creates a new MQTTService. Nothing connects until Start.
func NewMQTTService(cfg *config.Config, runID string) *MQTTService {
	return &MQTTService{cfg: cfg, runID: runID}
}

// Start connects to the broker and subscribes to the bus. A broker that
// cannot be reached is logged and the clock runs without MQTT.
func (s *MQTTService) Start(bus *eventbus.Bus) {
	if !s.cfg.MQTT.Enabled {
		return
	}

	pub, err := mqtt.Connect(s.cfg.MQTT, s.runID)
	if err != nil {
		log.Error().Err(err).Str("broker", s.cfg.MQTT.Broker).Msg("MQTT unavailable, events will not be published")
		return
	}
	s.Publisher = pub
	bus.SubscribeAll(pub.Handle)
}

// Close disconnects from the broker.
func (s *MQTTService) Close() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
}
