package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

// publishTimeout bounds how long a single publish may hold up the page.
const publishTimeout = 2 * time.Second

// Mirror is a target whose lists can be read back.
type Mirror interface {
	Target
	Lines(listID string) []string
}

// MQTT mirrors every change of a page to a broker. Each element is
// published, retained, on "<prefix>/<id>"; lists are sent as one item per line.
type MQTT struct {
	Mirror
	client  mqtt.Client
	prefix  string
	timeout time.Duration
}

var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	log.Info().Msg("connected to MQTT broker")
}

var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Error().Err(err).Msg("MQTT connection lost")
}

// NewMQTTClient connects to brokerURL with the given client id.
func NewMQTTClient(brokerURL, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return client, nil
}

// NewMQTT wraps next so that its changes are also published through client.
func NewMQTT(next Mirror, client mqtt.Client, prefix string) *MQTT {
	return &MQTT{Mirror: next, client: client, prefix: strings.TrimSuffix(prefix, "/"), timeout: publishTimeout}
}

func (m *MQTT) SetText(id, text string) error {
	if err := m.Mirror.SetText(id, text); err != nil {
		return err
	}
	m.publish(id, text)
	return nil
}

func (m *MQTT) AppendListItem(listID, text string) {
	m.Mirror.AppendListItem(listID, text)
	m.publishList(listID)
}

func (m *MQTT) AppendLiveItem(listID, label, slotID string) {
	m.Mirror.AppendLiveItem(listID, label, slotID)
	m.publishList(listID)
}

func (m *MQTT) ClearList(listID string) {
	m.Mirror.ClearList(listID)
	m.publishList(listID)
}

func (m *MQTT) SetVisible(id string, visible bool) {
	m.Mirror.SetVisible(id, visible)
	m.publish(id, strconv.FormatBool(visible))
}

// Flush forwards to the wrapped target when it batches output.
func (m *MQTT) Flush() error {
	if f, ok := m.Mirror.(Flusher); ok {
		return f.Flush()
	}
	return nil
}

// Close disconnects from the broker.
func (m *MQTT) Close() {
	m.client.Disconnect(250)
}

func (m *MQTT) publishList(listID string) {
	m.publish(listID, strings.Join(m.Mirror.Lines(listID), "\n"))
}

func (m *MQTT) publish(id, payload string) {
	topic := m.prefix + "/" + id
	token := m.client.Publish(topic, 1, true, payload)
	if !token.WaitTimeout(m.timeout) {
		log.Warn().Str("topic", topic).Dur("timeout", m.timeout).Msg("publish not acknowledged in time")
		return
	}
	if err := token.Error(); err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("failed to publish")
	}
}
