package emit

import (
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTT publishes each token on a fixed topic. Tokens are already
// path-shaped (gesture/zero, area/menu/2), so subscribers can route on the
// payload directly.
type MQTT struct {
	client mqtt.Client
	topic  string
}

// NewMQTT connects to the broker and returns an MQTT emitter publishing to
// topic.
func NewMQTT(broker, clientID, topic string) (*MQTT, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if tok := client.Connect(); tok.Wait() && tok.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, tok.Error())
	}
	return &MQTT{client: client, topic: topic}, nil
}

// Emit publishes the token with QoS 0. Publish failures are logged; the
// channel is best effort.
func (m *MQTT) Emit(token string) {
	tok := m.client.Publish(m.topic, 0, false, []byte(token))
	go func() {
		if tok.Wait() && tok.Error() != nil {
			log.Printf("mqtt emit %q: %v", token, tok.Error())
		}
	}()
}

// Close disconnects from the broker.
func (m *MQTT) Close() {
	m.client.Disconnect(250)
}
