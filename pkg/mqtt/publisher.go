package mqtt

import (
	"encoding/json"
	"fmt"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Publisher is the narrow publishing contract the control loop needs.
type Publisher interface {
	Publish(topic string, payload interface{}) error
	Connected() bool
}

// BrokerPublisher publishes JSON payloads over a shared MQTT client.
type BrokerPublisher struct {
	client paho.Client
}

// NewPublisher wraps a connected client.
func NewPublisher(client paho.Client) *BrokerPublisher {
	return &BrokerPublisher{client: client}
}

// Publish marshals payload to JSON and publishes it at QoS 0.
func (p *BrokerPublisher) Publish(topic string, payload interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload for %s: %w", topic, err)
	}
	token := p.client.Publish(topic, 0, false, b)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("publish to %s: %w", topic, token.Error())
	}
	return nil
}

// Connected reports whether the underlying client holds an open connection.
func (p *BrokerPublisher) Connected() bool {
	return p.client != nil && p.client.IsConnectionOpen()
}

// Close disconnects the underlying client.
func (p *BrokerPublisher) Close() {
	if p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
