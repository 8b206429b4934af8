package mqtt

import "fmt"

// Topic scheme constants.
//
// Bridge topics use the flat Gray Logic scheme:
// graylogic/{category}/{protocol}/{address}
const (
	// TopicPrefix is the root of every Gray Logic topic.
	TopicPrefix = "graylogic"

	// Protocol is the protocol segment used by this bridge.
	Protocol = "eufy"
)

// Topics builds the MQTT topics used by the bridge.
//
//	topics := mqtt.Topics{}
//	topics.State("T8400P1234") // "graylogic/state/eufy/T8400P1234"
type Topics struct{}

// Command returns the topic a camera receives commands on.
//
// Example: graylogic/command/eufy/T8400P1234
func (Topics) Command(serial string) string {
	return fmt.Sprintf("%s/command/%s/%s", TopicPrefix, Protocol, serial)
}

// Ack returns the topic command acknowledgements are published on.
//
// Example: graylogic/ack/eufy/T8400P1234
func (Topics) Ack(serial string) string {
	return fmt.Sprintf("%s/ack/%s/%s", TopicPrefix, Protocol, serial)
}

// State returns the retained state topic of a camera.
//
// Example: graylogic/state/eufy/T8400P1234
func (Topics) State(serial string) string {
	return fmt.Sprintf("%s/state/%s/%s", TopicPrefix, Protocol, serial)
}

// Health returns the retained bridge health topic. It also carries the LWT.
//
// Example: graylogic/health/eufy
func (Topics) Health() string {
	return fmt.Sprintf("%s/health/%s", TopicPrefix, Protocol)
}

// CommandSubscribe returns the pattern matching commands for every camera.
//
// Pattern: graylogic/command/eufy/+
func (Topics) CommandSubscribe() string {
	return fmt.Sprintf("%s/command/%s/+", TopicPrefix, Protocol)
}

// AllStates returns the pattern matching every camera state topic.
//
// Pattern: graylogic/state/eufy/+
func (Topics) AllStates() string {
	return fmt.Sprintf("%s/state/%s/+", TopicPrefix, Protocol)
}
