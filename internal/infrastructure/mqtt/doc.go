// Package mqtt provides MQTT connectivity for the Eufy bridge.
//
// This package manages:
//   - Connection to the Gray Logic broker with auto-reconnect
//   - Publishing with QoS and retain flags
//   - Subscriptions that are restored after a reconnect
//   - Last Will and Testament on the bridge health topic
//
// The bridge speaks the flat Gray Logic topic scheme
// graylogic/{category}/eufy/{serial}; Topics builds every topic it uses.
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.CommandSubscribe(), 1,
//	    func(topic string, payload []byte) error {
//	        return handle(topic, payload)
//	    })
package mqtt
