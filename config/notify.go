package config

import (
	"fmt"

	"github.com/kilianp07/crewroster/infra/mqtt"
)

// NotifyConfig enables MQTT notifications of roster runs and disruptions.
// Listen additionally subscribes to disruption reports under
// <topic_prefix>/ops/ while serving.
type NotifyConfig struct {
	Enabled bool        `json:"enabled"`
	Listen  bool        `json:"listen"`
	MQTT    mqtt.Config `json:"mqtt"`
}

func (c *NotifyConfig) SetDefaults() {
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "crewroster"
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = mqtt.DefaultTopicPrefix
	}
}

func (c NotifyConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt broker is required")
	}
	if c.MQTT.QoS > 2 {
		return fmt.Errorf("invalid qos %d", c.MQTT.QoS)
	}
	return nil
}
