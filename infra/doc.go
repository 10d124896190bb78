// Package infra holds the adapters around the rostering core: the SQLite
// store, metrics sinks, MQTT notifications and the ops feed. They depend only
// on interfaces declared in the core packages.
package infra
