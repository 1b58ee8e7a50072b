// Package infra contains technical adapters: metrics exporters, the MQTT
// snapshot publisher, the Redis response cache, the PostgreSQL dataset
// source and PNG chart rendering. These packages depend only on the types
// and interfaces defined in the core packages.
package infra
