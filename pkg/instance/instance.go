package instance

import (
	"os"

	"github.com/angelmondragon/icecream-backend/pkg/env"
)

// GetID names this process in logs: an explicit instance id, the platform
// dyno name, the hostname, then "local".
func GetID() string {
	if id := env.First("ICECREAM_INSTANCE_ID", "DYNO"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
