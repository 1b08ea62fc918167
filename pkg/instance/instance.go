package instance

import (
	"os"

	"github.com/donazulmira/moradores-backend/pkg/env"
)

// GetID names this api process in logs. MORADORES_INSTANCE_ID wins over the
// container hostname.
func GetID() string {
	if id := env.Get("MORADORES_INSTANCE_ID", ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "api-0"
}
