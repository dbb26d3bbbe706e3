package instance

import (
	"os"
	"sync"

	"github.com/google/uuid"
)

var (
	once     sync.Once
	resolved string
)

// GetID returns the gateway instance identifier. ZYQORA_INSTANCE_ID wins;
// otherwise the hostname plus a random suffix, fixed for the process lifetime.
func GetID() string {
	once.Do(func() {
		if id := os.Getenv("ZYQORA_INSTANCE_ID"); id != "" {
			resolved = id
			return
		}
		host, err := os.Hostname()
		if err != nil || host == "" {
			host = "gateway"
		}
		resolved = host + "-" + uuid.NewString()[:8]
	})
	return resolved
}
