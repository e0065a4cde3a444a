package cache

import "sync"

var (
	ownerID      string
	ownerIDMutex sync.RWMutex
)

// SetOwnerID stores the bot application owner, resolved once at startup
func SetOwnerID(id string) {
	ownerIDMutex.Lock()
	ownerID = id
	ownerIDMutex.Unlock()
}

func GetOwnerID() string {
	ownerIDMutex.RLock()
	defer ownerIDMutex.RUnlock()

	return ownerID
}
