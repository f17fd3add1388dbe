package redis

import "time"

// DefaultConnectTimeout bounds the initial PING performed by NewClient.
const DefaultConnectTimeout = 5 * time.Second
