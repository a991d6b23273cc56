package screencandidate

import "time"

type Config struct {
	Timeout time.Duration
}
