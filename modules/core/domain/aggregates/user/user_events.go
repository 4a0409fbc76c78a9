package user

import "time"

// ProvisionedEvent is published once per created user row.
type ProvisionedEvent struct {
	Result    User
	Timestamp time.Time
}
