package auth

import "errors"

// ErrSessionRevoked means the JWT verified but its backing session no
// longer exists.
var ErrSessionRevoked = errors.New("session revoked")
