package common

import "time"

// SessionCookieName is the cookie (and gRPC metadata key) carrying the
// session token.
const SessionCookieName = "session_id"

// SessionLifetime is the fixed validity window of a session.
const SessionLifetime = 24 * time.Hour

// AdminUsername names the protected seed account.
const AdminUsername = "admin"

// DefaultAdminPassword is the documented initial password of the seed
// account. Change it after first login.
const DefaultAdminPassword = "admin"

// MaxListSize caps every list/search response.
const MaxListSize = 1000
