package domain

import "time"

// Auth log reply values written by the RADIUS server.
const (
	ReplyAccessAccept = "Access-Accept"
	ReplyAccessReject = "Access-Reject"
)

// AuthLogEntry is one append-only record in the authentication log
// (radpostauth). The engine reads entries and flips the processed flag;
// it never deletes them.
type AuthLogEntry struct {
	ID            int64
	Username      string
	MacAddress    string
	NasIdentifier string
	NasIPAddress  string
	Reply         string
	AuthDate      time.Time
	Processed     bool
}

// Activation is a first-successful-authentication event reported upstream.
type Activation struct {
	Username      string    `json:"username"`
	MacAddress    string    `json:"mac_address"`
	NasIdentifier string    `json:"nas_identifier"`
	ActivatedAt   time.Time `json:"activated_at"`
}

// ActivationResponse is the upstream's answer to an activation notify.
type ActivationResponse struct {
	ShouldBindMac bool `json:"should_bind_mac"`
}
