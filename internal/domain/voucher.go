package domain

// Profile is the bundle of service-level attributes applied to a voucher.
// It is an immutable snapshot at sync time; re-syncing a voucher fully
// replaces the rows derived from it.
type Profile struct {
	SessionTimeout *int   `json:"session_timeout,omitempty"` // seconds
	IdleTimeout    *int   `json:"idle_timeout,omitempty"`    // seconds
	SharedUsers    int    `json:"shared_users,omitempty"`    // 0 means default (1)
	RateLimit      string `json:"rate_limit,omitempty"`      // e.g. "10M/5M"
	Validity       string `json:"validity,omitempty"`        // e.g. "1d", "24h", "3600"
}

// Voucher is a subscriber credential issued by the upstream system,
// identified by username.
type Voucher struct {
	Username      string  `json:"username"`
	Password      string  `json:"password"`
	MacAddress    string  `json:"mac_address,omitempty"`
	NasIdentifier string  `json:"nas_identifier,omitempty"`
	Profile       Profile `json:"profile"`
}

// Validate checks the fields required before a voucher can be projected.
func (v *Voucher) Validate() error {
	if v.Username == "" {
		return ErrValidation("voucher username is required")
	}
	if v.Password == "" {
		return ErrValidation("voucher %q: password is required", v.Username)
	}
	return nil
}

// VoucherStatus is the enabled/disabled state of a credential.
type VoucherStatus string

const (
	StatusActive   VoucherStatus = "active"
	StatusDisabled VoucherStatus = "disabled"
)

// ParseVoucherStatus validates a status string from an API payload.
func ParseVoucherStatus(s string) (VoucherStatus, error) {
	switch VoucherStatus(s) {
	case StatusActive, StatusDisabled:
		return VoucherStatus(s), nil
	default:
		return "", ErrValidation("invalid status %q: must be %q or %q", s, StatusActive, StatusDisabled)
	}
}
