package domain

// AttributeTable selects one of the two username-keyed attribute tables
// consulted by the RADIUS server.
type AttributeTable string

const (
	// TableCheck holds authorization-check attributes (radcheck).
	TableCheck AttributeTable = "radcheck"
	// TableReply holds reply attributes returned on Access-Accept (radreply).
	TableReply AttributeTable = "radreply"
)

// RADIUS attribute names written by the engine. The composite identity of a
// row is (username, table, attribute); singleton attributes have at most one
// row per username.
const (
	AttrCleartextPassword = "Cleartext-Password"
	AttrCallingStationID  = "Calling-Station-Id"
	AttrNasIdentifier     = "NAS-Identifier"
	AttrSessionTimeout    = "Session-Timeout"
	AttrIdleTimeout       = "Idle-Timeout"
	AttrSimultaneousUse   = "Simultaneous-Use"
	AttrAuthType          = "Auth-Type"

	AttrWisprBandwidthUp   = "WISPr-Bandwidth-Max-Up"
	AttrWisprBandwidthDown = "WISPr-Bandwidth-Max-Down"
	AttrMikrotikRateLimit  = "Mikrotik-Rate-Limit"
)

// Operators used in attribute rows.
const (
	OpSet   = ":=" // assignment
	OpEqual = "==" // check comparison
)

// SentinelDisabledValue is the Auth-Type value whose presence in the check
// table disables a subscriber.
const SentinelDisabledValue = "Reject"

// AttributeRow is one authorization-check or reply-attribute record in the
// local store.
type AttributeRow struct {
	ID        int64
	Username  string
	Attribute string
	Op        string
	Value     string
}

// BandwidthEncoding selects how rate limits are projected into reply rows.
// Different access-server vendors expect different attribute names.
type BandwidthEncoding string

const (
	// EncodingWISPr emits the WISPr-Bandwidth-Max-Up/Down pair (bits/s).
	EncodingWISPr BandwidthEncoding = "wispr"
	// EncodingMikrotik emits a single combined Mikrotik-Rate-Limit row.
	EncodingMikrotik BandwidthEncoding = "mikrotik"
)

// ParseBandwidthEncoding validates an encoding name from configuration.
func ParseBandwidthEncoding(s string) (BandwidthEncoding, error) {
	switch BandwidthEncoding(s) {
	case EncodingWISPr, EncodingMikrotik:
		return BandwidthEncoding(s), nil
	case "":
		return EncodingWISPr, nil
	default:
		return "", ErrValidation("invalid bandwidth encoding %q: must be %q or %q", s, EncodingWISPr, EncodingMikrotik)
	}
}
