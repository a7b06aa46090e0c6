package domain

// ItemError records a single failed item inside a batch. Per-item failures
// never abort the batch; they are collected into the run report.
type ItemError struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// SyncReport summarizes one batch run. The commit happens once after the
// loop, so a crash mid-batch loses the whole batch's uncommitted work.
// Every operation is idempotent and retried next run.
type SyncReport struct {
	Synced  int         `json:"synced"`
	Updated int         `json:"updated,omitempty"`
	Failed  int         `json:"failed"`
	Errors  []ItemError `json:"errors,omitempty"`
}

// Fail records a per-item failure in the report.
func (r *SyncReport) Fail(username string, err error) {
	r.Failed++
	r.Errors = append(r.Errors, ItemError{Username: username, Message: err.Error()})
}

// ActivationReport summarizes one activation scan.
type ActivationReport struct {
	Processed int `json:"processed"`
	Bound     int `json:"bound"`
	Failed    int `json:"failed"`
}

// MacBinding associates a subscriber's hardware address with a username.
type MacBinding struct {
	Username   string `json:"username"`
	MacAddress string `json:"mac_address"`
}

// Validate checks the fields required for a binding upsert.
func (b *MacBinding) Validate() error {
	if b.Username == "" {
		return ErrValidation("binding username is required")
	}
	if b.MacAddress == "" {
		return ErrValidation("binding %q: mac_address is required", b.Username)
	}
	return nil
}

// BindResult is the outcome of a MAC binding upsert.
type BindResult string

const (
	BindInserted  BindResult = "inserted"
	BindUpdated   BindResult = "updated"
	BindUnchanged BindResult = "unchanged"
)

// DeleteCounts reports how many rows a voucher deletion removed per table.
type DeleteCounts struct {
	CheckCount int64 `json:"check_count"`
	ReplyCount int64 `json:"reply_count"`
}

// Total returns the combined number of deleted rows.
func (d DeleteCounts) Total() int64 { return d.CheckCount + d.ReplyCount }

// StoreStats is the aggregate view served by the stats endpoint.
type StoreStats struct {
	Users         int64 `json:"users"`
	MacBindings   int64 `json:"mac_bindings"`
	CheckRows     int64 `json:"check_rows"`
	ReplyRows     int64 `json:"reply_rows"`
	DistinctNas   int64 `json:"distinct_nas"`
	DisabledUsers int64 `json:"disabled_users"`
}
