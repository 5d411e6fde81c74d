package model

import "time"

// RefreshStatus is the singleton record describing the last successful
// refresh.  It lives in the `refresh_status` table under the fixed key
// id = 1; the fixed key is an invariant of the schema, not an accident,
// because the system tracks exactly one refresh state.
//
// LastRefreshedAt is nil until the first refresh succeeds.  The row is
// only ever written inside the same transaction as the country batch it
// describes, so readers can never observe a status newer than the rows
// it summarizes.
type RefreshStatus struct {
	TotalCountries  int        `json:"total_countries"`
	LastRefreshedAt *time.Time `json:"last_refreshed_at"`
}
