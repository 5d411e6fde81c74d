package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"time"

	"github.com/iliyamo/country-currency-api/internal/model"
)

// Fixed key of the singleton refresh_status row.  A schema invariant,
// not a convention: there is exactly one refresh state system-wide.
const statusRowID = 1

// Sort orders accepted by List.  Anything else falls back to id order.
const (
	SortGDPDesc = "gdp_desc"
	SortGDPAsc  = "gdp_asc"
	SortPopDesc = "pop_desc"
	SortPopAsc  = "pop_asc"
)

// CountryFilter narrows and orders a List call.  Region and Currency are
// equality filters applied as stored; empty values mean "no filter".
type CountryFilter struct {
	Region   string
	Currency string
	Sort     string
}

// CountryRepo encapsulates all database queries related to countries and
// the refresh status.  It depends on a sql.DB connection which should be
// configured elsewhere.
type CountryRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewCountryRepo constructs a CountryRepo with the provided DB handle.
// This function allows dependency injection of the database in tests and
// at startup.
func NewCountryRepo(db *sql.DB) *CountryRepo {
	return &CountryRepo{db: db}
}

const countryColumns = `id, name, capital, region, population, currency_code,
	exchange_rate, estimated_gdp, flag_url, last_refreshed_at`

// scanCountry reads one row into a model.Country, converting NULL columns
// into nil pointers.  NULL and zero are distinct for estimated_gdp and
// must survive the round trip.
func scanCountry(row interface{ Scan(...any) error }) (*model.Country, error) {
	var (
		c       model.Country
		capital sql.NullString
		region  sql.NullString
		code    sql.NullString
		rate    sql.NullFloat64
		gdp     sql.NullFloat64
		flag    sql.NullString
	)
	if err := row.Scan(&c.ID, &c.Name, &capital, &region, &c.Population,
		&code, &rate, &gdp, &flag, &c.LastRefreshedAt); err != nil {
		return nil, err
	}
	if capital.Valid {
		c.Capital = &capital.String
	}
	if region.Valid {
		c.Region = &region.String
	}
	if code.Valid {
		c.CurrencyCode = &code.String
	}
	if rate.Valid {
		c.ExchangeRate = &rate.Float64
	}
	if gdp.Valid {
		c.EstimatedGDP = &gdp.Float64
	}
	if flag.Valid {
		c.FlagURL = &flag.String
	}
	return &c, nil
}

// UpsertBatch writes a full refresh batch and the refresh status in one
// transaction.  Each record either inserts a new row or, when a row with
// the same name already exists (case-insensitive via the table
// collation), updates every mutable field and touches the timestamp.
// The status row is set to {refreshedAt, len(records)} in the same
// transaction, so either the whole refresh becomes visible or none of it
// does.  Rows absent from the batch are left untouched; refresh never
// deletes.
func (r *CountryRepo) UpsertBatch(ctx context.Context, records []model.Country, refreshedAt time.Time) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	const qUpsert = `INSERT INTO countries
		(name, capital, region, population, currency_code, exchange_rate, estimated_gdp, flag_url, last_refreshed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
		capital = VALUES(capital),
		region = VALUES(region),
		population = VALUES(population),
		currency_code = VALUES(currency_code),
		exchange_rate = VALUES(exchange_rate),
		estimated_gdp = VALUES(estimated_gdp),
		flag_url = VALUES(flag_url),
		last_refreshed_at = VALUES(last_refreshed_at)`

	stmt, err := tx.PrepareContext(ctx, qUpsert)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err = stmt.ExecContext(ctx, rec.Name, rec.Capital, rec.Region,
			rec.Population, rec.CurrencyCode, rec.ExchangeRate,
			rec.EstimatedGDP, rec.FlagURL, refreshedAt); err != nil {
			return err
		}
	}

	const qStatus = `INSERT INTO refresh_status (id, total_countries, last_refreshed_at)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE
		total_countries = VALUES(total_countries),
		last_refreshed_at = VALUES(last_refreshed_at)`
	_, err = tx.ExecContext(ctx, qStatus, statusRowID, len(records), refreshedAt)
	return err
}

// List returns countries matching the filter.  Region and currency are
// optional equality filters; the sort falls back to insertion (id) order
// when unset or unrecognized.  MySQL places NULL estimated_gdp values
// last under DESC ordering, which is the contract for gdp_desc.
func (r *CountryRepo) List(ctx context.Context, f CountryFilter) ([]*model.Country, error) {
	q := `SELECT ` + countryColumns + ` FROM countries`
	var (
		where []string
		args  []any
	)
	if f.Region != "" {
		where = append(where, "region = ?")
		args = append(args, f.Region)
	}
	if f.Currency != "" {
		where = append(where, "currency_code = ?")
		args = append(args, f.Currency)
	}
	for i, cond := range where {
		if i == 0 {
			q += " WHERE " + cond
		} else {
			q += " AND " + cond
		}
	}
	switch f.Sort {
	case SortGDPDesc:
		q += " ORDER BY estimated_gdp DESC"
	case SortGDPAsc:
		q += " ORDER BY estimated_gdp ASC"
	case SortPopDesc:
		q += " ORDER BY population DESC"
	case SortPopAsc:
		q += " ORDER BY population ASC"
	default:
		q += " ORDER BY id"
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Country{}
	for rows.Next() {
		c, err := scanCountry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByName fetches a single country by name.  The comparison is
// case-insensitive through the column collation.  It returns
// ErrCountryNotFound if no row matches.
func (r *CountryRepo) GetByName(ctx context.Context, name string) (*model.Country, error) {
	const q = `SELECT ` + countryColumns + ` FROM countries WHERE name = ?`
	c, err := scanCountry(r.db.QueryRowContext(ctx, q, name))
	if err == sql.ErrNoRows {
		return nil, ErrCountryNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteByName removes a country by case-insensitive name match.  It
// returns ErrCountryNotFound when no row was affected.  Deletion is not
// transactional with anything else and does not touch the refresh
// status, which describes the last refresh batch rather than the current
// table contents.
func (r *CountryRepo) DeleteByName(ctx context.Context, name string) error {
	const q = `DELETE FROM countries WHERE name = ?`
	res, err := r.db.ExecContext(ctx, q, name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCountryNotFound
	}
	return nil
}

// TopByGDP returns the n highest countries by estimated GDP, skipping
// rows where the estimate is NULL.  Ties break by name ascending so the
// rendered summary is deterministic.
func (r *CountryRepo) TopByGDP(ctx context.Context, n int) ([]*model.Country, error) {
	const q = `SELECT ` + countryColumns + ` FROM countries
		WHERE estimated_gdp IS NOT NULL
		ORDER BY estimated_gdp DESC, name ASC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Country
	for rows.Next() {
		c, err := scanCountry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Status returns the singleton refresh status.  Before the first
// successful refresh the row does not exist and a zero-valued status is
// returned; the row is never created outside a refresh transaction.
func (r *CountryRepo) Status(ctx context.Context) (*model.RefreshStatus, error) {
	const q = `SELECT total_countries, last_refreshed_at FROM refresh_status WHERE id = ?`
	var (
		s  model.RefreshStatus
		ts sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, q, statusRowID).Scan(&s.TotalCountries, &ts)
	if err == sql.ErrNoRows {
		return &model.RefreshStatus{}, nil
	}
	if err != nil {
		return nil, err
	}
	if ts.Valid {
		s.LastRefreshedAt = &ts.Time
	}
	return &s, nil
}
