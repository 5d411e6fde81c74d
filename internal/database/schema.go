package database

import (
	"context"
	"database/sql"
)

// The utf8mb4 CI collation on `countries.name` makes both the unique
// index and every name lookup case-insensitive, which is how the API
// matches and deduplicates country names.
//
// `refresh_status` holds exactly one row under the fixed id 1.  That
// fixed key is an invariant: the table describes a single global state
// and must never grow a second row.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS countries (
		id                BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name              VARCHAR(255) NOT NULL,
		capital           VARCHAR(255) NULL,
		region            VARCHAR(100) NULL,
		population        BIGINT NOT NULL DEFAULT 0,
		currency_code     VARCHAR(10) NULL,
		exchange_rate     DOUBLE NULL,
		estimated_gdp     DOUBLE NULL,
		flag_url          VARCHAR(512) NULL,
		last_refreshed_at DATETIME NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_countries_name (name),
		KEY idx_countries_region (region),
		KEY idx_countries_currency_code (currency_code),
		KEY idx_countries_estimated_gdp (estimated_gdp)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_0900_ai_ci`,

	`CREATE TABLE IF NOT EXISTS refresh_status (
		id                TINYINT UNSIGNED NOT NULL,
		total_countries   INT NOT NULL DEFAULT 0,
		last_refreshed_at DATETIME NULL,
		PRIMARY KEY (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// InitSchema creates the application tables when they do not exist yet.
// It is safe to call on every startup.
func InitSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
