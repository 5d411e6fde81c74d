// Package repository contains data access logic separated from HTTP
// handlers.  It owns the `countries` table and the singleton
// `refresh_status` row; refresh writes go through UpsertBatch so the
// batch and the status always commit together.
package repository

import "errors"

// ErrCountryNotFound is returned when a country cannot be found in the DB.
var ErrCountryNotFound = errors.New("country not found")
