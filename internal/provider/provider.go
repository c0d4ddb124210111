// Package provider defines the three-stage fetch pipeline every vendor
// implements, and the registry that exposes vendors by name.
package provider

import (
	"context"

	"datafeed/internal/schema"
)

// Credentials maps credential names such as "fmp_api_key" to secrets.
type Credentials map[string]string

// Fetcher is one dataset of one vendor.
//
// TransformQuery and TransformData are pure. ExtractData is the only stage
// that performs I/O.
type Fetcher interface {
	TransformQuery(params map[string]any) (schema.Record, error)
	ExtractData(ctx context.Context, query schema.Record, creds Credentials) ([]map[string]any, error)
	TransformData(query schema.Record, data []map[string]any) ([]schema.Record, error)
}

// CredentialRequirer is implemented by fetchers that can run without the
// vendor's credentials.
type CredentialRequirer interface {
	RequireCredentials() bool
}

// RequiresCredentials reports whether the executor must check credentials
// before running f. Fetchers require them unless they say otherwise.
func RequiresCredentials(f Fetcher) bool {
	if r, ok := f.(CredentialRequirer); ok {
		return r.RequireCredentials()
	}
	return true
}

// Fetch runs the three stages in order. The first error is returned as is.
func Fetch(ctx context.Context, f Fetcher, params map[string]any, creds Credentials) ([]schema.Record, error) {
	query, err := f.TransformQuery(params)
	if err != nil {
		return nil, err
	}
	data, err := f.ExtractData(ctx, query, creds)
	if err != nil {
		return nil, err
	}
	return f.TransformData(query, data)
}

// ToRecords validates rows through shape. An empty input is reported as
// EmptyDataError.
func ToRecords(shape *schema.Shape, rows []map[string]any) ([]schema.Record, error) {
	if len(rows) == 0 {
		return nil, &EmptyDataError{}
	}
	return shape.ValidateAll(rows)
}
