package provider

import (
	"context"
	"net/http"
)

//go:generate mockgen -package=providertest -destination=providertest/mock_transport.go -source=transport.go Transport

// Transport performs one outbound GET and returns the decoded JSON body.
// Numbers are decoded as json.Number.
type Transport interface {
	GetJSON(ctx context.Context, url string, header http.Header) (any, error)
}
