package interfaces

import "context"

// -----------------------------------------------------------------------------
// INetworkManager defines the contract for HTTP requests routed through the relay.
// -----------------------------------------------------------------------------

type INetworkManager interface {

	// -----------------------------------------------------------------------------

	// Get performs a GET request to the specified URL with parameters.
	// Returns the upstream payload (relay envelope removed) or an error.
	Get(ctx context.Context, url string, params map[string]string) ([]byte, error)
}
