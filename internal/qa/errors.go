package qa

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedModelOutput is returned when a completion response that must
	// be JSON fails to parse or is missing required fields. It is fatal for
	// the turn; guessing would corrupt the routing decision.
	ErrMalformedModelOutput = errors.New("malformed model output")

	// ErrGatewayUnavailable is returned when the embedding, vector store or
	// completion gateway cannot be reached. Fatal for the turn; no retries.
	ErrGatewayUnavailable = errors.New("gateway unavailable")
)

// gatewayError tags a transport failure from one of the external gateways so
// callers can classify it with errors.Is(err, ErrGatewayUnavailable).
func gatewayError(stage string, err error) error {
	return fmt.Errorf("%s: %w: %w", stage, ErrGatewayUnavailable, err)
}

// malformedError tags an unparseable structured model reply.
func malformedError(stage string, err error) error {
	return fmt.Errorf("%s: %w: %w", stage, ErrMalformedModelOutput, err)
}
