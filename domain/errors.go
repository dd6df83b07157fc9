package domain

import "errors"

// ErrMalformedPayload indicates a server record that is structurally
// unrecognizable, as opposed to one merely missing optional fields.
var ErrMalformedPayload = errors.New("malformed payload")

// ErrOrderNotFound indicates a tracking lookup for an order code the backend
// does not know. Kept distinct from transport errors so callers can present
// "order not found" instead of a generic failure.
var ErrOrderNotFound = errors.New("order not found")
