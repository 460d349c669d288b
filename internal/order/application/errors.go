package application

import "errors"

var (
	ErrClientNotActive = errors.New("client is not active")
	ErrOrderNotFound   = errors.New("order not found")
	ErrLineNotFound    = errors.New("order line not found")

	// Collaborator failures. The enclosing transaction is rolled back and the
	// underlying cause stays wrapped for logging.
	ErrProductionUnavailable = errors.New("production service unavailable")
	ErrProductionRejected    = errors.New("production service rejected request")
	ErrShipmentFailed        = errors.New("shipment creation failed")

	// ErrTransactionConflict marks a deadlock or serialization failure; the
	// operation left no partial state and may be retried by the caller.
	ErrTransactionConflict = errors.New("transaction conflict")
)
