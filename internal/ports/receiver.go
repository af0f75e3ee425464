package ports

// Receiver is an ingestion or serving front end bound to the triage
// service: the webhook HTTP server and the optional SMTP listener.
type Receiver interface {
	// Start starts the receiver; it must not block.
	Start() error

	// Stop shuts the receiver down.
	Stop() error
}
