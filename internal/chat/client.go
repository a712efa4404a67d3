package chat

// Client is one connected end-user device managed by the hub. It abstracts
// the underlying transport so the ManagerService can treat connection
// types uniformly.
type Client interface {
	// GetUserID returns the authenticated user behind the connection.
	GetUserID() string
	// Run starts the client's read and write pumps.
	Run()
	// Close shuts the connection and releases its resources.
	Close()
}
