package core

// Client is the core's handle for one live connection. The transport layer
// drains Events and re-encodes them for the wire.
type Client struct {
	ID     string
	User   string
	Events chan *Event
}

// NewClient constructs a connection handle with a buffered event channel.
// The buffer absorbs fan-out bursts; a client that falls further behind is
// treated as a failed recipient by the router.
func NewClient(id, user string, buffer int) *Client {
	if buffer <= 0 {
		buffer = 16
	}
	return &Client{
		ID:     id,
		User:   user,
		Events: make(chan *Event, buffer),
	}
}
