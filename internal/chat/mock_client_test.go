package chat_test

type MockClient struct {
	userID string
	closed bool
}

func newMockClient(userID string) *MockClient {
	return &MockClient{userID: userID}
}

func (c *MockClient) GetUserID() string {
	return c.userID
}

func (c *MockClient) Run() {
	// Not needed for testing
}

func (c *MockClient) Close() {
	c.closed = true
}
