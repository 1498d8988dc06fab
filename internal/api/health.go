package api

// Status calls /api/status and returns the hub health payload.
func (c *Client) Status() (*Status, error) {
	data, err := c.get("/api/status")
	if err != nil {
		return nil, err
	}
	return decodeOne[Status](data)
}
