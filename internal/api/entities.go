package api

// --- Entity Methods ---

func (c *Client) GetEntities() ([]Entity, error) {
	data, err := c.get("/api/entities")
	if err != nil {
		return nil, err
	}
	return decodeList[Entity](data)
}

func (c *Client) CreateEntity(input CreateEntityInput) (*Entity, error) {
	data, err := c.post("/api/entities", input)
	if err != nil {
		return nil, err
	}
	return decodeOne[Entity](data)
}
