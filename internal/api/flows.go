package api

import (
	"fmt"
	"net/url"
)

// --- Flow Methods ---

func flowsPath(entityName string, flowType FlowType) string {
	return fmt.Sprintf("/api/entities/%s/flows/%s", url.PathEscape(entityName), flowType.PathSegment())
}

func runPath(flow Flow, flowType FlowType) string {
	return fmt.Sprintf("%s/%s/run", flowsPath(flow.EntityName, flowType), url.PathEscape(flow.Name))
}

func (c *Client) CreateFlow(entity Entity, flowType FlowType, input CreateFlowInput) (*Flow, error) {
	data, err := c.post(flowsPath(entity.Name, flowType), input)
	if err != nil {
		return nil, err
	}
	return decodeOne[Flow](data)
}

// GetInputFlowOptions fetches the run options the hub suggests for flow.
func (c *Client) GetInputFlowOptions(flow Flow) (RunOptions, error) {
	data, err := c.get(runPath(flow, FlowTypeInput))
	if err != nil {
		return nil, err
	}
	opts, err := decodeOne[RunOptions](data)
	if err != nil {
		return nil, err
	}
	if *opts == nil {
		return RunOptions{}, nil
	}
	return *opts, nil
}

func (c *Client) RunInputFlow(flow Flow, options RunOptions) error {
	if options == nil {
		options = RunOptions{}
	}
	_, err := c.post(runPath(flow, FlowTypeInput), options)
	if err != nil {
		return err
	}
	c.logger.Info("input flow started", "entity", flow.EntityName, "flow", flow.Name)
	return nil
}

func (c *Client) RunHarmonizeFlow(flow Flow) error {
	_, err := c.post(runPath(flow, FlowTypeHarmonize), nil)
	if err != nil {
		return err
	}
	c.logger.Info("harmonize flow started", "entity", flow.EntityName, "flow", flow.Name)
	return nil
}
