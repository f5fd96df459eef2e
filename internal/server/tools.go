package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func laneCountProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"minimum":     0,
		"maximum":     27,
		"description": "Optional fixed lane count. 0 (default) detects it from the image",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "soroban_extract",
			Description: "Run the full extraction pipeline on an image: find the soroban frame, rectify it, split it into lanes and bead cells, and build the cell tensor. Returns the frame, lanes, tensor shape and timing.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":                pathProperty(),
					"expected_lane_count": laneCountProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "soroban_detect_frame",
			Description: "Find the soroban frame in an image and return its corners, bounding box and confidence in image coordinates.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "soroban_preprocess",
			Description: "Return one intermediate preprocessing image as base64-encoded PNG. Use this to see why a frame was or was not detected.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"stage": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"normalized", "enhanced", "binary", "edges"},
						"description": "Which stage to return. Default normalized",
						"default":     "normalized",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "soroban_debug_overlay",
			Description: "Run extraction and draw the result as base64-encoded PNG: the frame outline on the source image, or the lane boundaries on the rectified frame.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":                pathProperty(),
					"expected_lane_count": laneCountProperty(),
					"view": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"source", "rectified"},
						"description": "Image to draw on. Default source",
						"default":     "source",
					},
					"frame_color": map[string]interface{}{
						"type":        "string",
						"description": "Frame outline color as hex (e.g. '#00FF00')",
						"default":     "#00FF00",
					},
					"lane_color": map[string]interface{}{
						"type":        "string",
						"description": "Lane boundary color as hex (e.g. '#FF0000')",
						"default":     "#FF0000",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "soroban_config",
			Description: "Return the preprocessing and detection configuration the server is using.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return resultResponse(req.ID, map[string]interface{}{"tools": GetToolDefinitions()})
}
