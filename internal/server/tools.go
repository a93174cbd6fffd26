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

func scaleProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": "Optional scale factor applied to returned images (e.g., 0.5 to halve them). Default 1.0",
		"default":     1.0,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and file size. The decoded image is cached for later calls on the same path; " +
				"pass reload after the file changes on disk.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"reload": map[string]interface{}{
						"type":        "boolean",
						"description": "Drop the cached copy and read the file again. Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name: "markers_detect",
			Description: "Detect colored circular markers in an image. The image is resized to the canonical resolution, " +
				"segmented per color band, cleaned and filtered by area, radius and circularity. Returns the detections " +
				"(color, center, radius) in canonical coordinates and optionally the annotated image as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"include_image": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the annotated image. Default false",
						"default":     false,
					},
					"scale": scaleProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name: "markers_masks",
			Description: "Return the raw and cleaned binary masks of one color band as base64 PNG, with foreground pixel counts. " +
				"Use this to tune color ranges: the raw mask shows what the range matches, the cleaned mask what survives morphology.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"band": map[string]interface{}{
						"type":        "string",
						"description": "Name of a configured color band (see markers_bands)",
					},
					"scale": scaleProperty(),
				},
				"required": []string{"path", "band"},
			},
		},
		{
			Name: "markers_sample_hsv",
			Description: "Sample the blurred HSV value (H 0-180, S and V 0-255) at a pixel of the canonical image " +
				"and list the color bands whose ranges contain it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate in the canonical image (0 = left)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate in the canonical image (0 = top)",
					},
				},
				"required": []string{"path", "x", "y"},
			},
		},
		{
			Name:        "markers_bands",
			Description: "Return the active detection configuration: canonical size, kernel sizes, color bands and shape thresholds.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
