package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ironsheep/marker-detect/internal/config"
	"github.com/ironsheep/marker-detect/internal/detection"
	"github.com/ironsheep/marker-detect/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "markers_detect").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.Warn().Str("tool", params.Name).Err(err).Msg("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads images from cache as needed
//  4. Runs the pipeline stages the tool reports on
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "markers_detect":
		return s.handleMarkersDetect(ctx, args)
	case "markers_masks":
		return s.handleMarkersMasks(args)
	case "markers_sample_hsv":
		return s.handleMarkersSampleHSV(args)
	case "markers_bands":
		return s.handleMarkersBands()
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Image Information ===

type imageLoadArgs struct {
	Path   string `json:"path"`
	Reload bool   `json:"reload"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Reload {
		s.cache.Evict(a.Path)
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// === Detection ===

type markersDetectArgs struct {
	Path         string  `json:"path"`
	IncludeImage bool    `json:"include_image"`
	Scale        float64 `json:"scale"`
}

// DetectResult is the markers_detect response.
type DetectResult struct {
	Path            string                `json:"path"`
	CanonicalWidth  int                   `json:"canonical_width"`
	CanonicalHeight int                   `json:"canonical_height"`
	Count           int                   `json:"count"`
	Detections      []detection.Detection `json:"detections"`
	Image           *imaging.EncodedImage `json:"image,omitempty"`
}

func (s *Server) handleMarkersDetect(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a markersDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	res, err := s.pipeline.Process(ctx, img)
	if err != nil {
		return nil, err
	}

	out := &DetectResult{
		Path:            a.Path,
		CanonicalWidth:  res.Canonical.Bounds().Dx(),
		CanonicalHeight: res.Canonical.Bounds().Dy(),
		Count:           len(res.Detections),
		Detections:      res.Detections,
	}
	if a.IncludeImage {
		out.Image, err = imaging.EncodePNG(res.Annotated, a.Scale)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

type markersMasksArgs struct {
	Path  string  `json:"path"`
	Band  string  `json:"band"`
	Scale float64 `json:"scale"`
}

// MasksResult is the markers_masks response.
type MasksResult struct {
	Band         string                `json:"band"`
	RawCount     int                   `json:"raw_count"`
	CleanedCount int                   `json:"cleaned_count"`
	Raw          *imaging.EncodedImage `json:"raw"`
	Cleaned      *imaging.EncodedImage `json:"cleaned"`
}

func (s *Server) handleMarkersMasks(args json.RawMessage) (interface{}, error) {
	var a markersMasksArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}

	band, ok := s.pipeline.Config().Band(a.Band)
	if !ok {
		return nil, fmt.Errorf("unknown band: %q", a.Band)
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	prep, err := s.pipeline.Prepare(img)
	if err != nil {
		return nil, err
	}

	masks, _ := s.pipeline.DetectBand(prep, band)
	raw, err := imaging.EncodePNG(masks.Raw.Gray(), a.Scale)
	if err != nil {
		return nil, err
	}
	cleaned, err := imaging.EncodePNG(masks.Cleaned.Gray(), a.Scale)
	if err != nil {
		return nil, err
	}

	return &MasksResult{
		Band:         band.Name,
		RawCount:     masks.Raw.Count(),
		CleanedCount: masks.Cleaned.Count(),
		Raw:          raw,
		Cleaned:      cleaned,
	}, nil
}

type markersSampleArgs struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func (s *Server) handleMarkersSampleHSV(args json.RawMessage) (interface{}, error) {
	var a markersSampleArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	prep, err := s.pipeline.Prepare(img)
	if err != nil {
		return nil, err
	}
	return imaging.SampleHSV(prep.Canonical, prep.HSV, a.X, a.Y, s.pipeline.Config().Bands)
}

func (s *Server) handleMarkersBands() (config.PipelineConfig, error) {
	return s.pipeline.Config(), nil
}
