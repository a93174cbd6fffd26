// Package server implements an MCP (Model Context Protocol) server that exposes
// the marker detection pipeline as tools.
//
// The server is meant for interactive tuning: an MCP client can run detection
// on a photograph, look at the masks of one color band and sample HSV values
// under a marker without rerunning a batch.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - image_load: Load an image and report its metadata
//   - markers_detect: Run the full pipeline and return the detections
//   - markers_masks: Return the raw and cleaned mask of one band
//   - markers_sample_hsv: Sample the blurred HSV value at a canonical pixel
//   - markers_bands: Return the active configuration
//
// All coordinates are in the canonical image, after resizing.
//
// # Image Caching
//
// Decoded images are cached by path and reused across tool calls for the
// lifetime of the process. Pipeline results are not cached.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// Diagnostics are written to the logger passed to New, never to stdout.
package server
