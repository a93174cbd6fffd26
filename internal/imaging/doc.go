// Package imaging provides the image-level stages of marker detection.
//
// This package covers everything that operates on whole color images:
// decoding and saving files, normalizing every input to the canonical
// resolution, converting to the HSV color space, and blurring the HSV
// channels before band matching. Binary masks and shape analysis live in
// the detection package.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//
// # HSV Scale
//
// HSV values use the compact 8-bit convention shared by most marker color
// tables:
//   - Hue: 0-180 (degrees divided by two)
//   - Saturation: 0-255
//   - Value: 0-255
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Every other function is
// stateless and returns a new image instead of modifying its input, so calls
// on different images (or on the same read-only image) can run concurrently.
//
// # Error Handling
//
// Inputs that cannot be decoded return errors wrapping ErrDecode; callers
// check for it with errors.Is and skip the input.
package imaging
