// Package detection turns an HSV image into circular marker detections.
//
// Work is split into the same stages for every color band:
//
//  1. Segment: mark pixels inside any of the band's HSV ranges (logical OR)
//  2. Clean: morphological opening, then closing, with an elliptical
//     structuring element
//  3. FindExternalContours: trace the outer boundary of each region that is
//     not nested inside another region's hole
//  4. Extract: keep regions passing the area, enclosing-radius and
//     circularity thresholds of a ShapeFilter
//
// Each stage returns a new value and never modifies its input, so one HSV
// image can be segmented for several bands concurrently.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// # Masks
//
// A Mask stores one byte per pixel, Foreground (255) or Background (0), so
// that Mask.Gray can hand it to an image encoder unchanged for diagnostics.
//
// # Geometry
//
// ContourArea, ArcLength, MinEnclosingCircle and Circularity operate on a
// single Contour and are exported for tests and tuning tools. None of them
// fail: degenerate contours yield zero values and are rejected by Extract.
package detection
