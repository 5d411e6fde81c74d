package handler

import (
    "net/http"
    "os"

    "github.com/labstack/echo/v4"
)

// ImageHandler serves GET /countries/image from the summary PNG written
// by the refresh coordinator.
type ImageHandler struct {
    Path string // location of the rendered summary image
}

// NewImageHandler constructs an ImageHandler for the given file path.
func NewImageHandler(path string) *ImageHandler {
    return &ImageHandler{Path: path}
}

// Get returns the current summary image, or 404 when no refresh has ever
// succeeded (the image only exists after the first successful render).
func (h *ImageHandler) Get(c echo.Context) error {
    if _, err := os.Stat(h.Path); err != nil {
        return c.JSON(http.StatusNotFound, map[string]string{"error": "Summary image not found"})
    }
    return c.File(h.Path)
}
