package handlers

import (
	"net/http"

	"github.com/buzztalks/backend/pkg/cloudinary"
	"github.com/labstack/echo/v4"
)

// UploadHandler proxies media uploads to Cloudinary so the upload preset
// never ships to clients.
type UploadHandler struct {
	cloudinary *cloudinary.Client
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(cld *cloudinary.Client) *UploadHandler {
	return &UploadHandler{cloudinary: cld}
}

// RegisterUploadRoutes registers upload routes
func (h *UploadHandler) RegisterUploadRoutes(g *echo.Group) {
	g.POST("/upload", h.Upload)
}

// Upload accepts a multipart file and returns the hosted media URL
func (h *UploadHandler) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing file")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot open uploaded file")
	}
	defer src.Close()

	url, err := h.cloudinary.Upload(c.Request().Context(), fileHeader.Filename, src)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "Upload failed: "+err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"url": url})
}
