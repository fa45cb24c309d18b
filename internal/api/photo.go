package api

import (
	"errors"   // Error matching
	"io"       // Reading uploads
	"net/http" // HTTP status codes

	"gecko_rack/internal/service" // Photo service

	"github.com/gin-gonic/gin" // Gin web framework
)

// multipartOverhead is the slack allowed on top of the file for form fields and boundaries
const multipartOverhead = 1 << 20

// ListPhotosHandler lists a gecko's gallery
func ListPhotosHandler(photos *service.PhotoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		list, err := photos.List(c.Request.Context(), ownerFrom(c), id)
		if err != nil {
			HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// UploadPhotoHandler accepts a multipart "photo" file and an optional takenAt field
func UploadPhotoHandler(photos *service.PhotoService, maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartOverhead) // Cap the whole request
		header, err := c.FormFile("photo")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				ErrorResponse(c, http.StatusRequestEntityTooLarge, "Photo is too large")
				return
			}
			ErrorResponse(c, http.StatusBadRequest, "A photo file is required")
			return
		}
		if header.Size > maxBytes {
			ErrorResponse(c, http.StatusRequestEntityTooLarge, "Photo is too large")
			return
		}
		takenAtValue := c.PostForm("takenAt")
		takenAt, ok := parseDate(&takenAtValue)
		if !ok {
			ErrorResponse(c, http.StatusBadRequest, "takenAt must be RFC3339 or YYYY-MM-DD")
			return
		}
		file, err := header.Open()
		if err != nil {
			HandleServiceError(c, err)
			return
		}
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxBytes))
		if err != nil {
			HandleServiceError(c, err)
			return
		}
		photo, err := photos.Add(c.Request.Context(), ownerFrom(c), id, data, takenAt)
		if err != nil {
			HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, photo)
	}
}

// SetMainPhotoHandler makes a photo the gecko's main photo
func SetMainPhotoHandler(photos *service.PhotoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		photo, err := photos.SetMain(c.Request.Context(), ownerFrom(c), id)
		if err != nil {
			HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, photo)
	}
}

// DeletePhotoHandler removes a photo and its file
func DeletePhotoHandler(photos *service.PhotoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		if err := photos.Delete(c.Request.Context(), ownerFrom(c), id); err != nil {
			HandleServiceError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
