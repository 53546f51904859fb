package handlers

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"go-myshop-agent/internal/actions"
	"go-myshop-agent/internal/models"
)

// maxUploadBytes caps an uploaded image before decoding.
const maxUploadBytes = 5 << 20

// thumbnailWidth is the width product images are stored at.
const thumbnailWidth = 200

func (h *Handler) GetProducts(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.State().Inventory)
}

func (h *Handler) AddProduct(c *gin.Context) {
	var input actions.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	h.mutate(c, http.StatusCreated, func(st models.BusinessState) (models.BusinessState, any, error) {
		return actions.AddProduct(st, input)
	})
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	var input actions.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	id := c.Param("id")
	h.mutate(c, http.StatusOK, func(st models.BusinessState) (models.BusinessState, any, error) {
		return actions.UpdateProduct(st, id, input)
	})
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	h.mutate(c, http.StatusOK, func(st models.BusinessState) (models.BusinessState, any, error) {
		next, err := actions.DeleteProduct(st, id)
		return next, deleted("Product"), err
	})
}

// UploadImage stores a JPEG thumbnail of the uploaded image and returns its
// URL for use as a product image or profile picture.
func (h *Handler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	if file.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File is too large"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read file"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read file"})
		return
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is not a supported image"})
		return
	}
	thumbnail := imaging.Resize(img, thumbnailWidth, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumbnail, imaging.JPEG); err != nil {
		h.fail(c, err)
		return
	}

	filename := uuid.NewString() + ".jpg"
	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		h.fail(c, err)
		return
	}
	if err := os.WriteFile(filepath.Join(h.UploadDir, filename), buf.Bytes(), 0o644); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "File uploaded successfully",
		"url":     h.BaseURL + "/uploads/" + filename,
	})
}
