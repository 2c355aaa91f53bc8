package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"tourmate-backend/internal/middleware"
	"tourmate-backend/internal/models"
	"tourmate-backend/internal/storage"
	"tourmate-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
)

// ListPhotos returns the caller's diary, optionally filtered by ?search=.
func (h *Handler) ListPhotos(c *gin.Context) {
	photos, err := h.Diary.ListEntries(c.Request.Context(), middleware.CurrentUser(c).ID, c.Query("search"))
	if err != nil {
		utils.HandleError(c, h.Logger, err)
		return
	}

	data := make([]photoResponse, 0, len(photos))
	for i := range photos {
		data = append(data, h.photoJSON(c, &photos[i]))
	}
	utils.APIResponse(c, http.StatusOK, true, "Photo diary.", data)
}

// CreatePhoto takes a multipart upload: image, caption, location, latitude?, longitude?.
func (h *Handler) CreatePhoto(c *gin.Context) {
	errs := utils.FieldErrors{}
	input := models.CreatePhotoInput{
		Caption:   c.PostForm("caption"),
		Location:  c.PostForm("location"),
		Latitude:  formFloat(c, "latitude", errs),
		Longitude: formFloat(c, "longitude", errs),
	}
	if err := errs.Err(); err != nil {
		utils.HandleError(c, h.Logger, err)
		return
	}

	var image *storage.Upload
	fh, err := c.FormFile("image")
	switch {
	case err == nil:
		file, err := fh.Open()
		if err != nil {
			utils.HandleError(c, h.Logger, fmt.Errorf("open upload: %w", err))
			return
		}
		defer file.Close()
		image = &storage.Upload{Filename: fh.Filename, Content: file}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// reported by the service as a missing image
	default:
		utils.HandleError(c, h.Logger, utils.ValidationError("image", "The submitted data was not a file."))
		return
	}

	photo, err := h.Diary.CreateEntry(c.Request.Context(), middleware.CurrentUser(c).ID, input, image)
	if err != nil {
		utils.HandleError(c, h.Logger, err)
		return
	}
	utils.APIResponse(c, http.StatusCreated, true, "Photo added to diary.", gin.H{"photo": h.photoJSON(c, photo)})
}

func (h *Handler) GetPhoto(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		utils.HandleError(c, h.Logger, utils.NotFoundError("Photo not found."))
		return
	}

	photo, err := h.Diary.GetEntry(c.Request.Context(), middleware.CurrentUser(c).ID, id)
	if err != nil {
		utils.HandleError(c, h.Logger, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "Photo detail.", h.photoJSON(c, photo))
}

func (h *Handler) DeletePhoto(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		utils.HandleError(c, h.Logger, utils.NotFoundError("Photo not found."))
		return
	}

	if err := h.Diary.DeleteEntry(c.Request.Context(), middleware.CurrentUser(c).ID, id); err != nil {
		utils.HandleError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// formFloat reads an optional number from the form. Blank means absent.
func formFloat(c *gin.Context, key string, errs utils.FieldErrors) *float64 {
	raw := strings.TrimSpace(c.PostForm(key))
	if raw == "" {
		return nil
	}
	val, err := cast.ToFloat64E(raw)
	if err != nil {
		errs.Add(key, "A valid number is required.")
		return nil
	}
	return &val
}
