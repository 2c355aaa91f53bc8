package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"tourmate-backend/internal/middleware"
	"tourmate-backend/internal/models"
	"tourmate-backend/internal/storage"
	"tourmate-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// GetProfile returns the profile of the logged-in user.
func (h *Handler) GetProfile(c *gin.Context) {
	user, err := h.Profile.GetProfile(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		utils.HandleError(c, h.Logger, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "Profile fetched.", gin.H{"user": h.profileJSON(c, user)})
}

// UpdateProfile handles PUT: every editable field must be sent.
func (h *Handler) UpdateProfile(c *gin.Context) {
	h.updateProfile(c, false)
}

// PatchProfile handles PATCH: any subset of editable fields.
func (h *Handler) PatchProfile(c *gin.Context) {
	h.updateProfile(c, true)
}

func (h *Handler) updateProfile(c *gin.Context, partial bool) {
	update, image, closeImage, err := readProfileUpdate(c)
	if err != nil {
		utils.HandleError(c, h.Logger, err)
		return
	}
	defer closeImage()

	user, err := h.Profile.UpdateProfile(c.Request.Context(), middleware.CurrentUser(c).ID, update, image, partial)
	if err != nil {
		utils.HandleError(c, h.Logger, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "Profile updated successfully.", gin.H{"user": h.profileJSON(c, user)})
}

// profileKeys are the payload keys the profile endpoint looks at; anything else is ignored.
var profileKeys = func() map[string]bool {
	keys := map[string]bool{"profile_image": true}
	for _, k := range models.ProfileMutableFields {
		keys[k] = true
	}
	for _, k := range models.ProfileImmutableFields {
		keys[k] = true
	}
	return keys
}()

// readProfileUpdate accepts multipart, urlencoded or JSON bodies.
func readProfileUpdate(c *gin.Context) (models.ProfileUpdate, *storage.Upload, func(), error) {
	noop := func() {}
	update := models.ProfileUpdate{}

	switch c.ContentType() {
	case gin.MIMEMultipartPOSTForm, gin.MIMEPOSTForm:
		if c.ContentType() == gin.MIMEMultipartPOSTForm {
			if _, err := c.MultipartForm(); err != nil {
				return nil, nil, noop, utils.ValidationError(utils.NonFieldErrors, "Malformed multipart body.")
			}
		} else if err := c.Request.ParseForm(); err != nil {
			return nil, nil, noop, utils.ValidationError(utils.NonFieldErrors, "Malformed form body.")
		}
		for key, values := range c.Request.PostForm {
			if profileKeys[key] && len(values) > 0 {
				value := values[0]
				update[key] = &value
			}
		}

		fh, err := c.FormFile("profile_image")
		if errors.Is(err, http.ErrMissingFile) {
			return update, nil, noop, nil
		}
		if err != nil {
			return nil, nil, noop, utils.ValidationError("profile_image", "The submitted data was not a file.")
		}
		file, err := fh.Open()
		if err != nil {
			return nil, nil, noop, fmt.Errorf("open upload: %w", err)
		}
		delete(update, "profile_image")
		return update, &storage.Upload{Filename: fh.Filename, Content: file}, func() { file.Close() }, nil
	}

	var body map[string]interface{}
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, noop, utils.TranslateBindError(err)
	}

	errs := utils.FieldErrors{}
	for key, raw := range body {
		if !profileKeys[key] {
			continue
		}
		switch v := raw.(type) {
		case nil:
			update[key] = nil
		case string:
			update[key] = &v
		case json.Number:
			s := v.String()
			update[key] = &s
		case bool:
			s := strconv.FormatBool(v)
			update[key] = &s
		default:
			errs.Add(key, "Not a valid string.")
		}
	}
	if err := errs.Err(); err != nil {
		return nil, nil, noop, err
	}
	return update, nil, noop, nil
}
