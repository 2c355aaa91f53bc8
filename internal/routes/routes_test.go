package routes

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tourmate-backend/internal/blacklist"
	"tourmate-backend/internal/config"
	"tourmate-backend/internal/handlers"
	"tourmate-backend/internal/models"
	"tourmate-backend/internal/services"
	"tourmate-backend/internal/storage"
	"tourmate-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)

type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	utils.PasswordCost = bcrypt.MinCost

	db, err := config.OpenDatabase("sqlite", "file::memory:", logger.Silent)
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	mediaRoot := t.TempDir()
	store := storage.NewLocalStorage(mediaRoot, "/media")
	tokens := utils.NewTokenManager("test-secret", 15*time.Minute, 24*time.Hour)
	log := zap.NewNop()

	h := &handlers.Handler{
		Auth:    services.NewAuthService(db, tokens, blacklist.NewGormBlacklist(db), log),
		Profile: services.NewProfileService(db, store, 1<<20, log),
		Diary:   services.NewDiaryService(db, store, 1<<20, log),
		Alerts:  services.NewAlertService(db, log),
		Admin:   services.NewAdminService(db),
		Storage: store,
		Logger:  log,
	}

	r := gin.New()
	SetupRoutes(r, h, Options{CORSOrigins: []string{"*"}, MediaRoot: mediaRoot, MediaURL: "/media"})
	return r, db
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return serve(t, r, req, token)
}

func serve(t *testing.T, r *gin.Engine, req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func register(t *testing.T, r *gin.Engine, email string) (access, refresh string) {
	t.Helper()
	w, env := doJSON(t, r, http.MethodPost, "/api/auth/register/", "", gin.H{
		"email":               email,
		"full_name":           "Asha Rao",
		"mobile":              "+919876543210",
		"password":            "secret123",
		"confirm_password":    "secret123",
		"blood_group":         "O+",
		"emergency_contact_1": "+911234567890",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		Tokens utils.TokenPair `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.Tokens.Access, data.Tokens.Refresh
}

func photoRequest(t *testing.T, caption, location string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("caption", caption))
	require.NoError(t, mw.WriteField("location", location))
	require.NoError(t, mw.WriteField("latitude", "15.5"))
	part, err := mw.CreateFormFile("image", "sunset.png")
	require.NoError(t, err)
	_, err = part.Write(pngBytes)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/photos/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestPing(t *testing.T) {
	r, _ := setupRouter(t)
	w, env := doJSON(t, r, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
}

func TestAuthFlow(t *testing.T) {
	r, _ := setupRouter(t)
	access, refresh := register(t, r, "asha@example.com")

	w, env := doJSON(t, r, http.MethodPost, "/api/auth/register/", "", gin.H{"email": "asha@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Errors, "password")

	w, _ = doJSON(t, r, http.MethodPost, "/api/auth/login/", "", gin.H{"email": "asha@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/api/auth/login/", "", gin.H{"email": "asha@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = doJSON(t, r, http.MethodPost, "/api/auth/token/refresh/", "", gin.H{"refresh": refresh})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "access")

	w, _ = doJSON(t, r, http.MethodPost, "/api/auth/logout/", "", gin.H{"refresh": refresh})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/api/auth/logout/", access, gin.H{"refresh": refresh})
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = doJSON(t, r, http.MethodPost, "/api/auth/logout/", access, gin.H{"refresh": refresh})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"Token is blacklisted."}, env.Errors["refresh"])

	w, _ = doJSON(t, r, http.MethodPost, "/api/auth/token/refresh/", "", gin.H{"refresh": refresh})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfileEndpoints(t *testing.T) {
	r, _ := setupRouter(t)
	access, _ := register(t, r, "asha@example.com")

	w, _ := doJSON(t, r, http.MethodGet, "/api/profile/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := doJSON(t, r, http.MethodPatch, "/api/profile/", access, gin.H{"location": "Goa", "unknown": "ignored"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var data struct {
		User struct {
			Email    string  `json:"email"`
			Location *string `json:"location"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotNil(t, data.User.Location)
	assert.Equal(t, "Goa", *data.User.Location)

	w, env = doJSON(t, r, http.MethodPatch, "/api/profile/", access, gin.H{"email": "new@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Errors, "email")

	w, env = doJSON(t, r, http.MethodPut, "/api/profile/", access, gin.H{"full_name": "Asha"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Errors, "mobile")
}

func TestPhotoEndpoints(t *testing.T) {
	r, _ := setupRouter(t)
	asha, _ := register(t, r, "asha@example.com")
	ravi, _ := register(t, r, "ravi@example.com")

	w, env := serve(t, r, photoRequest(t, "Sunset", "Goa"), asha)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Photo struct {
			ID       uint64 `json:"id"`
			ImageURL string `json:"image_url"`
		} `json:"photo"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Regexp(t, `^http://example\.com/media/photos/\d{4}/\d{2}/.+\.png$`, created.Photo.ImageURL)

	// the stored image is served back
	mediaPath := created.Photo.ImageURL[len("http://example.com"):]
	w, _ = serveRaw(r, httptest.NewRequest(http.MethodGet, mediaPath, nil))
	assert.Equal(t, http.StatusOK, w.Code)

	photoPath := "/api/photos/" + jsonNumber(created.Photo.ID) + "/"
	w, _ = doJSON(t, r, http.MethodGet, photoPath, ravi, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = doJSON(t, r, http.MethodDelete, photoPath, ravi, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = doJSON(t, r, http.MethodGet, "/api/photos/?search=sun", asha, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	w, env = doJSON(t, r, http.MethodGet, "/api/photos/", ravi, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))

	w, _ = serveRaw(r, withToken(httptest.NewRequest(http.MethodDelete, photoPath, nil), asha))
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = doJSON(t, r, http.MethodGet, photoPath, asha, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreatePhoto_BadCoordinate(t *testing.T) {
	r, _ := setupRouter(t)
	access, _ := register(t, r, "asha@example.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("caption", "No image"))
	require.NoError(t, mw.WriteField("location", "Goa"))
	require.NoError(t, mw.WriteField("longitude", "east"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/photos/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w, env := serve(t, r, req, access)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"A valid number is required."}, env.Errors["longitude"])
}

func TestSOSEndpoints(t *testing.T) {
	r, _ := setupRouter(t)
	access, _ := register(t, r, "asha@example.com")

	w, env := doJSON(t, r, http.MethodPost, "/api/sos/", access, gin.H{"latitude": 91, "longitude": 10})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Errors, "latitude")

	w, env = doJSON(t, r, http.MethodPost, "/api/sos/", access, gin.H{"latitude": "north", "longitude": 10})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"A valid number is required."}, env.Errors["latitude"])

	w, env = doJSON(t, r, http.MethodPost, "/api/sos/", access, gin.H{"latitude": 12.9, "longitude": 77.6, "message": "help"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Alert struct {
			Status            string `json:"status"`
			UserBloodGroup    string `json:"user_blood_group"`
			EmergencyContact1 string `json:"emergency_contact_1"`
		} `json:"alert"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "sent", created.Alert.Status)
	assert.Equal(t, "O+", created.Alert.UserBloodGroup)
	assert.Equal(t, "+911234567890", created.Alert.EmergencyContact1)

	w, env = doJSON(t, r, http.MethodGet, "/api/sos/history/", access, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &history))
	assert.Len(t, history, 1)
}

func serveRaw(r *gin.Engine, req *http.Request) (*httptest.ResponseRecorder, []byte) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w, w.Body.Bytes()
}

func withToken(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func jsonNumber(id uint64) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestAdminEndpoints(t *testing.T) {
	r, db := setupRouter(t)
	staff, _ := register(t, r, "staff@example.com")
	tourist, _ := register(t, r, "asha@example.com")
	require.NoError(t, db.Model(&models.User{}).Where("email = ?", "staff@example.com").Update("is_staff", true).Error)

	w, _ := doJSON(t, r, http.MethodGet, "/api/admin/dashboard/", tourist, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/api/sos/", tourist, gin.H{"latitude": 1, "longitude": 2})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := doJSON(t, r, http.MethodGet, "/api/admin/dashboard/", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total_users":2,"active_users":2,"total_photos":0,"alerts_by_status":{"sent":1,"received":0,"resolved":0}}`, string(env.Data))

	w, env = doJSON(t, r, http.MethodGet, "/api/admin/users/?is_staff=true", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var users []struct {
		Email   string `json:"email"`
		IsStaff bool   `json:"is_staff"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &users))
	require.Len(t, users, 1)
	assert.Equal(t, "staff@example.com", users[0].Email)
	assert.True(t, users[0].IsStaff)

	w, env = doJSON(t, r, http.MethodGet, "/api/admin/users/?is_active=maybe", staff, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Errors, "is_active")

	w, env = doJSON(t, r, http.MethodGet, "/api/admin/sos/?status=bogus", staff, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Errors, "status")

	w, env = doJSON(t, r, http.MethodGet, "/api/admin/sos/?status=sent&search=asha", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var alerts []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &alerts))
	assert.Len(t, alerts, 1)
}

func TestPhotoEndpoints_NonCanonicalIDs(t *testing.T) {
	r, _ := setupRouter(t)
	access, _ := register(t, r, "asha@example.com")

	w, env := serve(t, r, photoRequest(t, "Sunset", "Goa"), access)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Photo struct {
			ID uint64 `json:"id"`
		} `json:"photo"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.EqualValues(t, 1, created.Photo.ID)

	for _, id := range []string{"0x1", "01", "1.9", "+1", "1_0", "0"} {
		w, _ = doJSON(t, r, http.MethodGet, "/api/photos/"+id+"/", access, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, id)
		w, _ = doJSON(t, r, http.MethodDelete, "/api/photos/"+id+"/", access, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, id)
	}

	w, _ = doJSON(t, r, http.MethodGet, "/api/photos/1/", access, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPatchProfile_NumericValues(t *testing.T) {
	r, _ := setupRouter(t)
	access, _ := register(t, r, "asha@example.com")

	req := httptest.NewRequest(http.MethodPatch, "/api/profile/", bytes.NewBufferString(`{"mobile": 911234567890}`))
	req.Header.Set("Content-Type", "application/json")
	w, env := serve(t, r, req, access)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		User struct {
			Mobile string `json:"mobile"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "911234567890", data.User.Mobile)

	req = httptest.NewRequest(http.MethodPatch, "/api/profile/", bytes.NewBufferString(`{"mobile": ["+91"]}`))
	req.Header.Set("Content-Type", "application/json")
	w, env = serve(t, r, req, access)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"Not a valid string."}, env.Errors["mobile"])
}

func TestAdminPhotos_RejectsNonDecimalUserID(t *testing.T) {
	r, db := setupRouter(t)
	staff, _ := register(t, r, "staff@example.com")
	require.NoError(t, db.Model(&models.User{}).Where("email = ?", "staff@example.com").Update("is_staff", true).Error)

	w, env := doJSON(t, r, http.MethodGet, "/api/admin/photos/?user_id=0x1", staff, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Errors, "user_id")
}
