package services

import (
	"context"
	"testing"

	"tourmate-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAlert(t *testing.T) {
	env := setupTestEnv(t)
	user, _ := registerUser(t, env, "asha@example.com")

	alert, err := env.alerts.CreateAlert(context.Background(), user.ID, models.CreateAlertInput{
		Latitude:            ptr(12.9),
		Longitude:           ptr(77.6),
		LocationDescription: "MG Road",
	})
	require.NoError(t, err)

	assert.Equal(t, models.AlertStatusSent, alert.Status)
	assert.InDelta(t, 12.9, alert.Latitude, 1e-9)
	assert.InDelta(t, 77.6, alert.Longitude, 1e-9)
	require.NotNil(t, alert.LocationDescription)
	assert.Equal(t, "MG Road", *alert.LocationDescription)
	assert.Nil(t, alert.Message)
	require.NotNil(t, alert.User)
	assert.Equal(t, "+911234567890", alert.User.EmergencyContact1)
	assert.Equal(t, "O+", alert.User.BloodGroup)
}

func TestCreateAlert_Validation(t *testing.T) {
	env := setupTestEnv(t)
	user, _ := registerUser(t, env, "asha@example.com")
	ctx := context.Background()

	_, err := env.alerts.CreateAlert(ctx, user.ID, models.CreateAlertInput{Latitude: ptr(91.0), Longitude: ptr(10.0)})
	appErr := requireFieldError(t, err, "latitude")
	assert.Equal(t, []string{"Ensure this value is less than or equal to 90."}, appErr.Fields["latitude"])

	_, err = env.alerts.CreateAlert(ctx, user.ID, models.CreateAlertInput{Latitude: ptr(10.0)})
	requireFieldError(t, err, "longitude")

	var count int64
	require.NoError(t, env.db.Model(&models.SOSAlert{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListHistory(t *testing.T) {
	env := setupTestEnv(t)
	asha, _ := registerUser(t, env, "asha@example.com")
	ravi, _ := registerUser(t, env, "ravi@example.com")
	ctx := context.Background()

	first, err := env.alerts.CreateAlert(ctx, asha.ID, models.CreateAlertInput{Latitude: ptr(1.0), Longitude: ptr(2.0)})
	require.NoError(t, err)
	second, err := env.alerts.CreateAlert(ctx, asha.ID, models.CreateAlertInput{Latitude: ptr(3.0), Longitude: ptr(4.0), Message: "lost"})
	require.NoError(t, err)
	_, err = env.alerts.CreateAlert(ctx, ravi.ID, models.CreateAlertInput{Latitude: ptr(5.0), Longitude: ptr(6.0)})
	require.NoError(t, err)

	alerts, err := env.alerts.ListHistory(ctx, asha.ID)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, second.ID, alerts[0].ID)
	assert.Equal(t, first.ID, alerts[1].ID)
}

func TestListHistory_ShowsCurrentUserDetails(t *testing.T) {
	env := setupTestEnv(t)
	user, _ := registerUser(t, env, "asha@example.com")
	ctx := context.Background()

	_, err := env.alerts.CreateAlert(ctx, user.ID, models.CreateAlertInput{Latitude: ptr(1.0), Longitude: ptr(2.0)})
	require.NoError(t, err)

	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("emergency_contact_1", "+910000000000").Error)

	alerts, err := env.alerts.ListHistory(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "+910000000000", alerts[0].User.EmergencyContact1)
}

func TestDeleteUser_CascadesToAlerts(t *testing.T) {
	env := setupTestEnv(t)
	user, _ := registerUser(t, env, "asha@example.com")

	_, err := env.alerts.CreateAlert(context.Background(), user.ID, models.CreateAlertInput{Latitude: ptr(1.0), Longitude: ptr(2.0)})
	require.NoError(t, err)
	require.NoError(t, env.db.Delete(&models.User{}, user.ID).Error)

	var count int64
	require.NoError(t, env.db.Model(&models.SOSAlert{}).Count(&count).Error)
	assert.Zero(t, count)
}
