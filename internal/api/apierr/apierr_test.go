package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"fieldops-app/internal/domain/accounts"
	"fieldops-app/internal/domain/havs"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{havs.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: m1", havs.ErrMemberNotFound), http.StatusNotFound},
		{havs.ErrWeekExists, http.StatusConflict},
		{accounts.ErrEmailTaken, http.StatusConflict},
		{havs.ErrWeekSubmitted, http.StatusLocked},
		{havs.ErrNothingToSubmit, http.StatusUnprocessableEntity},
		{havs.ErrGangFull, http.StatusBadRequest},
		{fmt.Errorf("%w: Friday", havs.ErrInvalidMinutes), http.StatusBadRequest},
		{accounts.ErrWeakPassword, http.StatusBadRequest},
		{accounts.ErrAdminExists, http.StatusForbidden},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Status(tc.err), tc.err.Error())
	}
}

func TestRespond_HidesUnexpectedErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

	Respond(c, errors.New("pq: password authentication failed"), "Failed to load week")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Failed to load week", body["error"])
}

func TestRespond_ShowsDomainErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/x", nil)

	Respond(c, havs.ErrGangFull, "unused")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"`+havs.ErrGangFull.Error()+`"}`, w.Body.String())
}
