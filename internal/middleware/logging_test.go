package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger_LevelsByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, hook := test.NewNullLogger()
	userID := uuid.New()

	r := gin.New()
	r.Use(RequestLogger(logger))
	r.GET("/ok", func(c *gin.Context) {
		c.Set(UserIDKey, userID)
		c.Status(http.StatusOK)
	})
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/broken", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	cases := []struct {
		path  string
		level logrus.Level
	}{
		{"/ok", logrus.InfoLevel},
		{"/missing", logrus.WarnLevel},
		{"/broken", logrus.ErrorLevel},
	}
	for _, tc := range cases {
		hook.Reset()
		req, _ := http.NewRequest(http.MethodGet, tc.path, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)

		entry := hook.LastEntry()
		require.NotNil(t, entry, tc.path)
		assert.Equal(t, tc.level, entry.Level, tc.path)
		assert.Equal(t, tc.path, entry.Data["path"])
	}

	hook.Reset()
	req, _ := http.NewRequest(http.MethodGet, "/ok", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, userID, hook.LastEntry().Data["user_id"])
}
