package logger

import (
	"bytes"
	"errors"
	"log"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestFormatFields(t *testing.T) {
	assert.Equal(t, "", formatFields(nil))
	assert.Equal(t, "{events=3}", formatFields(Fields{"events": 3}))
	assert.Equal(t, "{beats=2.50}", formatFields(Fields{"beats": 2.5}))
	assert.Equal(t, "{track=piano}", formatFields(Fields{"track": "piano"}))
}

func TestWithContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/v1/sessions/abc", nil)
	c.Set("request_id", "req-1")
	c.Set("user_id", "user-9")
	c.Set("session_id", "abc")

	fields := WithContext(c)
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/api/v1/sessions/abc", fields["path"])
	assert.Equal(t, "user-9", fields["user_id"])
	assert.Equal(t, "abc", fields["session_id"])
}

func captureLog(t *testing.T, f func()) string {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})
	f()
	return buf.String()
}

func TestFormatFieldsSortsKeys(t *testing.T) {
	got := formatFields(Fields{"track": 2, "beats": 1.5, "name": "bass"})
	assert.Equal(t, "{beats=1.50, name=bass, track=2}", got)
}

func TestLogAPIRequestLevels(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		status int
		want   string
	}{
		{status: 200, want: "[INFO] Request completed"},
		{status: 201, want: "[INFO] Request completed"},
		{status: 404, want: "[WARN] Request failed with client error"},
		{status: 422, want: "[WARN] Request failed with client error"},
		{status: 503, want: "[ERROR] Request failed with server error"},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.status), func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("POST", "/api/v1/timeline", nil)
			c.Set("request_id", "req-7")
			c.Set("session_id", "s-1")

			out := captureLog(t, func() {
				LogAPIRequest(c, 42*time.Millisecond, tt.status)
			})
			assert.True(t, strings.HasPrefix(out, tt.want), out)
			assert.Contains(t, out, "status_code="+strconv.Itoa(tt.status))
			assert.Contains(t, out, "duration_ms=42")
			assert.Contains(t, out, "request_id=req-7")
			assert.Contains(t, out, "session_id=s-1")
			assert.Contains(t, out, "path=/api/v1/timeline")
		})
	}
}

func TestDebugAndErrorWithoutSentry(t *testing.T) {
	out := captureLog(t, func() {
		Debug("Idle session sweep", Fields{"remaining": 3})
		Error("Save failed", errors.New("boom"), Fields{"request_id": "r"})
	})
	assert.Contains(t, out, "[DEBUG] Idle session sweep {remaining=3}")
	assert.Contains(t, out, "[ERROR] Save failed: boom {request_id=r}")
}
