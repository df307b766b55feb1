package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("http status should always be 200, got %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body failed: %v", err)
	}
	return body
}

func TestErrorCarriesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(RequestIDKey, "req-9")

	ErrorWithData(c, CodeTooManyRequests, "slow down", gin.H{"retry_after": 30})
	body := decodeEnvelope(t, w)
	if body["status_code"].(float64) != CodeTooManyRequests || body["msg"] != "slow down" {
		t.Fatalf("unexpected envelope %v", body)
	}
	data := body["data"].(map[string]interface{})
	if data["request_id"] != "req-9" || data["retry_after"].(float64) != 30 {
		t.Fatalf("unexpected data %v", data)
	}
}

func TestErrorWithoutRequestIDKeepsDataNil(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Unauthorized(c, "login required")
	body := decodeEnvelope(t, w)
	if body["status_code"].(float64) != CodeUnauthorized || body["data"] != nil {
		t.Fatalf("unexpected envelope %v", body)
	}
}

func TestSuccessWithPage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	SuccessWithPage(c, []string{"MC1"}, NewPagination(2, 20, 41))
	body := decodeEnvelope(t, w)
	page := body["pagination"].(map[string]interface{})
	if body["status_code"].(float64) != CodeOK || page["total_page"].(float64) != 3 || page["page"].(float64) != 2 {
		t.Fatalf("unexpected page envelope %v", body)
	}
}

func TestNewPaginationZeroPageSize(t *testing.T) {
	if p := NewPagination(1, 0, 10); p.TotalPage != 0 {
		t.Fatalf("zero page size should not divide, got %+v", p)
	}
}
