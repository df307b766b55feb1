package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/jaisdevansh/monu-bhiya/internal/http/response"
	"github.com/jaisdevansh/monu-bhiya/internal/i18n"
	"github.com/jaisdevansh/monu-bhiya/internal/service"

	"github.com/gin-gonic/gin"
)

func respondFor(t *testing.T, err error) response.Envelope {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/api/v1/cart/items", nil)
	RespondServiceError(c, err)
	var env response.Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return env
}

func TestPersistenceErrorsUseGenericMessage(t *testing.T) {
	generic := fmt.Errorf("%w: %w", service.ErrPersistence, errors.New("database is locked"))
	env := respondFor(t, generic)
	if env.StatusCode != response.CodeInternal {
		t.Fatalf("expected 500, got %d", env.StatusCode)
	}
	if env.Msg != i18n.T(i18n.DefaultLocale, "error.persistence_failed") {
		t.Fatalf("generic persistence failure should not mention orders, got %q", env.Msg)
	}

	orderFailure := fmt.Errorf("%w: %w", service.ErrOrderSaveFailed, errors.New("disk full"))
	env = respondFor(t, orderFailure)
	if env.Msg != i18n.T(i18n.DefaultLocale, "error.order_save_failed") {
		t.Fatalf("order save failure should keep its message, got %q", env.Msg)
	}
}

func TestSpecificRulesWinOverKinds(t *testing.T) {
	cases := []struct {
		err  error
		code int
		key  string
	}{
		{service.ErrPhoneInvalid, response.CodeBadRequest, "error.phone_invalid"},
		{service.ErrOtpMismatch, response.CodeInvalidCode, "error.otp_invalid"},
		{service.ErrCheckoutStageInvalid, response.CodeConflict, "error.checkout_stage_invalid"},
		{errors.New("boom"), response.CodeInternal, "error.internal_error"},
	}
	for _, tc := range cases {
		env := respondFor(t, tc.err)
		if env.StatusCode != tc.code || env.Msg != i18n.T(i18n.DefaultLocale, tc.key) {
			t.Fatalf("%v: want %d %q, got %d %q", tc.err, tc.code, tc.key, env.StatusCode, env.Msg)
		}
	}
}
