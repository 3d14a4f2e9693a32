package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/halewell/halewell/internal/testutil/testlog"
)

func TestStaticTokenValidate(t *testing.T) {
	testlog.Start(t)
	v := StaticToken{Token: "secret"}

	if err := v.Validate("secret"); err != nil {
		t.Errorf("valid token rejected: %v", err)
	}
	if err := v.Validate("wrong"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("wrong token: %v", err)
	}
	if err := v.Validate(""); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("empty token: %v", err)
	}

	empty := StaticToken{}
	if err := empty.Validate(""); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("unconfigured validator accepted: %v", err)
	}
}

func newProtectedRouter(v Validator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/secret", RequireBearer(v), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func TestRequireBearer(t *testing.T) {
	testlog.Start(t)
	r := newProtectedRouter(StaticToken{Token: "secret"})

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer secret", http.StatusOK},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic c2VjcmV0", http.StatusUnauthorized},
		{"bare token", "secret", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/secret", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != tc.want {
			t.Errorf("%s: status = %d, want %d", tc.name, rr.Code, tc.want)
		}
	}
}

func TestFuncValidator(t *testing.T) {
	testlog.Start(t)
	v := FuncValidator(func(token string) error {
		if token == "dynamic" {
			return nil
		}
		return ErrUnauthorized
	})
	if err := v.Validate("dynamic"); err != nil {
		t.Errorf("FuncValidator: %v", err)
	}
	if err := v.Validate("other"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("FuncValidator wrong token: %v", err)
	}
}
