package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"byte_battle/internal/service"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestWindowCounter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	w := newWindowCounter(2, time.Minute)
	w.now = func() time.Time { return now }

	if !w.allow("a") || !w.allow("a") {
		t.Fatalf("first two hits blocked")
	}
	if w.allow("a") {
		t.Fatalf("third hit allowed")
	}
	if !w.allow("b") {
		t.Fatalf("separate key blocked")
	}

	now = now.Add(61 * time.Second)
	if !w.allow("a") {
		t.Fatalf("hit after window blocked")
	}
	if _, ok := w.clients["b"]; ok {
		t.Fatalf("expired key not swept")
	}
}

func TestSimpleRateLimit(t *testing.T) {
	r := gin.New()
	r.GET("/x", SimpleRateLimit(2, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
		codes = append(codes, rec.Code)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}
}

func TestWSAuthAndConnectLimit(t *testing.T) {
	service.InitJWT("test-secret")
	token, err := service.GenerateJWT(42, "Ada", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	r := gin.New()
	r.GET("/ws", WSAuth(), ConnectRateLimit(1, time.Minute), func(c *gin.Context) {
		id, _ := UserID(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "name": DisplayName(c)})
	})

	do := func(url string, header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	if rec := do("/ws", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: %d", rec.Code)
	}
	if rec := do("/ws?token=garbage", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: %d", rec.Code)
	}
	rec := do("/ws?token="+token, "")
	if rec.Code != http.StatusOK || rec.Body.String() != `{"id":42,"name":"Ada"}` {
		t.Fatalf("query token: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do("/ws", "Bearer "+token); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second connect: %d", rec.Code)
	}
}

func TestJWTIgnoresQueryToken(t *testing.T) {
	service.InitJWT("test-secret")
	token, _ := service.GenerateJWT(7, "", time.Hour)

	r := gin.New()
	r.GET("/me", JWT(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me?token="+token, nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("query token accepted by JWT(): %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bearer "+token)
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("bearer token rejected: %d", rec.Code)
	}
}
