package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kapu/skincheck-go/internal/domain"
	"github.com/kapu/skincheck-go/pkg/errors"
	"go.uber.org/zap"
)

func newTestClient(url string, timeout time.Duration) *Client {
	return NewClient(Config{BaseURL: url, Timeout: timeout}, zap.NewNop())
}

func TestAnalyzeProductSuccess(t *testing.T) {
	var got analyzeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/analyze_product" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"analysis_report": "보습에 좋은 제품입니다.",
			"good_matches": [{"name": "글리세린", "purpose": "보습"}],
			"bad_matches": [{"name": "향료", "description": "may irritate sensitive skin"}],
			"success": true
		}`))
	}))
	defer srv.Close()

	profile := domain.NewSkinTypeProfile(domain.SkinDry, domain.SkinSensitive)
	result, err := newTestClient(srv.URL, time.Second).AnalyzeProduct(context.Background(), []string{"정제수", "글리세린", "향료"}, profile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.SkinType != "건성,민감성" || len(got.IngredientNames) != 3 {
		t.Fatalf("request = %+v", got)
	}
	if !result.Success || len(result.GoodMatches) != 1 || len(result.CautionMatches) != 1 {
		t.Fatalf("result = %+v", result)
	}
	if result.CautionMatches[0].Description != "may irritate sensitive skin" {
		t.Fatalf("caution = %+v", result.CautionMatches[0])
	}
}

func TestAnalyzeProductFailureKinds(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		timeout time.Duration
		code    string
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			code: errors.CodeRemoteUnavailable,
		},
		{
			name: "success false",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"success": false}`))
			},
			code: errors.CodeRemoteUnavailable,
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html>oops</html>`))
			},
			code: errors.CodeRemoteMalformed,
		},
		{
			name: "missing success flag",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"analysis_report": "x"}`))
			},
			code: errors.CodeRemoteMalformed,
		},
		{
			name: "slow server",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-time.After(500 * time.Millisecond):
				case <-r.Context().Done():
				}
			},
			timeout: 50 * time.Millisecond,
			code:    errors.CodeRemoteTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			timeout := tt.timeout
			if timeout == 0 {
				timeout = time.Second
			}
			_, err := newTestClient(srv.URL, timeout).AnalyzeProduct(context.Background(), []string{"정제수"}, nil)
			if errors.CodeOf(err) != tt.code {
				t.Fatalf("code = %q, want %q (err %v)", errors.CodeOf(err), tt.code, err)
			}
		})
	}
}

func TestAnalyzeProductConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url, time.Second).AnalyzeProduct(context.Background(), []string{"정제수"}, nil)
	if errors.CodeOf(err) != errors.CodeRemoteUnavailable {
		t.Fatalf("code = %q (err %v)", errors.CodeOf(err), err)
	}
	if errors.UserMessage(err) == "" {
		t.Fatal("expected a user-facing message")
	}
}
