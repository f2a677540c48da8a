package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"promocast.app/engine/internal/backend"
	"promocast.app/engine/internal/domain"
	"promocast.app/engine/internal/http/handler"
	"promocast.app/engine/internal/publish"
)

var _ = Describe("PublishHandler", func() {
	var (
		router    *gin.Engine
		publisher *mockPublisher
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		publisher = &mockPublisher{}
		h := handler.NewPublishHandler(publisher)

		grp := router.Group("/api/v1/publish")
		grp.POST("", h.Submit)
		grp.GET("/results", h.Results)
	})

	Describe("Submit", func() {
		It("returns the outcome on success", func() {
			publisher.submitFn = func(context.Context) (publish.Outcome, error) {
				return publish.Outcome{
					Success: true,
					Results: map[string]domain.PlatformResult{"twitter": {Success: true}},
					Session: &domain.PublishSession{ID: "sess-1"},
				}, nil
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/publish", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["success"]).To(BeTrue())
		})

		It("maps precondition failures to 422", func() {
			publisher.submitFn = func(context.Context) (publish.Outcome, error) {
				return publish.Outcome{}, publish.ErrNoPlatforms
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/publish", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
		})

		It("maps an in-flight publish to 409", func() {
			publisher.submitFn = func(context.Context) (publish.Outcome, error) {
				return publish.Outcome{}, publish.ErrPublishInFlight
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/publish", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusConflict))
		})

		It("maps an unreachable backend to 502", func() {
			publisher.submitFn = func(context.Context) (publish.Outcome, error) {
				return publish.Outcome{}, backend.ErrUnreachable
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/publish", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadGateway))
		})
	})

	Describe("Results", func() {
		It("returns 404 with no session", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/publish/results", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("returns the session and per-platform statuses", func() {
			publisher.sessionFn = func() *domain.PublishSession {
				return &domain.PublishSession{ID: "sess-1"}
			}
			publisher.statusesFn = func() map[string]domain.PlatformResult {
				return map[string]domain.PlatformResult{
					"twitter": {Success: false, Error: "rate limited"},
				}
			}

			req := httptest.NewRequest(http.MethodGet, "/api/v1/publish/results", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp struct {
				Session domain.PublishSession            `json:"session"`
				Results map[string]domain.PlatformResult `json:"results"`
			}
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Session.ID).To(Equal("sess-1"))
			Expect(resp.Results["twitter"].Error).To(Equal("rate limited"))
		})
	})
})
