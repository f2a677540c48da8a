package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"promocast.app/engine/internal/backend"
	"promocast.app/engine/internal/domain"
	"promocast.app/engine/internal/http/handler"
	"promocast.app/engine/internal/template"
	"promocast.app/engine/internal/workspace"
)

var _ = Describe("WorkspaceHandler", func() {
	var (
		router *gin.Engine
		store  *mockStore
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		store = &mockStore{}
		h := handler.NewWorkspaceHandler(store)

		ws := router.Group("/api/v1/workspace")
		ws.GET("", h.State)
		ws.POST("/initialize", h.Initialize)
		ws.PUT("/platforms", h.SelectPlatforms)
		ws.PATCH("/parsed-data", h.EditParsedField)
		ws.POST("/files", h.Upload)
		ws.POST("/resolve-duplicate", h.ResolveDuplicate)
		ws.POST("/template/preview", h.PreviewTemplate)
	})

	Describe("State", func() {
		It("returns the store view", func() {
			store.stateFn = func() workspace.State {
				return workspace.State{
					WorkflowState: domain.WorkflowEventReady,
					Event:         &domain.Event{ID: "evt-1", Title: "Launch Party"},
					Initialized:   true,
				}
			}

			req := httptest.NewRequest(http.MethodGet, "/api/v1/workspace", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["workflow_state"]).To(Equal("event_ready"))
			Expect(resp["initialized"]).To(BeTrue())
		})
	})

	Describe("SelectPlatforms", func() {
		It("passes the selection through and returns the new state", func() {
			var selected []string
			store.selectPlatformsFn = func(platforms []string) { selected = platforms }

			body, _ := json.Marshal(map[string]any{"platforms": []string{"twitter", "reddit"}})
			req := httptest.NewRequest(http.MethodPut, "/api/v1/workspace/platforms", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(selected).To(Equal([]string{"twitter", "reddit"}))
		})

		It("rejects a body without platforms", func() {
			req := httptest.NewRequest(http.MethodPut, "/api/v1/workspace/platforms", bytes.NewBufferString(`{}`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("EditParsedField", func() {
		It("returns 400 for an unknown field", func() {
			store.setParsedFieldFn = func(name, value string) error {
				return errors.New("unknown parsed-data field \"nope\"")
			}

			body, _ := json.Marshal(map[string]string{"field": "nope", "value": "x"})
			req := httptest.NewRequest(http.MethodPatch, "/api/v1/workspace/parsed-data", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("Upload", func() {
		It("passes every multipart file through to the store", func() {
			var got []backend.Upload
			store.uploadFilesFn = func(_ context.Context, files []backend.Upload) error {
				got = files
				return nil
			}

			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			part, err := mw.CreateFormFile("files", "flyer.png")
			Expect(err).NotTo(HaveOccurred())
			_, err = part.Write([]byte("png-bytes"))
			Expect(err).NotTo(HaveOccurred())
			Expect(mw.Close()).To(Succeed())

			req := httptest.NewRequest(http.MethodPost, "/api/v1/workspace/files", &buf)
			req.Header.Set("Content-Type", mw.FormDataContentType())
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(got).To(HaveLen(1))
			Expect(got[0].Name).To(Equal("flyer.png"))
			Expect(got[0].Data).To(Equal([]byte("png-bytes")))
		})

		It("rejects a request without files", func() {
			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			Expect(mw.Close()).To(Succeed())

			req := httptest.NewRequest(http.MethodPost, "/api/v1/workspace/files", &buf)
			req.Header.Set("Content-Type", mw.FormDataContentType())
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("ResolveDuplicate", func() {
		It("binds use_existing=false as an explicit choice", func() {
			var resolvedWith *bool
			store.resolveDuplicateFn = func(_ context.Context, useExisting bool) error {
				resolvedWith = &useExisting
				return nil
			}

			body, _ := json.Marshal(map[string]bool{"use_existing": false})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/workspace/resolve-duplicate", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(resolvedWith).NotTo(BeNil())
			Expect(*resolvedWith).To(BeFalse())
		})

		It("returns 409 when no candidate is pending", func() {
			store.resolveDuplicateFn = func(context.Context, bool) error {
				return workspace.ErrNoCandidate
			}

			body, _ := json.Marshal(map[string]bool{"use_existing": true})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/workspace/resolve-duplicate", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusConflict))
		})
	})

	Describe("PreviewTemplate", func() {
		It("renders with the store's variables and lists unresolved placeholders", func() {
			store.templateVariablesFn = func() template.VariableSet {
				return template.VariableSet{"title": "Launch Party"}
			}

			body, _ := json.Marshal(map[string]string{"template": "{title} at {venue}"})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/workspace/template/preview", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["rendered"]).To(Equal("Launch Party at {venue}"))
			Expect(resp["unresolved"]).To(Equal([]any{"venue"}))
		})
	})
})
