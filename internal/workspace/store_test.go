package workspace_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"promocast.app/engine/core/config"
	"promocast.app/engine/internal/backend"
	"promocast.app/engine/internal/domain"
	"promocast.app/engine/internal/workspace"
)

func newTestStore(mock *mockBackend) *workspace.Store {
	return workspace.NewStore(mock, nil, workspace.Options{
		Autosave: config.AutosaveConfig{
			WorkspaceDelay:  20 * time.Millisecond,
			ParsedDataDelay: 20 * time.Millisecond,
		},
		ConfigTimeout: time.Second,
	})
}

var _ = Describe("Store", func() {
	var (
		mock  *mockBackend
		store *workspace.Store
		ctx   context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		mock = &mockBackend{}
		store = newTestStore(mock)
	})

	AfterEach(func() {
		store.Close()
	})

	Describe("Initialize", func() {
		It("loads the workspace exactly once for concurrent calls", func() {
			var wg sync.WaitGroup
			for i := 0; i < 3; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					Expect(store.Initialize(ctx)).To(Succeed())
				}()
			}
			wg.Wait()

			Eventually(store.Initialized).Should(BeTrue())
			Expect(atomic.LoadInt32(&mock.loadWorkspaceCalls)).To(Equal(int32(1)))
		})

		It("is a no-op after the first completion", func() {
			Expect(store.Initialize(ctx)).To(Succeed())
			Expect(store.Initialize(ctx)).To(Succeed())
			Expect(atomic.LoadInt32(&mock.loadWorkspaceCalls)).To(Equal(int32(1)))
		})

		It("drops file references whose existence probe fails, preserving order", func() {
			mock.loadWorkspaceFn = func(context.Context) domain.WorkspaceSnapshot {
				return domain.WorkspaceSnapshot{
					Event: &domain.Event{ID: "evt-1"},
					FileRefs: []domain.FileReference{
						{ID: "a"}, {ID: "gone"}, {ID: "b"},
					},
				}
			}
			mock.validateFileRefsFn = func(_ context.Context, refs []domain.FileReference) []domain.FileReference {
				valid := make([]domain.FileReference, 0, len(refs))
				for _, ref := range refs {
					if ref.ID != "gone" {
						valid = append(valid, ref)
					}
				}
				return valid
			}

			Expect(store.Initialize(ctx)).To(Succeed())

			state := store.State()
			Expect(state.FileRefs).To(HaveLen(2))
			Expect(state.FileRefs[0].ID).To(Equal("a"))
			Expect(state.FileRefs[1].ID).To(Equal("b"))
		})
	})

	Describe("debounced autosave", func() {
		It("coalesces a burst of mutations into one save with the last arguments", func() {
			mock.loadWorkspaceFn = func(context.Context) domain.WorkspaceSnapshot {
				return domain.WorkspaceSnapshot{Event: &domain.Event{ID: "evt-1"}}
			}
			Expect(store.Initialize(ctx)).To(Succeed())

			var saved domain.WorkspaceSnapshot
			var mu sync.Mutex
			mock.saveWorkspaceFn = func(_ context.Context, snap domain.WorkspaceSnapshot) error {
				mu.Lock()
				saved = snap
				mu.Unlock()
				return nil
			}

			store.SelectPlatforms([]string{"twitter"})
			store.SelectPlatforms([]string{"twitter", "reddit"})
			store.SelectPlatforms([]string{"reddit"})

			Eventually(func() int32 {
				return atomic.LoadInt32(&mock.saveWorkspaceCalls)
			}).Should(Equal(int32(1)))
			Consistently(func() int32 {
				return atomic.LoadInt32(&mock.saveWorkspaceCalls)
			}, "100ms").Should(Equal(int32(1)))

			mu.Lock()
			defer mu.Unlock()
			Expect(saved.Platforms).To(Equal([]string{"reddit"}))
		})

		It("skips the save entirely while the workspace is untouched", func() {
			Expect(store.Initialize(ctx)).To(Succeed())

			// add and remove again: state stays initial, everything empty
			store.ToggleHashtag("#party")
			store.ToggleHashtag("#party")

			Consistently(func() int32 {
				return atomic.LoadInt32(&mock.saveWorkspaceCalls)
			}, "100ms").Should(BeZero())
		})
	})

	Describe("UploadFiles", func() {
		BeforeEach(func() {
			Expect(store.Initialize(ctx)).To(Succeed())
			store.SelectPlatforms([]string{"twitter"})
		})

		It("merges refs, adopts the backend event and derives content for selected platforms", func() {
			mock.uploadFilesFn = func(context.Context, []backend.Upload) (backend.UploadResult, error) {
				return backend.UploadResult{
					Refs: []domain.FileReference{
						{ID: "f1", Name: "flyer.png", URL: "https://files/flyer.png", MimeType: "image/png"},
					},
					Event:    &domain.Event{ID: "evt-7", Title: "Launch Party"},
					Parsed:   &domain.ParsedData{Title: "Launch Party", Date: "2025-05-01", Hashtags: []string{"#launch"}},
					Hashtags: []string{"#party", "#launch"},
				}, nil
			}

			Expect(store.UploadFiles(ctx, []backend.Upload{{Name: "flyer.png"}})).To(Succeed())

			state := store.State()
			Expect(state.Event.ID).To(Equal("evt-7"))
			Expect(state.FileRefs).To(HaveLen(1))
			Expect(state.Parsed.Title).To(Equal("Launch Party"))
			// deduplicated union, not replacement
			Expect(state.Hashtags).To(Equal([]string{"#launch", "#party"}))
			Expect(state.Content).To(HaveKey("twitter"))
			Expect(state.Content["twitter"]["text"]).To(ContainSubstring("Launch Party"))
			Expect(state.WorkflowState).To(Equal(domain.WorkflowContentReady))
		})

		It("derives the expected template variables", func() {
			mock.uploadFilesFn = func(context.Context, []backend.Upload) (backend.UploadResult, error) {
				return backend.UploadResult{
					Refs: []domain.FileReference{
						{ID: "f1", URL: "https://files/flyer.png", MimeType: "image/png"},
					},
					Event:  &domain.Event{ID: "evt-7"},
					Parsed: &domain.ParsedData{Title: "Launch Party", Date: "2025-05-01"},
				}, nil
			}
			Expect(store.UploadFiles(ctx, []backend.Upload{{Name: "flyer.png"}})).To(Succeed())

			vars := store.TemplateVariables()
			Expect(vars["title"]).To(Equal("Launch Party"))
			Expect(vars["eventTitle"]).To(Equal("Launch Party"))
			Expect(vars["date"]).To(Equal("2025-05-01"))
			Expect(vars["eventDate"]).To(Equal("2025-05-01"))
			Expect(vars["image1"]).To(Equal("https://files/flyer.png"))
		})

		It("parks prepared data on the candidate when the backend reports a duplicate", func() {
			mock.uploadFilesFn = func(context.Context, []backend.Upload) (backend.UploadResult, error) {
				return backend.UploadResult{
					Refs:   []domain.FileReference{{ID: "f1", MimeType: "image/png"}},
					Event:  &domain.Event{ID: "evt-new"},
					Parsed: &domain.ParsedData{Title: "Launch Party"},
					Duplicate: &domain.DuplicateCandidate{
						Existing:   domain.Event{ID: "evt-old", Title: "Launch Party vol.1"},
						Similarity: 0.92,
					},
				}, nil
			}

			Expect(store.UploadFiles(ctx, []backend.Upload{{Name: "flyer.png"}})).To(Succeed())

			state := store.State()
			Expect(state.Candidate).NotTo(BeNil())
			Expect(state.Candidate.Parsed.Title).To(Equal("Launch Party"))
			Expect(state.Candidate.Content).To(HaveKey("twitter"))
			// not applied until resolved
			Expect(state.Parsed).To(BeNil())
			Expect(state.Content).NotTo(HaveKey("twitter"))
		})
	})

	Describe("RestoreEvent", func() {
		It("adopts the snapshot verbatim and issues one explicit save", func() {
			mock.restoreSnapshotFn = func(_ context.Context, eventID string) (domain.RestoredWorkspace, error) {
				return domain.RestoredWorkspace{
					WorkspaceSnapshot: domain.WorkspaceSnapshot{
						Event:     &domain.Event{ID: eventID, Title: "Garden Rave"},
						FileRefs:  []domain.FileReference{{ID: "f1"}},
						Hashtags:  []string{"#rave"},
						Platforms: []string{"reddit"},
					},
					Parsed:  &domain.ParsedData{Title: "Garden Rave"},
					Content: domain.PlatformContent{"reddit": {"text": "come thru"}},
				}, nil
			}

			Expect(store.RestoreEvent(ctx, "evt-9")).To(Succeed())

			state := store.State()
			Expect(state.Event.Title).To(Equal("Garden Rave"))
			Expect(state.Platforms).To(Equal([]string{"reddit"}))
			Expect(state.Content["reddit"]["text"]).To(Equal("come thru"))
			Expect(state.WorkflowState).To(Equal(domain.WorkflowContentReady))
			// explicit durable save, not a debounced one
			Expect(atomic.LoadInt32(&mock.saveWorkspaceCalls)).To(BeNumerically(">=", 1))
		})

		It("surfaces an explicit save failure", func() {
			mock.restoreSnapshotFn = func(_ context.Context, eventID string) (domain.RestoredWorkspace, error) {
				return domain.RestoredWorkspace{
					WorkspaceSnapshot: domain.WorkspaceSnapshot{Event: &domain.Event{ID: eventID}},
				}, nil
			}
			mock.saveWorkspaceFn = func(context.Context, domain.WorkspaceSnapshot) error {
				return errors.New("disk full")
			}

			err := store.RestoreEvent(ctx, "evt-9")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("disk full"))
		})
	})

	Describe("NewEvent", func() {
		It("supersedes the current event and clears local state", func() {
			mock.loadWorkspaceFn = func(context.Context) domain.WorkspaceSnapshot {
				return domain.WorkspaceSnapshot{
					Event:    &domain.Event{ID: "evt-1"},
					FileRefs: []domain.FileReference{{ID: "f1"}},
				}
			}
			Expect(store.Initialize(ctx)).To(Succeed())
			Expect(store.State().WorkflowState).To(Equal(domain.WorkflowEventReady))

			store.NewEvent()

			state := store.State()
			Expect(state.Event).To(BeNil())
			Expect(state.FileRefs).To(BeEmpty())
			Expect(state.WorkflowState).To(Equal(domain.WorkflowInitial))
		})
	})

	Describe("SetPlatformField", func() {
		It("merges edits to different platforms without clobbering", func() {
			mock.loadWorkspaceFn = func(context.Context) domain.WorkspaceSnapshot {
				return domain.WorkspaceSnapshot{Event: &domain.Event{ID: "evt-1"}}
			}
			Expect(store.Initialize(ctx)).To(Succeed())

			store.SetPlatformField("twitter", "text", "tweet")
			store.SetPlatformField("reddit", "text", "post")
			store.SetPlatformField("twitter", "text", "tweet v2")

			state := store.State()
			Expect(state.Content["twitter"]["text"]).To(Equal("tweet v2"))
			Expect(state.Content["reddit"]["text"]).To(Equal("post"))
		})
	})
})
