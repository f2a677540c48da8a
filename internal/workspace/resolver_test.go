package workspace_test

import (
	"context"
	"errors"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"promocast.app/engine/internal/backend"
	"promocast.app/engine/internal/domain"
	"promocast.app/engine/internal/workspace"
)

var _ = Describe("ResolveDuplicate", func() {
	var (
		mock  *mockBackend
		store *workspace.Store
		ctx   context.Context
	)

	raiseCandidate := func() {
		mock.uploadFilesFn = func(context.Context, []backend.Upload) (backend.UploadResult, error) {
			return backend.UploadResult{
				Refs:   []domain.FileReference{{ID: "f1", MimeType: "image/png"}},
				Event:  &domain.Event{ID: "evt-new"},
				Parsed: &domain.ParsedData{Title: "Launch Party", Hashtags: []string{"#launch"}},
				Duplicate: &domain.DuplicateCandidate{
					Existing:   domain.Event{ID: "evt-old", Title: "Launch Party vol.1"},
					Similarity: 0.9,
				},
			}, nil
		}
		Expect(store.UploadFiles(ctx, []backend.Upload{{Name: "flyer.png"}})).To(Succeed())
		Expect(store.HasCandidate()).To(BeTrue())
	}

	BeforeEach(func() {
		ctx = context.Background()
		mock = &mockBackend{}
		store = newTestStore(mock)
		Expect(store.Initialize(ctx)).To(Succeed())
		store.SelectPlatforms([]string{"twitter"})
	})

	AfterEach(func() {
		store.Close()
	})

	It("returns ErrNoCandidate when nothing is pending", func() {
		err := store.ResolveDuplicate(ctx, true)
		Expect(err).To(MatchError(workspace.ErrNoCandidate))
	})

	Context("keeping the new event", func() {
		It("applies the prepared data without a backend round-trip", func() {
			raiseCandidate()

			var loadParsedCalls int32
			mock.loadParsedFn = func(context.Context, string) (*domain.ParsedData, error) {
				atomic.AddInt32(&loadParsedCalls, 1)
				return nil, nil
			}

			Expect(store.ResolveDuplicate(ctx, false)).To(Succeed())

			state := store.State()
			Expect(state.Candidate).To(BeNil())
			Expect(state.Event.ID).To(Equal("evt-new"))
			Expect(state.Parsed.Title).To(Equal("Launch Party"))
			Expect(state.Hashtags).To(ContainElement("#launch"))
			Expect(state.Content).To(HaveKey("twitter"))
			Expect(atomic.LoadInt32(&loadParsedCalls)).To(BeZero())
		})
	})

	Context("switching to the existing event", func() {
		It("adopts the existing event and its parsed data", func() {
			raiseCandidate()

			mock.loadParsedFn = func(_ context.Context, eventID string) (*domain.ParsedData, error) {
				Expect(eventID).To(Equal("evt-old"))
				return &domain.ParsedData{Title: "Launch Party vol.1"}, nil
			}

			Expect(store.ResolveDuplicate(ctx, true)).To(Succeed())

			state := store.State()
			Expect(state.Candidate).To(BeNil())
			Expect(state.Event.ID).To(Equal("evt-old"))
			Expect(state.Parsed.Title).To(Equal("Launch Party vol.1"))
			// the existing event's content stays authoritative
			Expect(state.Content).NotTo(HaveKey("twitter"))
		})

		It("clears the candidate even when the backend load fails", func() {
			raiseCandidate()

			mock.loadParsedFn = func(context.Context, string) (*domain.ParsedData, error) {
				return nil, errors.New("backend down")
			}

			err := store.ResolveDuplicate(ctx, true)
			Expect(err).To(HaveOccurred())
			Expect(store.HasCandidate()).To(BeFalse())
		})
	})
})
