package domain

import "time"

// Event is the server-assigned identity for one promotion effort. The backend
// owns it; the engine only holds a cached copy. An event is created
// implicitly by the first file upload and superseded by starting a new one.
type Event struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// FileReference describes a file already persisted server-side. The engine
// never holds raw bytes for existing files, only references. A reference is
// only trusted after an existence probe against its URL succeeds.
type FileReference struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

// IsImage reports whether the reference points at image material, which is
// what the template engine exposes as imageN variables.
func (f FileReference) IsImage() bool {
	return len(f.MimeType) >= 6 && f.MimeType[:6] == "image/"
}
