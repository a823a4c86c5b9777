package dashboard

import (
	"path/filepath"
	"time"

	"github.com/yildizm/histodash/internal/api"
)

// Report is a serializable view of the dashboard state
type Report struct {
	GeneratedAt time.Time    `json:"generated_at"`
	File        *FileInfo    `json:"file,omitempty"`
	Prediction  *string      `json:"prediction,omitempty"`
	Badge       string       `json:"badge,omitempty"`
	Error       *string      `json:"error,omitempty"`
	Metrics     *api.Metrics `json:"metrics,omitempty"`
	Analytics   bool         `json:"analytics"`
}

// FileInfo describes the selected file
type FileInfo struct {
	Path       string `json:"path"`
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	Format     string `json:"format,omitempty"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	PreviewRef string `json:"preview_ref,omitempty"`
}

// Snapshot captures the current state as a Report
func (c *Controller) Snapshot() *Report {
	return NewReport(c.State())
}

// NewReport builds a Report from a state value
func NewReport(s State) *Report {
	r := &Report{
		GeneratedAt: time.Now(),
		Prediction:  s.Prediction,
		Error:       s.Error,
		Metrics:     s.Metrics,
		Analytics:   s.ShowAnalytics(),
	}
	if s.Prediction != nil {
		r.Badge = BadgeClass(*s.Prediction)
	}

	if s.Upload.Selected() {
		info := &FileInfo{
			Path: s.Upload.Path,
			Name: filepath.Base(s.Upload.Path),
			Size: s.Upload.Size,
		}
		if h := s.Upload.Preview; h != nil {
			info.Format = h.Format()
			info.Width = h.Bounds().Dx()
			info.Height = h.Bounds().Dy()
			info.PreviewRef = h.Ref()
		}
		r.File = info
	}
	return r
}

// HasError reports whether the report carries a user-facing error
func (r *Report) HasError() bool {
	return r.Error != nil
}
