// Package dashboard owns the upload, prediction and metrics state behind the
// main view and updates it only through named operations.
package dashboard

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/yildizm/histodash/internal/api"
	"github.com/yildizm/histodash/internal/logger"
	"github.com/yildizm/histodash/internal/preview"
)

// Badge classes for a prediction label
const (
	BadgeMalignant = "malignant"
	BadgeBenign    = "benign"
)

// Backend is the remote side of the dashboard
type Backend interface {
	Predict(ctx context.Context, up api.Upload) (api.Outcome, error)
	FetchMetrics(ctx context.Context) (*api.Metrics, error)
}

// Upload is the selected file and its preview
type Upload struct {
	Path    string
	Size    int64
	Preview *preview.Handle // nil when the file could not be decoded
}

// Selected reports whether a file is selected
func (u Upload) Selected() bool {
	return u.Path != ""
}

// State is the dashboard's complete mutable state
type State struct {
	Upload     Upload
	Prediction *string
	Error      *string
	Metrics    *api.Metrics
	Loading    bool
}

// Ticket identifies one submit. Only the most recent ticket may change state.
type Ticket uint64

// Controller serializes every state change behind one mutex
type Controller struct {
	backend  Backend
	previews *preview.Manager
	log      *logger.Logger

	mu             sync.Mutex
	state          State
	ticket         Ticket
	pendingPath    string
	submitCancel   context.CancelFunc
	metricsStarted bool
	metricsCancel  context.CancelFunc
	closed         bool
}

// New creates a controller. A nil manager or logger gets a private default.
func New(backend Backend, previews *preview.Manager, log *logger.Logger) *Controller {
	if previews == nil {
		previews = preview.NewManager()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Controller{
		backend:  backend,
		previews: previews,
		log:      log,
	}
}

// State returns a copy of the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SelectFile replaces the selected file; an empty path selects nothing. The
// previous preview is released, prediction and error are cleared and any
// in-flight submit is superseded. A file that is not a decodable image is
// still selected, just without a preview.
func (c *Controller) SelectFile(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("dashboard is closed")
	}

	c.releasePreviewLocked()
	c.supersedeLocked()
	c.state.Prediction = nil
	c.state.Error = nil
	c.state.Upload = Upload{}

	if path == "" {
		c.log.Debug("selection cleared")
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to select file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("failed to select file: %s is not a regular file", path)
	}

	upload := Upload{Path: path, Size: info.Size()}
	handle, err := c.previews.Acquire(path)
	if err != nil {
		c.log.WarnWithFields("no preview for selected file", []logger.Field{logger.F("path", path), logger.Error(err)})
	} else {
		upload.Preview = handle
	}
	c.state.Upload = upload

	c.log.DebugWithFields("file selected", []logger.Field{logger.F("path", path), logger.F("size", info.Size())})
	return nil
}

// FetchMetrics requests the classification report once. Later calls do
// nothing. Failures are logged and leave Metrics unset; they never reach the
// error shown to the user.
func (c *Controller) FetchMetrics(ctx context.Context) error {
	c.mu.Lock()
	if c.closed || c.metricsStarted {
		c.mu.Unlock()
		return nil
	}
	c.metricsStarted = true
	ctx, cancel := context.WithCancel(ctx)
	c.metricsCancel = cancel
	c.mu.Unlock()
	defer cancel()

	metrics, err := c.backend.FetchMetrics(ctx)
	c.ApplyMetrics(metrics, err)
	return err
}

// ApplyMetrics stores a fetched report. The first report wins; errors and
// results arriving after Close are dropped.
func (c *Controller) ApplyMetrics(m *api.Metrics, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.metricsCancel = nil
	if c.closed {
		return
	}
	if err != nil {
		c.log.WarnWithFields("metrics unavailable", []logger.Field{logger.Error(err)})
		return
	}
	if m == nil || c.state.Metrics != nil {
		return
	}
	report := *m
	c.state.Metrics = &report
}

// BeginSubmit starts a submit for the selected file. It returns false, and
// changes nothing, when no file is selected or a submit is already loading.
func (c *Controller) BeginSubmit() (Ticket, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || !c.state.Upload.Selected() || c.state.Loading {
		return 0, false
	}

	c.ticket++
	c.pendingPath = c.state.Upload.Path
	c.state.Loading = true
	c.state.Prediction = nil
	c.state.Error = nil
	return c.ticket, true
}

// Submit posts the file captured by BeginSubmit and resolves the outcome.
// A superseded ticket returns without a request.
func (c *Controller) Submit(ctx context.Context, t Ticket) {
	c.mu.Lock()
	if c.closed || t != c.ticket || !c.state.Loading {
		c.mu.Unlock()
		return
	}
	path := c.pendingPath
	ctx, cancel := context.WithCancel(ctx)
	c.submitCancel = cancel
	c.mu.Unlock()
	defer cancel()

	start := time.Now()
	outcome, err := c.post(ctx, path)
	c.log.DebugWithFields("submit settled", []logger.Field{logger.F("ticket", uint64(t)), logger.Duration(time.Since(start))})
	c.Resolve(t, outcome, err)
}

// Predict is BeginSubmit followed by Submit. It reports whether a submit ran.
func (c *Controller) Predict(ctx context.Context) bool {
	t, ok := c.BeginSubmit()
	if !ok {
		return false
	}
	c.Submit(ctx, t)
	return true
}

func (c *Controller) post(ctx context.Context, path string) (api.Outcome, error) {
	// #nosec G304 - path was selected by the user
	f, err := os.Open(path)
	if err != nil {
		return api.Outcome{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer func() { _ = f.Close() }()

	return c.backend.Predict(ctx, api.Upload{Name: filepath.Base(path), Content: f})
}

// Resolve applies a submit result. Loading is always cleared for the current
// ticket; a superseded ticket is discarded and false is returned.
func (c *Controller) Resolve(t Ticket, outcome api.Outcome, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || t != c.ticket {
		c.log.DebugWithFields("discarding superseded response", []logger.Field{logger.F("ticket", uint64(t)), logger.F("current", uint64(c.ticket))})
		return false
	}

	c.state.Loading = false
	c.submitCancel = nil

	if err != nil {
		c.log.WarnWithFields("submit failed", []logger.Field{logger.Error(err)})
		c.state.Error = strPtr(api.MsgConnectFailed)
		return true
	}

	switch outcome.Kind {
	case api.OutcomeSuccess:
		c.state.Prediction = strPtr(outcome.Label)
		if outcome.Message != "" {
			c.state.Error = strPtr(outcome.Message)
		}
	case api.OutcomeFailure:
		c.state.Error = strPtr(outcome.Message)
	default:
		c.state.Error = strPtr(api.MsgMalformedResponse)
	}
	return true
}

// BadgeClass returns the badge class for the current prediction
func (c *Controller) BadgeClass() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Prediction == nil {
		return BadgeBenign
	}
	return BadgeClass(*c.state.Prediction)
}

// ShowAnalytics reports whether both a prediction and metrics are present
func (c *Controller) ShowAnalytics() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.ShowAnalytics()
}

// Close cancels outstanding requests and releases the preview. Results that
// arrive afterwards are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.supersedeLocked()
	if c.metricsCancel != nil {
		c.metricsCancel()
		c.metricsCancel = nil
	}
	c.releasePreviewLocked()
	c.state.Upload.Preview = nil
}

// supersedeLocked invalidates any in-flight submit
func (c *Controller) supersedeLocked() {
	c.ticket++
	c.state.Loading = false
	c.pendingPath = ""
	if c.submitCancel != nil {
		c.submitCancel()
		c.submitCancel = nil
	}
}

func (c *Controller) releasePreviewLocked() {
	if c.state.Upload.Preview != nil {
		c.state.Upload.Preview.Release()
	}
}

// ShowAnalytics reports whether both a prediction and metrics are present
func (s State) ShowAnalytics() bool {
	return s.Prediction != nil && s.Metrics != nil
}

// BadgeClass picks the badge style for a label: malignant when the label
// contains "malignant" in any case, benign otherwise.
func BadgeClass(label string) string {
	if strings.Contains(strings.ToLower(label), BadgeMalignant) {
		return BadgeMalignant
	}
	return BadgeBenign
}

func strPtr(s string) *string {
	return &s
}
