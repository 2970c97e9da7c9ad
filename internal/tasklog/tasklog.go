package tasklog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/reservodojo/trainer/internal/render"
	"github.com/reservodojo/trainer/pkg/booking"
)

// Outcome statuses.
const (
	StatusFinished = "finished"
	StatusSkipped  = "skipped"
)

// Outcome is the trainee-supplied result for one task.
type Outcome struct {
	BookingNumber string `json:"booking_number,omitempty"`
	Status        string `json:"status"`
}

// Record is one line of the session log.
type Record struct {
	Timestamp     time.Time `json:"timestamp"`
	TaskID        uuid.UUID `json:"task_id"`
	Seq           int       `json:"seq"`
	Kind          string    `json:"kind"`
	Guests        []string  `json:"guests"`
	RoomCategory  string    `json:"room_category"`
	CheckIn       string    `json:"check_in"`
	CheckOut      string    `json:"check_out"`
	Nights        int       `json:"nights"`
	ExtraServices []string  `json:"extra_services,omitempty"`
	Breakfast     string    `json:"breakfast,omitempty"`
	FollowUp      string    `json:"follow_up,omitempty"`
	PriorSummary  string    `json:"prior,omitempty"`
	Change        string    `json:"change,omitempty"`
	Outcome       Outcome   `json:"outcome"`
}

// NewRecord flattens a scenario and its outcome into a log record.
func NewRecord(s *booking.Scenario, o Outcome, now time.Time) Record {
	rec := Record{
		Timestamp:     now,
		TaskID:        s.ID,
		Seq:           s.Seq,
		Kind:          string(s.Kind),
		Guests:        s.Booking.GuestNames(),
		RoomCategory:  s.Booking.Category.Name,
		CheckIn:       s.Booking.CheckIn.String(),
		CheckOut:      s.Booking.CheckOut.String(),
		Nights:        s.Booking.Nights(),
		ExtraServices: s.Booking.ExtraServices,
		Outcome:       o,
	}
	if s.Booking.Breakfast != nil {
		rec.Breakfast = s.Booking.Breakfast.String()
	}
	if s.FollowUp != nil {
		rec.FollowUp = s.FollowUp.Description
	}
	if s.Kind == booking.ChangeBooking {
		rec.PriorSummary = fmt.Sprintf("%s, %s..%s, %d guests",
			s.Prior.Category.Name, s.Prior.CheckIn, s.Prior.CheckOut, s.Prior.PartySize())
		rec.Change = s.Delta.Describe()
	}
	return rec
}

// WriteError reports a failed append. It is recoverable: the session may
// continue, only this task's record did not persist.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write session log %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Writer appends records to one per-session JSONL file and writes per-task
// text artifacts. Records are never rewritten.
type Writer struct {
	file   *os.File
	path   string
	dir    string
	logger *slog.Logger
}

// Open creates the session's log file under dir. The logs and tasks
// directories are created as needed.
func Open(dir string, sessionID uuid.UUID, logger *slog.Logger) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory %s: %w", dir, err)
	}
	name := fmt.Sprintf("session_%s_%s.jsonl",
		time.Now().Format("2006-01-02_15-04-05"), sessionID.String()[:8])
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open session log %s: %w", path, err)
	}
	return &Writer{file: f, path: path, dir: dir, logger: logger}, nil
}

func (w *Writer) Path() string {
	return w.path
}

// Append writes one record as a JSON line.
func (w *Writer) Append(rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return &WriteError{Path: w.path, Err: err}
	}
	if _, err := w.file.Write(append(data, '\n')); err != nil {
		w.logger.Error("session log append failed", "path", w.path, "error", err)
		return &WriteError{Path: w.path, Err: err}
	}
	return nil
}

// WriteArtifact writes the per-task text file for a finished task and
// returns its path.
func (w *Writer) WriteArtifact(s *booking.Scenario, bookingNumber string, finishedAt time.Time) (string, error) {
	tasksDir := filepath.Join(w.dir, "tasks")
	if err := os.MkdirAll(tasksDir, 0o755); err != nil {
		return "", &WriteError{Path: tasksDir, Err: err}
	}
	name := fmt.Sprintf("task_%03d_%s_BN-%s.txt", s.Seq, s.ID.String()[:8], sanitizeFilename(bookingNumber))
	path := filepath.Join(tasksDir, name)

	content := render.ArtifactText(s, bookingNumber, finishedAt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		w.logger.Error("task artifact write failed", "path", path, "error", err)
		return "", &WriteError{Path: path, Err: err}
	}
	return path, nil
}

func (w *Writer) Close() error {
	return w.file.Close()
}

var (
	whitespaceRun       = regexp.MustCompile(`\s+`)
	unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)
)

func sanitizeFilename(text string) string {
	text = whitespaceRun.ReplaceAllString(text, "_")
	text = unsafeFilenameChars.ReplaceAllString(text, "")
	if text == "" {
		return "UNKNOWN"
	}
	if len(text) > 40 {
		return text[:40]
	}
	return text
}
