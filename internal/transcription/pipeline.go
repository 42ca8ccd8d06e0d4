package transcription

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"classroom-api/internal/media"
	"classroom-api/internal/models"
	"classroom-api/pkg/blobstore"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// LectureStore is the slice of the lecture repository the pipeline needs.
type LectureStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Lecture, error)
	AddTranscript(ctx context.Context, id uuid.UUID, transcript string) error
}

// TaskStore persists the generated task set.
type TaskStore interface {
	InsertTaskSet(ctx context.Context, lectureID uuid.UUID, tasks []models.GeneratedTask) (uuid.UUID, error)
}

// Transcriber converts one local clip to text.
type Transcriber interface {
	Transcribe(ctx context.Context, filePath string) (string, error)
}

// Generator turns a full transcript into MCQ tasks.
type Generator interface {
	GenerateTasks(ctx context.Context, transcript string) ([]models.GeneratedTask, error)
}

// Archive keeps a copy of finished transcripts in the document store.
type Archive interface {
	ArchiveTranscript(ctx context.Context, doc models.TranscriptDoc) error
}

// Config tunes the chunking and fan-out behavior.
type Config struct {
	ChunkSeconds       int
	MinTailSeconds     int
	MaxDurationSeconds int
	MaxConcurrent      int
}

// Pipeline is the transcription worker the dispatch guard wraps: download the
// lecture audio, split the timeline into bounded windows, transcribe the
// clips concurrently, reassemble the transcript in timeline order, generate
// tasks from it and persist everything.
type Pipeline struct {
	cfg      Config
	blobs    blobstore.Store
	media    media.Tool
	stt      Transcriber
	gen      Generator
	lectures LectureStore
	tasks    TaskStore
	archive  Archive // optional
	log      *logrus.Entry
}

func NewPipeline(
	cfg Config,
	blobs blobstore.Store,
	mediaTool media.Tool,
	stt Transcriber,
	gen Generator,
	lectures LectureStore,
	tasks TaskStore,
	archive Archive,
	log *logrus.Entry,
) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		blobs:    blobs,
		media:    mediaTool,
		stt:      stt,
		gen:      gen,
		lectures: lectures,
		tasks:    tasks,
		archive:  archive,
		log:      log,
	}
}

// chunk pairs a planned window with its extracted clip path.
type chunk struct {
	Window
	FilePath string
}

// Run executes the full pipeline for one lecture. Any stage failure aborts
// the run; the dispatch guard logs it and releases the ledger row.
func (p *Pipeline) Run(ctx context.Context, lectureID uuid.UUID) error {
	log := p.log.WithField("lecture_id", lectureID)

	lecture, err := p.lectures.GetByID(ctx, lectureID)
	if err != nil {
		return fmt.Errorf("load lecture: %w", err)
	}

	// Scratch space for the source file and every clip; removed on every
	// exit path.
	scratch, err := os.MkdirTemp("", "transcribe-*")
	if err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	ext := filepath.Ext(lecture.FilePath)
	if ext == "" {
		ext = ".mp3"
	}
	sourcePath := filepath.Join(scratch, "source"+ext)

	if err := p.blobs.Download(ctx, lecture.FilePath, sourcePath); err != nil {
		return fmt.Errorf("download lecture audio: %w", err)
	}

	duration, err := p.media.Probe(ctx, sourcePath)
	if err != nil {
		return fmt.Errorf("probe duration: %w", err)
	}

	if duration > p.cfg.MaxDurationSeconds {
		log.Warnf("Audio is %d minutes, above the %d minute ceiling", duration/60, p.cfg.MaxDurationSeconds/60)
	}

	windows := PlanChunks(duration, p.cfg.ChunkSeconds, p.cfg.MinTailSeconds)
	log.Infof("Total audio duration: %ds, planned %d chunks", duration, len(windows))

	if len(windows) == 0 {
		return fmt.Errorf("audio too short to transcribe: %ds", duration)
	}

	chunks := make([]chunk, len(windows))
	for i, w := range windows {
		chunks[i] = chunk{
			Window:   w,
			FilePath: filepath.Join(scratch, fmt.Sprintf("chunk-%03d%s", w.Index, ext)),
		}
	}

	if err := p.extractAll(ctx, sourcePath, chunks); err != nil {
		return fmt.Errorf("extract chunks: %w", err)
	}

	transcripts, err := p.transcribeAll(ctx, chunks)
	if err != nil {
		return fmt.Errorf("transcribe chunks: %w", err)
	}

	// Aggregation order is window order, never completion order.
	transcript := strings.Join(transcripts, " ")
	log.Infof("Aggregated transcript of %d characters from %d chunks", len(transcript), len(chunks))

	if err := p.lectures.AddTranscript(ctx, lectureID, transcript); err != nil {
		return fmt.Errorf("persist transcript: %w", err)
	}

	if p.archive != nil {
		doc := models.TranscriptDoc{
			LectureID: lectureID.String(),
			Title:     lecture.Title,
			FilePath:  lecture.FilePath,
			Content:   transcript,
		}
		if err := p.archive.ArchiveTranscript(ctx, doc); err != nil {
			// Archival is an audit copy; losing it does not fail the job.
			log.WithError(err).Warn("Failed to archive transcript")
		}
	}

	generated, err := p.gen.GenerateTasks(ctx, transcript)
	if err != nil {
		return fmt.Errorf("generate tasks: %w", err)
	}
	log.Infof("Generation service returned %d tasks", len(generated))

	if _, err := p.tasks.InsertTaskSet(ctx, lectureID, generated); err != nil {
		return fmt.Errorf("persist task set: %w", err)
	}

	return nil
}

// extractAll produces every clip concurrently with stream copy. All-or-
// nothing: the first failure cancels the rest.
func (p *Pipeline) extractAll(ctx context.Context, sourcePath string, chunks []chunk) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxConcurrent())

	for _, c := range chunks {
		c := c
		g.Go(func() error {
			return p.media.Extract(ctx, sourcePath, c.FilePath, c.StartSeconds, p.cfg.ChunkSeconds)
		})
	}
	return g.Wait()
}

// transcribeAll posts every clip concurrently, bounded by MaxConcurrent to
// respect the external service's rate limits. Results land at their window
// index regardless of completion order.
func (p *Pipeline) transcribeAll(ctx context.Context, chunks []chunk) ([]string, error) {
	results := make([]string, len(chunks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxConcurrent())

	for _, c := range chunks {
		c := c
		g.Go(func() error {
			text, err := p.stt.Transcribe(ctx, c.FilePath)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", c.Index, err)
			}
			results[c.Index] = text
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (p *Pipeline) maxConcurrent() int {
	if p.cfg.MaxConcurrent > 0 {
		return p.cfg.MaxConcurrent
	}
	return 8
}
