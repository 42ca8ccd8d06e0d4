package transcription

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"classroom-api/internal/logger"
	"classroom-api/internal/models"

	"github.com/google/uuid"
)

type fakeBlobs struct {
	mu        sync.Mutex
	downloads []string
	failWith  error
}

func (f *fakeBlobs) Download(_ context.Context, objectKey, destPath string) error {
	f.mu.Lock()
	f.downloads = append(f.downloads, objectKey)
	f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	return os.WriteFile(destPath, []byte("audio"), 0o644)
}

type fakeMedia struct {
	duration int

	mu       sync.Mutex
	extracts map[string]int // clip path -> start offset
}

func (f *fakeMedia) Probe(context.Context, string) (int, error) {
	return f.duration, nil
}

func (f *fakeMedia) Extract(_ context.Context, _, destPath string, startSeconds, _ int) error {
	f.mu.Lock()
	if f.extracts == nil {
		f.extracts = make(map[string]int)
	}
	f.extracts[destPath] = startSeconds
	f.mu.Unlock()
	return os.WriteFile(destPath, []byte("clip"), 0o644)
}

func (f *fakeMedia) offsets() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int, 0, len(f.extracts))
	for _, start := range f.extracts {
		out = append(out, start)
	}
	sort.Ints(out)
	return out
}

// fakeTranscriber names each result after its clip index and, when staggered,
// finishes later clips first to prove ordering comes from the plan.
type fakeTranscriber struct {
	stagger  bool
	failIdx  int // -1 disables
	numClips int
}

func clipIndex(filePath string) int {
	var idx int
	base := filepath.Base(filePath)
	fmt.Sscanf(base, "chunk-%03d", &idx)
	return idx
}

func (f *fakeTranscriber) Transcribe(_ context.Context, filePath string) (string, error) {
	idx := clipIndex(filePath)
	if f.failIdx >= 0 && idx == f.failIdx {
		return "", errors.New("speech service returned 503")
	}
	if f.stagger {
		time.Sleep(time.Duration(f.numClips-idx) * 20 * time.Millisecond)
	}
	return fmt.Sprintf("chunk-%d", idx), nil
}

type fakeGenerator struct {
	gotTranscript string
}

func (f *fakeGenerator) GenerateTasks(_ context.Context, transcript string) ([]models.GeneratedTask, error) {
	f.gotTranscript = transcript
	return []models.GeneratedTask{{Question: "q", Answer: "a", Options: []string{"a", "b", "c", "d"}}}, nil
}

type fakeLectures struct {
	lecture *models.Lecture

	mu         sync.Mutex
	transcript string
	saved      bool
}

func (f *fakeLectures) GetByID(_ context.Context, id uuid.UUID) (*models.Lecture, error) {
	if f.lecture == nil || f.lecture.ID != id {
		return nil, errors.New("lecture not found")
	}
	return f.lecture, nil
}

func (f *fakeLectures) AddTranscript(_ context.Context, _ uuid.UUID, transcript string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transcript = transcript
	f.saved = true
	return nil
}

type fakeTasks struct {
	mu       sync.Mutex
	inserted []models.GeneratedTask
}

func (f *fakeTasks) InsertTaskSet(_ context.Context, _ uuid.UUID, tasks []models.GeneratedTask) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = tasks
	return uuid.New(), nil
}

func testConfig() Config {
	return Config{
		ChunkSeconds:       60,
		MinTailSeconds:     5,
		MaxDurationSeconds: 3600,
		MaxConcurrent:      4,
	}
}

func newTestPipeline(duration int, stt Transcriber) (*Pipeline, *fakeBlobs, *fakeMedia, *fakeLectures, *fakeTasks, *fakeGenerator, uuid.UUID) {
	lectureID := uuid.New()
	blobs := &fakeBlobs{}
	mediaTool := &fakeMedia{duration: duration}
	lectures := &fakeLectures{lecture: &models.Lecture{ID: lectureID, Title: "Networks", FilePath: "lectures/networks.mp3"}}
	tasks := &fakeTasks{}
	gen := &fakeGenerator{}

	p := NewPipeline(testConfig(), blobs, mediaTool, stt, gen, lectures, tasks, nil, logger.Discard().Entry)
	return p, blobs, mediaTool, lectures, tasks, gen, lectureID
}

func TestPipelineAggregatesInTimelineOrder(t *testing.T) {
	stt := &fakeTranscriber{stagger: true, failIdx: -1, numClips: 4}
	p, _, _, lectures, tasks, gen, lectureID := newTestPipeline(185, stt)

	if err := p.Run(context.Background(), lectureID); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := "chunk-0 chunk-1 chunk-2 chunk-3"
	if lectures.transcript != want {
		t.Fatalf("transcript = %q, want %q", lectures.transcript, want)
	}
	if gen.gotTranscript != want {
		t.Fatalf("generator saw %q, want %q", gen.gotTranscript, want)
	}
	if len(tasks.inserted) != 1 {
		t.Fatalf("inserted %d tasks, want 1", len(tasks.inserted))
	}
}

func TestPipelineExtractOffsets(t *testing.T) {
	stt := &fakeTranscriber{failIdx: -1}
	p, _, mediaTool, _, _, _, lectureID := newTestPipeline(185, stt)

	if err := p.Run(context.Background(), lectureID); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := mediaTool.offsets()
	want := []int{0, 60, 120, 180}
	if len(got) != len(want) {
		t.Fatalf("extracted %d clips, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("offsets = %v, want %v", got, want)
		}
	}
}

func TestPipelineChunkFailureAbortsRun(t *testing.T) {
	stt := &fakeTranscriber{failIdx: 2}
	p, _, _, lectures, tasks, _, lectureID := newTestPipeline(245, stt)

	err := p.Run(context.Background(), lectureID)
	if err == nil {
		t.Fatal("expected Run to fail when a chunk fails")
	}
	if !strings.Contains(err.Error(), "transcribe chunks") {
		t.Fatalf("unexpected error: %v", err)
	}

	if lectures.saved {
		t.Fatal("partial transcript was persisted")
	}
	if tasks.inserted != nil {
		t.Fatal("task set was persisted despite failed transcription")
	}
}

func TestPipelineRejectsTooShortAudio(t *testing.T) {
	stt := &fakeTranscriber{failIdx: -1}
	p, _, _, lectures, _, _, lectureID := newTestPipeline(3, stt)

	err := p.Run(context.Background(), lectureID)
	if err == nil {
		t.Fatal("expected Run to fail for audio below the tail threshold")
	}
	if !strings.Contains(err.Error(), "too short") {
		t.Fatalf("unexpected error: %v", err)
	}
	if lectures.saved {
		t.Fatal("transcript persisted for unusable audio")
	}
}

func TestPipelineDownloadFailure(t *testing.T) {
	stt := &fakeTranscriber{failIdx: -1}
	p, blobs, _, lectures, _, _, lectureID := newTestPipeline(120, stt)
	blobs.failWith = errors.New("NoSuchKey")

	if err := p.Run(context.Background(), lectureID); err == nil {
		t.Fatal("expected Run to fail when the download fails")
	}
	if lectures.saved {
		t.Fatal("transcript persisted despite download failure")
	}
}
