package services

import (
	"context"

	"classroom-api/internal/jobs"
	"classroom-api/internal/models"
	"classroom-api/internal/repositories"
	"classroom-api/internal/transcription"
	"classroom-api/pkg/errors"

	"github.com/google/uuid"
)

// TranscribeArgs is the typed unit of work for one transcription job.
type TranscribeArgs struct {
	LectureID uuid.UUID
}

// transcribeKey derives the ledger identifier for a transcription job. Pure
// function of the lecture id, so duplicate requests collide.
func transcribeKey(args TranscribeArgs) (string, error) {
	if args.LectureID == uuid.Nil {
		return "", errors.WrapError(nil, errors.ErrValidation.Code, "Lecture id is required", errors.ErrValidation.Status)
	}
	return "transcribe-" + args.LectureID.String(), nil
}

type LectureService struct {
	lectures   *repositories.LectureRepository
	tasks      *repositories.TaskRepository
	pipeline   *transcription.Pipeline
	dispatcher *jobs.Dispatcher
}

func NewLectureService(
	lectures *repositories.LectureRepository,
	tasks *repositories.TaskRepository,
	pipeline *transcription.Pipeline,
	dispatcher *jobs.Dispatcher,
) *LectureService {
	return &LectureService{
		lectures:   lectures,
		tasks:      tasks,
		pipeline:   pipeline,
		dispatcher: dispatcher,
	}
}

func (s *LectureService) CreateLecture(ctx context.Context, roomID uuid.UUID, title, filePath string) (*models.Lecture, error) {
	lecture := &models.Lecture{
		ID:       uuid.New(),
		RoomID:   roomID,
		Title:    title,
		FilePath: filePath,
	}
	if err := s.lectures.Create(ctx, lecture); err != nil {
		return nil, err
	}
	return lecture, nil
}

func (s *LectureService) GetLecture(ctx context.Context, id uuid.UUID) (*models.Lecture, error) {
	return s.lectures.GetByID(ctx, id)
}

func (s *LectureService) ListTaskSets(ctx context.Context, lectureID uuid.UUID) ([]*models.TaskSet, error) {
	return s.tasks.ListTaskSetsByLecture(ctx, lectureID)
}

// StartTranscription schedules the chunked transcription pipeline for one
// lecture. Returns true when a job was just started or is still running,
// false when a previous run already completed under this lecture's
// identifier.
func (s *LectureService) StartTranscription(ctx context.Context, lectureID uuid.UUID) (bool, error) {
	return jobs.Schedule(ctx, s.dispatcher, transcribeKey, s.runTranscription, TranscribeArgs{LectureID: lectureID})
}

func (s *LectureService) runTranscription(ctx context.Context, args TranscribeArgs) error {
	return s.pipeline.Run(ctx, args.LectureID)
}
