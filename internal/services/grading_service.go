package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"classroom-api/internal/generation"
	"classroom-api/internal/jobs"
	"classroom-api/internal/repositories"
	"classroom-api/pkg/blobstore"
	"classroom-api/pkg/errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// GradeArgs is the typed unit of work for one grading job.
type GradeArgs struct {
	QuizID     uuid.UUID
	SolutionID uuid.UUID
}

// gradeKey derives the ledger identifier for a grading job: one run per
// quiz/solution pair, ever.
func gradeKey(args GradeArgs) (string, error) {
	if args.QuizID == uuid.Nil || args.SolutionID == uuid.Nil {
		return "", errors.WrapError(nil, errors.ErrValidation.Code, "Quiz and solution ids are required", errors.ErrValidation.Status)
	}
	return fmt.Sprintf("%s-%s", args.QuizID, args.SolutionID), nil
}

// GradingService runs LLM grading of student solutions behind the dispatch
// guard.
type GradingService struct {
	quizzes    *repositories.QuizRepository
	blobs      blobstore.Store
	gen        *generation.Client
	dispatcher *jobs.Dispatcher
	log        *logrus.Entry
}

func NewGradingService(
	quizzes *repositories.QuizRepository,
	blobs blobstore.Store,
	gen *generation.Client,
	dispatcher *jobs.Dispatcher,
	log *logrus.Entry,
) *GradingService {
	return &GradingService{
		quizzes:    quizzes,
		blobs:      blobs,
		gen:        gen,
		dispatcher: dispatcher,
		log:        log,
	}
}

// StartGrading schedules grading for one solution. Same contract as
// transcription: true = started or running, false = already graded.
func (s *GradingService) StartGrading(ctx context.Context, quizID, solutionID uuid.UUID) (bool, error) {
	return jobs.Schedule(ctx, s.dispatcher, gradeKey, s.runGrading, GradeArgs{QuizID: quizID, SolutionID: solutionID})
}

func (s *GradingService) runGrading(ctx context.Context, args GradeArgs) error {
	log := s.log.WithFields(logrus.Fields{
		"quiz_id":     args.QuizID,
		"solution_id": args.SolutionID,
	})
	log.Info("Grading solution")

	quiz, err := s.quizzes.GetByID(ctx, args.QuizID)
	if err != nil {
		return fmt.Errorf("load quiz: %w", err)
	}
	if quiz.RubricContent == "" || quiz.AnswerSheetContent == "" {
		return fmt.Errorf("quiz %s is missing rubric or answer sheet", args.QuizID)
	}

	solution, err := s.quizzes.GetSolution(ctx, args.SolutionID)
	if err != nil {
		return fmt.Errorf("load solution: %w", err)
	}

	scratch, err := os.MkdirTemp("", "grade-*")
	if err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	ext := filepath.Ext(solution.SolutionPath)
	localPath := filepath.Join(scratch, "solution"+ext)
	if err := s.blobs.Download(ctx, solution.SolutionPath, localPath); err != nil {
		return fmt.Errorf("download solution: %w", err)
	}

	feedback, err := s.gen.GradeSolution(ctx, quiz.RubricContent, quiz.AnswerSheetContent, localPath)
	if err != nil {
		return fmt.Errorf("grade solution: %w", err)
	}

	if err := s.quizzes.UpdateSolutionFeedback(ctx, args.SolutionID, feedback); err != nil {
		return fmt.Errorf("persist feedback: %w", err)
	}

	log.Infof("Stored grading feedback of %d characters", len(feedback))
	return nil
}
