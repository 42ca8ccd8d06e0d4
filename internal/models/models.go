package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a platform account. Students and teachers share the table.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	Role         UserRole  `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type UserRole string

const (
	RoleTeacher UserRole = "teacher"
	RoleStudent UserRole = "student"
)

// Room is a class a teacher runs; lectures and quizzes hang off it.
type Room struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	TeacherID uuid.UUID `json:"teacher_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Lecture is one uploaded recording. FilePath is the blob-store object key;
// Transcript is filled in by the transcription pipeline.
type Lecture struct {
	ID         uuid.UUID `json:"id"`
	RoomID     uuid.UUID `json:"room_id"`
	Title      string    `json:"title"`
	FilePath   string    `json:"file_path"`
	Transcript *string   `json:"transcript,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// TaskSet groups the MCQs generated from one lecture transcript.
type TaskSet struct {
	ID        uuid.UUID `json:"id"`
	LectureID uuid.UUID `json:"lecture_id"`
	CreatedAt time.Time `json:"created_at"`
	Tasks     []Task    `json:"tasks,omitempty"`
}

// Task is a single generated multiple-choice question.
type Task struct {
	ID       uuid.UUID `json:"id"`
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	Options  []string  `json:"options"`
}

// GeneratedTask is the generation service's structured output before it is
// assigned persistent ids.
type GeneratedTask struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Options  []string `json:"options"`
}

// Quiz holds the teacher-authored grading material for one assessment.
type Quiz struct {
	ID                 uuid.UUID `json:"id"`
	RoomID             uuid.UUID `json:"room_id"`
	Title              string    `json:"title"`
	RubricContent      string    `json:"rubric_content"`
	AnswerSheetContent string    `json:"answer_sheet_content"`
	CreatedAt          time.Time `json:"created_at"`
}

// Solution is one student submission against a quiz. SolutionPath is the
// blob-store object key of the uploaded answer; Feedback is written by the
// grading worker.
type Solution struct {
	ID           uuid.UUID `json:"id"`
	QuizID       uuid.UUID `json:"quiz_id"`
	StudentID    uuid.UUID `json:"student_id"`
	SolutionPath string    `json:"solution_path"`
	Feedback     *string   `json:"feedback,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// LeaderboardEntry is one student's aggregate score in a room.
type LeaderboardEntry struct {
	StudentID   uuid.UUID `json:"student_id"`
	DisplayName string    `json:"display_name"`
	Score       int       `json:"score"`
}

// JobRecord is the persisted ledger row behind the dispatch guard. Rows are
// claimed once per identifier and never deleted; in_progress flips to false
// exactly once when the worker finishes, however it finishes.
type JobRecord struct {
	JobID      uuid.UUID `json:"job_id"`
	Identifier string    `json:"identifier"`
	InProgress bool      `json:"in_progress"`
	CreatedAt  time.Time `json:"created_at"`
}

// TranscriptDoc is the archived transcript document kept in the doc store.
type TranscriptDoc struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	LectureID string    `bson:"lecture_id" json:"lecture_id"`
	Title     string    `bson:"title" json:"title"`
	FilePath  string    `bson:"file_path" json:"file_path"`
	Content   string    `bson:"content" json:"content"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
