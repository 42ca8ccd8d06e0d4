package repositories

import (
	"classroom-api/pkg/postgres"
)

// Repositories holds all repository instances
type Repositories struct {
	Job         *JobRepository
	Lecture     *LectureRepository
	Task        *TaskRepository
	Quiz        *QuizRepository
	User        *UserRepository
	Leaderboard *LeaderboardRepository
}

// NewRepositories creates all repository instances against one pool.
func NewRepositories(db *postgres.DB) *Repositories {
	return &Repositories{
		Job:         NewJobRepository(db),
		Lecture:     NewLectureRepository(db),
		Task:        NewTaskRepository(db),
		Quiz:        NewQuizRepository(db),
		User:        NewUserRepository(db),
		Leaderboard: NewLeaderboardRepository(db),
	}
}
