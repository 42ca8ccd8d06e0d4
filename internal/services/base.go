package services

import (
	"classroom-api/internal/repositories"
)

// Services holds all service instances
type Services struct {
	Health      *HealthService
	Auth        *AuthService
	Lecture     *LectureService
	Grading     *GradingService
	Leaderboard *LeaderboardService

	repositories *repositories.Repositories
}

func NewServices(
	repos *repositories.Repositories,
	health *HealthService,
	authSvc *AuthService,
	lecture *LectureService,
	grading *GradingService,
	leaderboard *LeaderboardService,
) *Services {
	return &Services{
		Health:       health,
		Auth:         authSvc,
		Lecture:      lecture,
		Grading:      grading,
		Leaderboard:  leaderboard,
		repositories: repos,
	}
}

// GetRepositories returns the repositories instance
func (s *Services) GetRepositories() *repositories.Repositories {
	return s.repositories
}
