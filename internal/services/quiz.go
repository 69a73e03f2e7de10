package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/airpen/airpen-backend/internal/logger"
	"github.com/airpen/airpen-backend/internal/types"
)

type QuizScore struct {
	Correct    int `json:"correct"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

type QuizService interface {
	// Score grades submitted answers against a quiz inside a module's
	// content. Percentage is correct over total, rounded to the nearest
	// whole number.
	Score(ctx context.Context, moduleID uuid.UUID, quizID int, answers []int) (*QuizScore, error)
}

type quizService struct {
	log           *logger.Logger
	moduleService ModuleService
}

func NewQuizService(log *logger.Logger, moduleService ModuleService) QuizService {
	return &quizService{
		log:           log.With("service", "QuizService"),
		moduleService: moduleService,
	}
}

func (qs *quizService) Score(ctx context.Context, moduleID uuid.UUID, quizID int, answers []int) (*QuizScore, error) {
	module, err := qs.moduleService.GetByID(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	if len(module.Content) == 0 {
		return nil, fmt.Errorf("module has no content")
	}

	var content types.ModuleContent
	if err := json.Unmarshal(module.Content, &content); err != nil {
		return nil, fmt.Errorf("error decoding module content: %w", err)
	}

	var quiz *types.Quiz
	for i := range content.Quizzes {
		if content.Quizzes[i].ID == quizID {
			quiz = &content.Quizzes[i]
			break
		}
	}
	if quiz == nil {
		return nil, fmt.Errorf("quiz %w", ErrNotFound)
	}
	if len(quiz.Questions) == 0 {
		return nil, fmt.Errorf("quiz has no questions")
	}

	correct := 0
	for i, question := range quiz.Questions {
		if i >= len(answers) {
			break
		}
		// A stored answer index outside the options never counts correct.
		if question.Answer < 0 || question.Answer >= len(question.Options) {
			continue
		}
		if answers[i] == question.Answer {
			correct++
		}
	}

	total := len(quiz.Questions)
	percentage := int(math.Round(float64(correct) / float64(total) * 100))
	return &QuizScore{Correct: correct, Total: total, Percentage: percentage}, nil
}
