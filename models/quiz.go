package models

import (
	"errors"
	"math/rand"
	"sort"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	QuestionTypes        = []string{"multiple-choice", "single-choice", "true-false"}
	QuestionDifficulties = []string{"easy", "medium", "hard"}
)

type QuizOption struct {
	ID         string `gorm:"primaryKey;size:24" json:"id"`
	QuestionID string `gorm:"not null;size:24;index" json:"questionId"`
	Text       string `gorm:"not null;size:500" json:"text"`
	// omitempty so a sanitized quiz never exposes the answer key
	IsCorrect bool `gorm:"default:false" json:"isCorrect,omitempty"`
}

func (o *QuizOption) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = NewID()
	}
	return nil
}

type QuizQuestion struct {
	ID        string    `gorm:"primaryKey;size:24" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	QuizID       string       `gorm:"not null;size:24;index" json:"quizId"`
	QuestionText string       `gorm:"not null;size:1000" json:"questionText"`
	Options      []QuizOption `gorm:"foreignKey:QuestionID" json:"options"`
	Explanation  string       `gorm:"size:1000" json:"explanation,omitempty"`
	Points       int          `gorm:"default:1" json:"points"`
	Type         string       `gorm:"not null;default:'single-choice';size:20" json:"type"`
	Order        int          `gorm:"not null" json:"order"`
	TimeLimit    int          `gorm:"default:60" json:"timeLimit"` // seconds
	Difficulty   string       `gorm:"default:'medium';size:10" json:"difficulty"`
}

func (q *QuizQuestion) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = NewID()
	}
	return nil
}

// CorrectOptionIDs returns the ids of the options flagged correct.
func (q *QuizQuestion) CorrectOptionIDs() []string {
	var ids []string
	for _, o := range q.Options {
		if o.IsCorrect {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

// Quiz belongs to a module and carries its own grading configuration.
type Quiz struct {
	ID        string    `gorm:"primaryKey;size:24" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Title       string `gorm:"not null;size:200" json:"title"`
	Description string `gorm:"size:500" json:"description,omitempty"`
	ModuleID    string `gorm:"not null;size:24;index" json:"moduleId"`

	Questions []QuizQuestion `gorm:"foreignKey:QuizID" json:"questions"`

	InstructorID string `gorm:"not null;size:24;index" json:"instructorId"`
	Instructor   *User  `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`

	IsPublished        bool           `gorm:"default:false;index" json:"isPublished"`
	IsActive           bool           `gorm:"default:true;index" json:"isActive"`
	TimeLimit          int            `gorm:"default:30" json:"timeLimit"`    // minutes
	PassingScore       int            `gorm:"default:70" json:"passingScore"` // percent
	MaxAttempts        int            `gorm:"default:3" json:"maxAttempts"`
	ShowCorrectAnswers bool           `gorm:"default:true" json:"showCorrectAnswers"`
	ShowExplanations   bool           `gorm:"default:true" json:"showExplanations"`
	RandomizeQuestions bool           `gorm:"default:false" json:"randomizeQuestions"`
	RandomizeOptions   bool           `gorm:"default:false" json:"randomizeOptions"`
	Tags               pq.StringArray `gorm:"type:text[]" json:"tags"`
	Category           string         `gorm:"size:50" json:"category,omitempty"`
}

func (q *Quiz) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = NewID()
	}
	return nil
}

// BeforeSave rejects structurally broken quizzes before they reach the store.
func (q *Quiz) BeforeSave(tx *gorm.DB) error {
	if err := q.ValidateQuestions(); err != nil {
		return err
	}
	return nil
}

// ValidateQuestions enforces the structural rules: at least one question,
// every question at least two options with at least one correct, and
// single-choice questions exactly one correct.
func (q *Quiz) ValidateQuestions() error {
	if len(q.Questions) == 0 {
		return errors.New("quiz must have at least one question")
	}
	for _, question := range q.Questions {
		if len(question.Options) < 2 {
			return errors.New("each question must have at least 2 options")
		}
		correct := 0
		for _, o := range question.Options {
			if o.IsCorrect {
				correct++
			}
		}
		if correct == 0 {
			return errors.New("each question must have at least one correct answer")
		}
		if question.Type == "single-choice" && correct > 1 {
			return errors.New("single-choice questions can only have one correct answer")
		}
	}
	return nil
}

func (q *Quiz) QuestionCount() int {
	return len(q.Questions)
}

func (q *Quiz) TotalPoints() int {
	total := 0
	for _, question := range q.Questions {
		total += question.Points
	}
	return total
}

// AverageQuestionTime is the mean per-question time limit in seconds.
func (q *Quiz) AverageQuestionTime() float64 {
	if len(q.Questions) == 0 {
		return 0
	}
	total := 0
	for _, question := range q.Questions {
		total += question.TimeLimit
	}
	return float64(total) / float64(len(q.Questions))
}

// ShuffleQuestions randomizes question order when the quiz asks for it,
// otherwise keeps the declared order.
func (q *Quiz) ShuffleQuestions(rng *rand.Rand) {
	if !q.RandomizeQuestions {
		sort.Slice(q.Questions, func(i, j int) bool { return q.Questions[i].Order < q.Questions[j].Order })
		return
	}
	rng.Shuffle(len(q.Questions), func(i, j int) {
		q.Questions[i], q.Questions[j] = q.Questions[j], q.Questions[i]
	})
}

// ShuffleOptions randomizes option order inside every question when enabled.
func (q *Quiz) ShuffleOptions(rng *rand.Rand) {
	if !q.RandomizeOptions {
		return
	}
	for i := range q.Questions {
		opts := q.Questions[i].Options
		rng.Shuffle(len(opts), func(a, b int) {
			opts[a], opts[b] = opts[b], opts[a]
		})
	}
}

// Sanitize strips the answer key so the quiz can be sent to a student.
func (q *Quiz) Sanitize() {
	for i := range q.Questions {
		for j := range q.Questions[i].Options {
			q.Questions[i].Options[j].IsCorrect = false
		}
		if !q.ShowExplanations {
			q.Questions[i].Explanation = ""
		}
	}
}

// QuizResult is the outcome of grading one submission.
type QuizResult struct {
	TotalQuestions   int  `json:"totalQuestions"`
	CorrectQuestions int  `json:"correctQuestions"`
	EarnedPoints     int  `json:"earnedPoints"`
	TotalPoints      int  `json:"totalPoints"`
	Percentage       int  `json:"percentage"`
	Passed           bool `json:"passed"`
}

// Grade scores a submission. answers maps question id to the set of selected
// option ids; a question earns its points only when the selected set equals
// the correct set exactly.
func (q *Quiz) Grade(answers map[string][]string) QuizResult {
	result := QuizResult{
		TotalQuestions: len(q.Questions),
		TotalPoints:    q.TotalPoints(),
	}

	for _, question := range q.Questions {
		selected := answers[question.ID]
		if sameSet(selected, question.CorrectOptionIDs()) {
			result.CorrectQuestions++
			result.EarnedPoints += question.Points
		}
	}

	if result.TotalPoints > 0 {
		result.Percentage = result.EarnedPoints * 100 / result.TotalPoints
	}
	result.Passed = result.Percentage >= q.PassingScore
	return result
}

func sameSet(a, b []string) bool {
	if len(b) == 0 {
		return false
	}
	seen := make(map[string]bool, len(a))
	for _, v := range a {
		seen[v] = true
	}
	if len(seen) != len(b) {
		return false
	}
	for _, v := range b {
		if !seen[v] {
			return false
		}
	}
	return true
}
