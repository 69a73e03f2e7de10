package types

// Pure JSON contracts for module content and recording quiz data. Not DB
// models; stored in jsonb columns.

type ModuleContent struct {
	Overview  string     `json:"overview"`
	Lessons   []Lesson   `json:"lessons"`
	Quizzes   []Quiz     `json:"quizzes"`
	Resources []Resource `json:"resources"`
}

type Lesson struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"` // HTML
	Completed bool   `json:"completed"`
}

type Quiz struct {
	ID        int            `json:"id"`
	Title     string         `json:"title"`
	Questions []QuizQuestion `json:"questions"`
}

type QuizQuestion struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	// Answer indexes into Options. Not validated on write; scoring guards
	// bounds on read.
	Answer int `json:"answer"`
}

type Resource struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type"`
}

// RecordingQuiz is the flat quiz shape stored on a recording row.
type RecordingQuiz struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   int      `json:"answer"`
}
