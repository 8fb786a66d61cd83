package models

// ExamKind distinguishes exams from pass/fail and graded credits.
type ExamKind string

const (
	ExamKindExam               ExamKind = "exam"
	ExamKindCredit             ExamKind = "credit"
	ExamKindDifferentialCredit ExamKind = "differential_credit"
)

// Valid reports whether k is a known exam kind.
func (k ExamKind) Valid() bool {
	switch k {
	case ExamKindExam, ExamKindCredit, ExamKindDifferentialCredit:
		return true
	}
	return false
}

// DefaultDuration is 180 minutes for exams and 120 for credits.
func (k ExamKind) DefaultDuration() int {
	if k == ExamKindExam {
		return 180
	}
	return 120
}

// Exam is a scheduled assessment for one or more groups.
type Exam struct {
	ID              string   `json:"id"`
	Subject         string   `json:"subject"`
	Teacher         string   `json:"teacher"`
	Date            string   `json:"date"`
	Time            string   `json:"time"`
	Room            string   `json:"room"`
	Building        string   `json:"building"`
	Kind            ExamKind `json:"type"`
	DurationMinutes int      `json:"duration"`
	Faculty         string   `json:"faculty"`
	Groups          []string `json:"groups"`
	Description     string   `json:"description"`
}

// ExamFilter narrows exam listings.
type ExamFilter struct {
	Faculty string
	Group   string
}
