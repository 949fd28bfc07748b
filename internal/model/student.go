package model

import "fmt"

type Subject string

const (
	Maths     Subject = "Maths"
	Science   Subject = "Science"
	English   Subject = "English"
	History   Subject = "History"
	Geography Subject = "Geography"
)

// Subjects is the fixed display and chart order.
var Subjects = []Subject{Maths, Science, English, History, Geography}

type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

type SubjectMarks struct {
	Maths     int `json:"maths"`
	Science   int `json:"science"`
	English   int `json:"english"`
	History   int `json:"history"`
	Geography int `json:"geography"`
}

// Mark returns the score for subject. ok is false for a subject the record
// does not carry.
func (m SubjectMarks) Mark(subject Subject) (int, bool) {
	switch subject {
	case Maths:
		return m.Maths, true
	case Science:
		return m.Science, true
	case English:
		return m.English, true
	case History:
		return m.History, true
	case Geography:
		return m.Geography, true
	}
	return 0, false
}

// Set stores score for subject and reports whether the subject is known.
func (m *SubjectMarks) Set(subject Subject, score int) bool {
	switch subject {
	case Maths:
		m.Maths = score
	case Science:
		m.Science = score
	case English:
		m.English = score
	case History:
		m.History = score
	case Geography:
		m.Geography = score
	default:
		return false
	}
	return true
}

func (m SubjectMarks) Sum() int {
	return m.Maths + m.Science + m.English + m.History + m.Geography
}

type StudentRecord struct {
	Name    string       `json:"name"`
	Marks   SubjectMarks `json:"marks"`
	Total   int          `json:"total"`
	Average float64      `json:"average"`
	Grade   Grade        `json:"grade"`
}

// Row is the table shape of a record, one column per key in display order.
type Row struct {
	Name      string  `json:"Name"`
	Maths     int     `json:"Maths"`
	Science   int     `json:"Science"`
	English   int     `json:"English"`
	History   int     `json:"History"`
	Geography int     `json:"Geography"`
	Total     int     `json:"Total"`
	Average   float64 `json:"Average"`
	Grade     Grade   `json:"Grade"`
}

func (r StudentRecord) Row() Row {
	return Row{
		Name:      r.Name,
		Maths:     r.Marks.Maths,
		Science:   r.Marks.Science,
		English:   r.Marks.English,
		History:   r.Marks.History,
		Geography: r.Marks.Geography,
		Total:     r.Total,
		Average:   r.Average,
		Grade:     r.Grade,
	}
}

// RowHeaders lists the table columns in order.
var RowHeaders = []string{"Name", "Maths", "Science", "English", "History", "Geography", "Total", "Average", "Grade"}

type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type ChartData struct {
	Title  string       `json:"title"`
	Points []ChartPoint `json:"points"`
	YMin   float64      `json:"yMin"`
	YMax   float64      `json:"yMax"`
}

func ChartTitle(name string) string {
	return fmt.Sprintf("Marks of %s", name)
}
