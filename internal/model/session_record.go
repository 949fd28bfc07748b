package model

// SessionRecord is the database row backing one StudentRecord of a session.
// ID is auto-incremented and gives the insertion order.
type SessionRecord struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	SessionID string `gorm:"index;not null"`
	Name      string `gorm:"index;not null"`
	Maths     int
	Science   int
	English   int
	History   int
	Geography int
	Total     int
	Average   float64
	Grade     string
}

func NewSessionRecord(sessionID string, r StudentRecord) SessionRecord {
	return SessionRecord{
		SessionID: sessionID,
		Name:      r.Name,
		Maths:     r.Marks.Maths,
		Science:   r.Marks.Science,
		English:   r.Marks.English,
		History:   r.Marks.History,
		Geography: r.Marks.Geography,
		Total:     r.Total,
		Average:   r.Average,
		Grade:     string(r.Grade),
	}
}

func (s SessionRecord) StudentRecord() StudentRecord {
	return StudentRecord{
		Name: s.Name,
		Marks: SubjectMarks{
			Maths:     s.Maths,
			Science:   s.Science,
			English:   s.English,
			History:   s.History,
			Geography: s.Geography,
		},
		Total:   s.Total,
		Average: s.Average,
		Grade:   Grade(s.Grade),
	}
}
