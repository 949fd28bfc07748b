package service

import "gradecalc/internal/model"

const (
	chartMin = 0.0
	chartMax = 100.0
)

// ProjectChart lays out a record's marks as bars in fixed subject order.
// A subject the record cannot resolve is drawn as 0.
func ProjectChart(record model.StudentRecord) model.ChartData {
	points := make([]model.ChartPoint, 0, len(model.Subjects))
	for _, subject := range model.Subjects {
		value := 0.0
		if mark, ok := record.Marks.Mark(subject); ok {
			value = float64(mark)
		}
		points = append(points, model.ChartPoint{Label: string(subject), Value: value})
	}

	return model.ChartData{
		Title:  model.ChartTitle(record.Name),
		Points: points,
		YMin:   chartMin,
		YMax:   chartMax,
	}
}
