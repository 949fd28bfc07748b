package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gradecalc/internal/grade"
	"gradecalc/internal/model"
)

// ImportResult summarises one CSV import.
type ImportResult struct {
	Processed int      `json:"processed"`
	Added     int      `json:"added"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors"`
}

// ImportCSV appends one record per CSV row to the session, in file order.
// The header must name a Name column and every subject column, in any order.
// Marks are clamped to [0,100] and blank marks count as 0. Rows with a blank
// name are skipped. Rows with a non-numeric mark, or that the store fails to
// save, are reported by line and skipped; earlier rows stay imported.
func ImportCSV(sess *Session, r io.Reader) (ImportResult, error) {
	result := ImportResult{Errors: []string{}}
	err := sess.Do(func(store RecordStore) error {
		return importCSV(store, r, &result)
	})
	return result, err
}

func importCSV(store RecordStore, r io.Reader, result *ImportResult) error {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return errors.New("empty CSV file")
	}
	if err != nil {
		return fmt.Errorf("read CSV header: %w", err)
	}
	columns, err := headerColumns(header)
	if err != nil {
		return err
	}
	reader.FieldsPerRecord = len(header)

	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		result.Processed++

		sub, err := rowSubmission(row, columns)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		record, ok := grade.Calculate(sub)
		if !ok {
			result.Skipped++
			continue
		}
		if err := store.Append(record); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: save %s: %v", line, record.Name, err))
			continue
		}
		result.Added++
	}
	return nil
}

// headerColumns maps "name" and each subject to its column index.
func headerColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[strings.ToLower(strings.TrimSpace(h))] = i
	}

	want := []string{"name"}
	for _, subject := range model.Subjects {
		want = append(want, strings.ToLower(string(subject)))
	}
	for _, key := range want {
		if _, ok := columns[key]; !ok {
			return nil, fmt.Errorf("CSV header is missing column %q", key)
		}
	}
	return columns, nil
}

func rowSubmission(row []string, columns map[string]int) (grade.Submission, error) {
	sub := grade.Submission{Name: row[columns["name"]]}
	for _, subject := range model.Subjects {
		raw := strings.TrimSpace(row[columns[strings.ToLower(string(subject))]])
		score := 0
		if raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return grade.Submission{}, fmt.Errorf("%s mark %q is not a whole number", subject, raw)
			}
			score = grade.ClampMark(n)
		}
		sub.Marks.Set(subject, score)
	}
	return sub, nil
}

// ExportCSV writes the session's table, one row per record, with the same
// columns the page shows.
func ExportCSV(sess *Session, w io.Writer) error {
	var records []model.StudentRecord
	err := sess.Do(func(store RecordStore) error {
		var err error
		records, err = store.Records()
		return err
	})
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(model.RowHeaders); err != nil {
		return err
	}
	for _, rec := range records {
		row := rec.Row()
		err := writer.Write([]string{
			row.Name,
			strconv.Itoa(row.Maths),
			strconv.Itoa(row.Science),
			strconv.Itoa(row.English),
			strconv.Itoa(row.History),
			strconv.Itoa(row.Geography),
			strconv.Itoa(row.Total),
			strconv.FormatFloat(row.Average, 'f', -1, 64),
			string(row.Grade),
		})
		if err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
