package database

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// DaySummaryRow aggregates one subject's authentications within a single
// ledger partition.
type DaySummaryRow struct {
	SubjectID   uint   `json:"subject_id"`
	SubjectName string `json:"subject_name"`
	Entries     int    `json:"entries"`
	FirstTime   string `json:"first_time"`
	LastTime    string `json:"last_time"`
	BestScore   int    `json:"best_score"`
}

// GetDaySummary reports, per subject, how often and when they authenticated on
// the given date. The raw ledger rows stay untouched; this is a read-only
// aggregation over one partition.
func GetDaySummary(db *sql.DB, date string) ([]DaySummaryRow, error) {
	queryBuilder := psql.Select(
		"subject_id",
		"subject_name",
		"COUNT(*)",
		"MIN(time)",
		"MAX(time)",
		"MAX(score)",
	).
		From("attendance_entries").
		Where(sq.Eq{"date": date}).
		GroupBy("subject_id", "subject_name").
		OrderBy("MIN(time) ASC")

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for GetDaySummary: %w", err)
	}

	rows, err := db.Query(sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute GetDaySummary query: %w", err)
	}
	defer rows.Close()

	var summary []DaySummaryRow
	for rows.Next() {
		var row DaySummaryRow
		if err := rows.Scan(&row.SubjectID, &row.SubjectName, &row.Entries, &row.FirstTime, &row.LastTime, &row.BestScore); err != nil {
			return nil, fmt.Errorf("failed to scan day summary row: %w", err)
		}
		summary = append(summary, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating day summary rows: %w", err)
	}
	return summary, nil
}
