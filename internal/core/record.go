package core

import (
	"context"
	"fmt"

	"github.com/edvin/stream/internal/model"
)

// RecordProperties lists the record columns that support exact, __in, and
// __not_in filtering.
var RecordProperties = []string{"author", "author_role", "ip", "object_id", "connector", "context", "action"}

// PropertyFilter holds the exact/inclusion/exclusion filters for one
// record property.
type PropertyFilter struct {
	Equals string
	In     []string
	NotIn  []string
}

// RecordQueryArgs is the full filter set accepted by the record query.
// Values arrive verbatim from the request; the query layer performs the
// only validation (column whitelisting for sort).
type RecordQueryArgs struct {
	Search string

	// Five mutually overlapping date forms, plus the deprecated
	// record_after alias for date_after.
	Date        string
	DateFrom    string
	DateTo      string
	DateAfter   string
	DateBefore  string
	RecordAfter string

	Record      string
	RecordIn    []string
	RecordNotIn []string

	RecordsPerPage int
	Order          string
	OrderBy        string

	// Properties is keyed by the names in RecordProperties.
	Properties map[string]PropertyFilter
}

// DefaultRecordsPerPage is used when the request does not set a page size.
const DefaultRecordsPerPage = 10

// RecordQuerier resolves a filter set into an ordered sequence of records,
// newest first unless the args say otherwise.
type RecordQuerier interface {
	Query(ctx context.Context, args RecordQueryArgs) ([]model.Record, error)
}

// RecordService is the Postgres-backed RecordQuerier.
type RecordService struct {
	db DB
}

// NewRecordService creates a new RecordService.
func NewRecordService(db DB) *RecordService {
	return &RecordService{db: db}
}

var recordSortColumns = map[string]string{
	"date":        "created",
	"created":     "created",
	"id":          "id",
	"author":      "author",
	"author_role": "author_role",
	"summary":     "summary",
	"ip":          "ip",
	"connector":   "connector",
	"context":     "context",
	"action":      "action",
	"object_id":   "object_id",
}

// Query translates the filter set into SQL and returns matching records.
func (s *RecordService) Query(ctx context.Context, args RecordQueryArgs) ([]model.Record, error) {
	query := `SELECT id, site_id, object_id, author, author_role, summary, ip, connector, context, action, created
              FROM records WHERE 1=1`
	sqlArgs := []any{}
	argIdx := 1

	appendCond := func(cond string, value any) {
		query += fmt.Sprintf(" AND "+cond, argIdx)
		sqlArgs = append(sqlArgs, value)
		argIdx++
	}

	if args.Search != "" {
		appendCond(`summary ILIKE $%d`, "%"+args.Search+"%")
	}

	if args.Date != "" {
		appendCond(`created::date = $%d::date`, args.Date)
	}
	if args.DateFrom != "" {
		appendCond(`created::date >= $%d::date`, args.DateFrom)
	}
	if args.DateTo != "" {
		appendCond(`created::date <= $%d::date`, args.DateTo)
	}
	dateAfter := args.DateAfter
	if dateAfter == "" {
		dateAfter = args.RecordAfter
	}
	if dateAfter != "" {
		appendCond(`created > $%d`, dateAfter)
	}
	if args.DateBefore != "" {
		appendCond(`created < $%d`, args.DateBefore)
	}

	if args.Record != "" {
		appendCond(`id = $%d`, args.Record)
	}
	if len(args.RecordIn) > 0 {
		appendCond(`id = ANY($%d)`, args.RecordIn)
	}
	if len(args.RecordNotIn) > 0 {
		appendCond(`NOT (id = ANY($%d))`, args.RecordNotIn)
	}

	for _, prop := range RecordProperties {
		filter, ok := args.Properties[prop]
		if !ok {
			continue
		}
		if filter.Equals != "" {
			appendCond(prop+` = $%d`, filter.Equals)
		}
		if len(filter.In) > 0 {
			appendCond(prop+` = ANY($%d)`, filter.In)
		}
		if len(filter.NotIn) > 0 {
			appendCond(`NOT (`+prop+` = ANY($%d))`, filter.NotIn)
		}
	}

	sortCol, ok := recordSortColumns[args.OrderBy]
	if !ok {
		sortCol = "created"
	}
	order := "DESC"
	if args.Order == "asc" {
		order = "ASC"
	}
	query += fmt.Sprintf(` ORDER BY %s %s`, sortCol, order)

	limit := args.RecordsPerPage
	if limit <= 0 {
		limit = DefaultRecordsPerPage
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	sqlArgs = append(sqlArgs, limit)

	rows, err := s.db.Query(ctx, query, sqlArgs...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		var rec model.Record
		if err := rows.Scan(&rec.ID, &rec.SiteID, &rec.ObjectID, &rec.Author, &rec.AuthorRole,
			&rec.Summary, &rec.IP, &rec.Connector, &rec.Context, &rec.Action, &rec.Created); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return records, nil
}
