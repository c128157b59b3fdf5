package request

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/edvin/stream/internal/core"
)

// ParseRecordFilters maps the feed request's query parameters onto the
// record query filter set. Values pass through unchanged; list parameters
// are comma-separated.
func ParseRecordFilters(r *http.Request) core.RecordQueryArgs {
	q := r.URL.Query()

	args := core.RecordQueryArgs{
		Search:      q.Get("search"),
		Date:        q.Get("date"),
		DateFrom:    q.Get("date_from"),
		DateTo:      q.Get("date_to"),
		DateAfter:   q.Get("date_after"),
		DateBefore:  q.Get("date_before"),
		RecordAfter: q.Get("record_after"),
		Record:      q.Get("record"),
		RecordIn:    splitParam(q.Get("record__in")),
		RecordNotIn: splitParam(q.Get("record__not_in")),
		Order:       q.Get("order"),
		OrderBy:     q.Get("orderby"),
	}

	if v := q.Get("records_per_page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			args.RecordsPerPage = n
		}
	}

	args.Properties = parsePropertyFilters(q)

	return args
}

func parsePropertyFilters(q url.Values) map[string]core.PropertyFilter {
	filters := make(map[string]core.PropertyFilter, len(core.RecordProperties))
	for _, prop := range core.RecordProperties {
		filter := core.PropertyFilter{
			Equals: q.Get(prop),
			In:     splitParam(q.Get(prop + "__in")),
			NotIn:  splitParam(q.Get(prop + "__not_in")),
		}
		if filter.Equals != "" || len(filter.In) > 0 || len(filter.NotIn) > 0 {
			filters[prop] = filter
		}
	}
	return filters
}

func splitParam(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
