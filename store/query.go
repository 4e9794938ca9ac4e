package store

import "fmt"

// Query is a thin, fluent filter builder over the airspaces table,
// directly adapted from the teacher's db/query.go (itself a thin skin
// over a datastore query API). Here it renders to a parameterized SQL
// WHERE clause instead of a datastore Query, but keeps the same
// builder shape and the same String() debug-dump habit.
type Query struct {
	Filters  []Filter
	OrderStr string
	LimitVal int
}

type Filter struct {
	Field string
	Op    string // "=", "LIKE", etc
	Value interface{}
}

func NewQuery() *Query { return &Query{} }

func (q *Query) Filter(field, op string, val interface{}) *Query {
	q.Filters = append(q.Filters, Filter{field, op, val})
	return q
}

func (q *Query) Order(o string) *Query {
	q.OrderStr = o
	return q
}

func (q *Query) Limit(l int) *Query {
	q.LimitVal = l
	return q
}

func (q *Query) String() string {
	str := "NewQuery()\n"
	for _, f := range q.Filters {
		str += fmt.Sprintf("  .Filter(%q, %q, %v)\n", f.Field, f.Op, f.Value)
	}
	if q.OrderStr != "" {
		str += fmt.Sprintf("  .Order(%q)\n", q.OrderStr)
	}
	if q.LimitVal != 0 {
		str += fmt.Sprintf("  .Limit(%d)\n", q.LimitVal)
	}
	return str
}

// SQL renders the query onto the airspaces table as a parameterized
// WHERE/ORDER BY/LIMIT clause.
func (q *Query) SQL() (where string, args []interface{}, orderLimit string) {
	for i, f := range q.Filters {
		if i > 0 {
			where += " AND "
		}
		where += fmt.Sprintf("%s %s ?", f.Field, f.Op)
		args = append(args, f.Value)
	}
	if q.OrderStr != "" {
		orderLimit += " ORDER BY " + q.OrderStr
	}
	if q.LimitVal > 0 {
		orderLimit += fmt.Sprintf(" LIMIT %d", q.LimitVal)
	}
	return
}
