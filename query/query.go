// Package query translates list-request parameters into collection queries.
//
// A request such as
//
//	GET /bootcamps?careers[in]=Business&averageCost[lte]=10000&select=name,averageCost&sort=-averageCost&page=2
//
// becomes a filter, a projection, a sort order and a page window. Reserved keys
// (select, sort, page, limit) never reach the filter.
package query

import (
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultPage  = 1
	DefaultLimit = 25
	DefaultSort  = "createdAt"
)

// Kind is the stored type of a field, used to cast the textual parameter value.
type Kind int

const (
	String Kind = iota
	Number
	Bool
	ObjectID
	Date
)

// Schema maps field paths to their stored kind. Unlisted fields are inferred.
type Schema map[string]Kind

var reserved = map[string]bool{
	"select": true,
	"sort":   true,
	"page":   true,
	"limit":  true,
}

var operators = map[string]string{
	"gt":  "$gt",
	"gte": "$gte",
	"lt":  "$lt",
	"lte": "$lte",
	"in":  "$in",
}

var (
	operatorKey = regexp.MustCompile(`^([^\[\]]+)\[([^\[\]]*)\]$`)
	numberLike  = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
)

// Query is the structured form of a list request.
type Query struct {
	Filter bson.M
	Select []string
	Sort   bson.D
	Page   int
	Limit  int
}

// Skip is the number of records before the requested page. It saturates at
// math.MaxInt64 instead of overflowing.
func (q Query) Skip() int64 {
	page, limit := int64(q.Page), int64(q.Limit)
	if page <= 1 || limit <= 0 {
		return 0
	}
	if page-1 > math.MaxInt64/limit {
		return math.MaxInt64
	}
	return (page - 1) * limit
}

// Projection returns the inclusion projection for Select, or nil for all fields.
func (q Query) Projection() bson.D {
	return projection(q.Select)
}

// Parse builds a Query from request parameters. It never fails: unknown fields and
// operators become literal equality filters, malformed pagination falls back to defaults.
func Parse(values url.Values, schema Schema) Query {
	q := Query{
		Filter: bson.M{},
		Select: splitList(values.Get("select")),
		Sort:   parseSort(values.Get("sort")),
		Page:   positiveInt(values.Get("page"), DefaultPage),
		Limit:  positiveInt(values.Get("limit"), DefaultLimit),
	}

	keys := make([]string, 0, len(values))
	for key, raw := range values {
		if !reserved[key] && len(raw) > 0 {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	// Operator keys first, so plain equality can join the operator document of the
	// same field instead of replacing it.
	var plain []string
	for _, key := range keys {
		field, op, hasOp := splitKey(key)
		if field == "" {
			continue
		}
		if !hasOp {
			plain = append(plain, key)
			continue
		}
		raw := values[key]
		kind, known := schema[field]

		cond, ok := q.Filter[field].(bson.M)
		if !ok {
			cond = bson.M{}
		}

		switch mongoOp, recognised := operators[op]; {
		case recognised && op == "in":
			cond[mongoOp] = castAll(splitValues(raw), kind, known)
		case recognised:
			cond[mongoOp] = cast(raw[len(raw)-1], kind, known)
		default:
			// Unknown operator: compare against a literal embedded document.
			literal, _ := cond["$eq"].(bson.M)
			if literal == nil {
				literal = bson.M{}
			}
			literal[op] = cast(raw[0], kind, known)
			cond["$eq"] = literal
		}
		q.Filter[field] = cond
	}

	for _, key := range plain {
		field, _, _ := splitKey(key)
		raw := values[key]
		kind, known := schema[field]

		op, value := "$eq", cast(raw[0], kind, known)
		if len(raw) > 1 {
			op, value = "$in", castAll(raw, kind, known)
		}
		q.addEquality(field, op, value)
	}

	return q
}

// addEquality adds a plain-key predicate for field. It stands alone when the field
// has no other predicate, joins the field's operator document when op is free there,
// and otherwise goes into a top-level $and so no predicate is lost.
func (q *Query) addEquality(field, op string, value interface{}) {
	existing, ok := q.Filter[field]
	if !ok {
		if op == "$eq" {
			q.Filter[field] = value
		} else {
			q.Filter[field] = bson.M{op: value}
		}
		return
	}

	if cond, isOps := existing.(bson.M); isOps {
		if _, taken := cond[op]; !taken {
			cond[op] = value
			return
		}
	}

	and, _ := q.Filter["$and"].(bson.A)
	q.Filter["$and"] = append(and, bson.M{field: bson.M{op: value}})
}

// splitKey separates "field[op]" into its parts. Leading "$" are stripped so callers
// cannot smuggle raw operators into the filter.
func splitKey(key string) (field, op string, hasOp bool) {
	if m := operatorKey.FindStringSubmatch(key); m != nil {
		return sanitize(m[1]), sanitize(m[2]), true
	}
	return sanitize(key), "", false
}

func sanitize(name string) string {
	return strings.TrimLeft(strings.TrimSpace(name), "$")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func splitValues(raw []string) []string {
	var out []string
	for _, r := range raw {
		out = append(out, splitList(r)...)
	}
	return out
}

func parseSort(raw string) bson.D {
	fields := splitList(raw)
	if len(fields) == 0 {
		return bson.D{{Key: DefaultSort, Value: 1}}
	}

	order := make(bson.D, 0, len(fields))
	for _, f := range fields {
		dir := 1
		if strings.HasPrefix(f, "-") {
			dir = -1
			f = strings.TrimPrefix(f, "-")
		}
		if f = sanitize(f); f != "" {
			order = append(order, bson.E{Key: f, Value: dir})
		}
	}
	if len(order) == 0 {
		return bson.D{{Key: DefaultSort, Value: 1}}
	}
	return order
}

func projection(fields []string) bson.D {
	if len(fields) == 0 {
		return nil
	}
	p := make(bson.D, 0, len(fields))
	for _, f := range fields {
		if f = sanitize(f); f != "" {
			p = append(p, bson.E{Key: f, Value: 1})
		}
	}
	return p
}

func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func castAll(raw []string, kind Kind, known bool) bson.A {
	out := make(bson.A, 0, len(raw))
	for _, r := range raw {
		out = append(out, cast(r, kind, known))
	}
	return out
}

// cast converts a parameter to the field's stored type. A value that does not parse
// stays a string, so the filter simply matches nothing.
func cast(raw string, kind Kind, known bool) interface{} {
	if !known {
		return infer(raw)
	}

	switch kind {
	case Number:
		if f, err := strconv.ParseFloat(raw, 64); err == nil && numberLike.MatchString(raw) {
			return f
		}
	case Bool:
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
	case ObjectID:
		if id, err := primitive.ObjectIDFromHex(raw); err == nil {
			return id
		}
	case Date:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t
			}
		}
	}
	return raw
}

func infer(raw string) interface{} {
	if numberLike.MatchString(raw) {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	}
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	return raw
}
