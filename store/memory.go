package store

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Memory is an in-process Collection. It understands equality, $eq, $gt, $gte, $lt,
// $lte, $in, $geoWithin/$centerSphere, dotted paths, inclusion projection, sort,
// skip and limit, and enforces unique fields like a unique index would.
type Memory struct {
	mu     sync.RWMutex
	docs   []bson.M
	unique []string
}

// NewMemory creates an empty collection with the given unique fields.
func NewMemory(unique ...string) *Memory {
	return &Memory{unique: unique}
}

func (m *Memory) Find(_ context.Context, filter bson.M, opts FindOptions) ([]bson.M, error) {
	m.mu.RLock()
	matched := m.matching(filter)
	m.mu.RUnlock()

	if len(opts.Sort) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			for _, key := range opts.Sort {
				a, _ := lookup(matched[i], key.Key)
				b, _ := lookup(matched[j], key.Key)
				c := compareValues(a, b)
				if c == 0 {
					continue
				}
				if direction(key.Value) < 0 {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}

	if opts.Skip > 0 {
		if opts.Skip >= int64(len(matched)) {
			matched = nil
		} else {
			matched = matched[opts.Skip:]
		}
	}
	if opts.Limit > 0 && int64(len(matched)) > opts.Limit {
		matched = matched[:opts.Limit]
	}

	out := make([]bson.M, 0, len(matched))
	for _, doc := range matched {
		c, err := clone(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, project(c, opts.Projection))
	}
	return out, nil
}

func (m *Memory) FindOne(_ context.Context, filter bson.M, out interface{}) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := m.matching(filter)
	if len(matched) == 0 {
		return ErrNotFound
	}
	return decode(matched[0], out)
}

func (m *Memory) Count(_ context.Context, filter bson.M) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.matching(filter))), nil
}

func (m *Memory) Insert(_ context.Context, doc interface{}) (primitive.ObjectID, error) {
	d, err := toDocument(doc)
	if err != nil {
		return primitive.NilObjectID, err
	}

	id, ok := d["_id"].(primitive.ObjectID)
	if !ok || id.IsZero() {
		id = primitive.NewObjectID()
		d["_id"] = id
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkUnique(d, nil); err != nil {
		return primitive.NilObjectID, err
	}
	m.docs = append(m.docs, d)
	return id, nil
}

func (m *Memory) Update(_ context.Context, filter bson.M, set bson.M, out interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, doc := range m.docs {
		if !matches(doc, filter) {
			continue
		}

		updated, err := clone(doc)
		if err != nil {
			return err
		}
		values, err := toDocument(set)
		if err != nil {
			return err
		}
		for k, v := range values {
			setPath(updated, k, v)
		}
		if err := m.checkUnique(updated, doc); err != nil {
			return err
		}
		m.docs[i] = updated

		if out == nil {
			return nil
		}
		return decode(updated, out)
	}
	return ErrNotFound
}

func (m *Memory) Delete(_ context.Context, filter bson.M) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.docs[:0]
	var removed int64
	for _, doc := range m.docs {
		if matches(doc, filter) {
			removed++
			continue
		}
		kept = append(kept, doc)
	}
	m.docs = kept
	return removed, nil
}

func (m *Memory) Average(_ context.Context, filter bson.M, field string) (float64, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var sum float64
	var n int64
	for _, doc := range m.matching(filter) {
		v, _ := lookup(doc, field)
		if f, ok := number(v); ok {
			sum += f
			n++
		}
	}
	if n == 0 {
		return 0, 0, nil
	}
	return sum / float64(n), n, nil
}

func (m *Memory) matching(filter bson.M) []bson.M {
	var out []bson.M
	for _, doc := range m.docs {
		if matches(doc, filter) {
			out = append(out, doc)
		}
	}
	return out
}

// checkUnique must be called with the write lock held. self is the stored version of
// the document being replaced, if any.
func (m *Memory) checkUnique(doc bson.M, self bson.M) error {
	for _, field := range m.unique {
		v, ok := lookup(doc, field)
		if !ok || v == nil {
			continue
		}
		for _, other := range m.docs {
			if self != nil && reflect.ValueOf(other).Pointer() == reflect.ValueOf(self).Pointer() {
				continue
			}
			if o, ok := lookup(other, field); ok && equal(o, v) {
				return mongo.WriteException{WriteErrors: mongo.WriteErrors{{
					Code:    11000,
					Message: fmt.Sprintf("E11000 duplicate key error dup key: { %s: %v }", field, v),
				}}}
			}
		}
	}
	return nil
}

func toDocument(v interface{}) (bson.M, error) {
	b, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var d bson.M
	if err := bson.Unmarshal(b, &d); err != nil {
		return nil, err
	}
	return d, nil
}

func clone(d bson.M) (bson.M, error) {
	return toDocument(d)
}

func decode(doc bson.M, out interface{}) error {
	b, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(b, out)
}

func direction(v interface{}) int {
	if f, ok := number(v); ok && f < 0 {
		return -1
	}
	return 1
}

func lookup(doc bson.M, path string) (interface{}, bool) {
	var cur interface{} = doc
	for _, part := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case bson.M:
			v, ok := node[part]
			if !ok {
				return nil, false
			}
			cur = v
		case bson.D:
			v, ok := node.Map()[part]
			if !ok {
				return nil, false
			}
			cur = v
		default:
			return nil, false
		}
	}
	return cur, true
}

func setPath(doc bson.M, path string, v interface{}) {
	parts := strings.Split(path, ".")
	cur := doc
	for _, part := range parts[:len(parts)-1] {
		next, ok := cur[part].(bson.M)
		if !ok {
			next = bson.M{}
			cur[part] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = v
}

func project(doc bson.M, proj bson.D) bson.M {
	if len(proj) == 0 {
		return doc
	}
	out := bson.M{}
	includeID := true
	for _, p := range proj {
		if p.Key == "_id" {
			includeID = direction(p.Value) > 0 && !isZero(p.Value)
			continue
		}
		if v, ok := lookup(doc, p.Key); ok {
			setPath(out, p.Key, v)
		}
	}
	if id, ok := doc["_id"]; ok && includeID {
		out["_id"] = id
	}
	return out
}

func isZero(v interface{}) bool {
	f, ok := number(v)
	return ok && f == 0
}

func matches(doc bson.M, filter bson.M) bool {
	for key, cond := range filter {
		if key == "$and" {
			if !matchesAll(doc, cond) {
				return false
			}
			continue
		}
		v, present := lookup(doc, key)
		if !matchCondition(v, present, cond) {
			return false
		}
	}
	return true
}

func matchesAll(doc bson.M, cond interface{}) bool {
	list, ok := elements(cond)
	if !ok {
		return false
	}
	for _, sub := range list {
		f, ok := sub.(bson.M)
		if !ok || !matches(doc, f) {
			return false
		}
	}
	return true
}

func matchCondition(v interface{}, present bool, cond interface{}) bool {
	ops, ok := cond.(bson.M)
	if !ok || !isOperatorDocument(ops) {
		return present && equalOrContains(v, cond)
	}

	for op, arg := range ops {
		switch op {
		case "$eq":
			if !present || !equalOrContains(v, arg) {
				return false
			}
		case "$gt", "$gte", "$lt", "$lte":
			if !present || !anyElement(v, func(e interface{}) bool { return compareOp(e, op, arg) }) {
				return false
			}
		case "$in":
			if !present || !inList(v, arg) {
				return false
			}
		case "$geoWithin":
			if !present || !withinSphere(v, arg) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func isOperatorDocument(m bson.M) bool {
	for k := range m {
		if !strings.HasPrefix(k, "$") {
			return false
		}
	}
	return len(m) > 0
}

func elements(v interface{}) ([]interface{}, bool) {
	switch a := v.(type) {
	case bson.A:
		return a, true
	case []interface{}:
		return a, true
	}
	return nil, false
}

func anyElement(v interface{}, pred func(interface{}) bool) bool {
	if list, ok := elements(v); ok {
		for _, e := range list {
			if pred(e) {
				return true
			}
		}
		return false
	}
	return pred(v)
}

func equalOrContains(v, want interface{}) bool {
	if equal(v, want) {
		return true
	}
	if _, isList := elements(want); isList {
		return false
	}
	return anyElement(v, func(e interface{}) bool { return equal(e, want) })
}

func inList(v, arg interface{}) bool {
	list, ok := elements(arg)
	if !ok {
		return false
	}
	for _, want := range list {
		if equalOrContains(v, want) {
			return true
		}
	}
	return false
}

func compareOp(v interface{}, op string, arg interface{}) bool {
	if rank(v) != rank(arg) {
		return false
	}
	c := compareValues(v, arg)
	switch op {
	case "$gt":
		return c > 0
	case "$gte":
		return c >= 0
	case "$lt":
		return c < 0
	default:
		return c <= 0
	}
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func timeOf(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case primitive.DateTime:
		return t.Time(), true
	}
	return time.Time{}, false
}

// rank orders values of different types the way the server does for the types used here.
func rank(v interface{}) int {
	if v == nil {
		return 0
	}
	if _, ok := number(v); ok {
		return 1
	}
	if _, ok := timeOf(v); ok {
		return 6
	}
	switch v.(type) {
	case string:
		return 2
	case bson.M, bson.D:
		return 3
	case bson.A, []interface{}:
		return 4
	case primitive.ObjectID:
		return 5
	case bool:
		return 7
	}
	return 8
}

func compareValues(a, b interface{}) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	switch ra {
	case 1:
		x, _ := number(a)
		y, _ := number(b)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case 2:
		return strings.Compare(a.(string), b.(string))
	case 5:
		x, y := a.(primitive.ObjectID), b.(primitive.ObjectID)
		return strings.Compare(x.Hex(), y.Hex())
	case 6:
		x, _ := timeOf(a)
		y, _ := timeOf(b)
		return x.Compare(y)
	case 7:
		x, y := a.(bool), b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	}
	return 0
}

func equal(a, b interface{}) bool {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return false
	}
	switch ra {
	case 1, 2, 5, 6, 7:
		return compareValues(a, b) == 0
	case 3:
		x, errX := toDocument(a)
		y, errY := toDocument(b)
		return errX == nil && errY == nil && reflect.DeepEqual(normalize(x), normalize(y))
	case 4:
		x, _ := elements(a)
		y, _ := elements(b)
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if !equal(x[i], y[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

func normalize(d bson.M) bson.M {
	out := bson.M{}
	for k, v := range d {
		if f, ok := number(v); ok {
			out[k] = f
			continue
		}
		if sub, ok := v.(bson.M); ok {
			out[k] = normalize(sub)
			continue
		}
		out[k] = v
	}
	return out
}

// withinSphere evaluates {$centerSphere: [[lng, lat], radiusRadians]} against a GeoJSON point.
func withinSphere(v, arg interface{}) bool {
	geo, ok := arg.(bson.M)
	if !ok {
		return false
	}
	center, ok := elements(geo["$centerSphere"])
	if !ok || len(center) != 2 {
		return false
	}
	origin, ok := elements(center[0])
	if !ok || len(origin) != 2 {
		return false
	}
	radius, ok := number(center[1])
	if !ok {
		return false
	}

	point, ok := v.(bson.M)
	if !ok {
		return false
	}
	coords, ok := elements(point["coordinates"])
	if !ok || len(coords) != 2 {
		return false
	}

	lng1, ok1 := number(origin[0])
	lat1, ok2 := number(origin[1])
	lng2, ok3 := number(coords[0])
	lat2, ok4 := number(coords[1])
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return false
	}
	return angularDistance(lng1, lat1, lng2, lat2) <= radius
}

func angularDistance(lng1, lat1, lng2, lat2 float64) float64 {
	toRad := math.Pi / 180
	phi1, phi2 := lat1*toRad, lat2*toRad
	dPhi := (lat2 - lat1) * toRad
	dLambda := (lng2 - lng1) * toRad
	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) + math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * math.Asin(math.Min(1, math.Sqrt(h)))
}
