package query

import (
	"context"
	"fmt"

	"bootcamp-api/store"

	"go.mongodb.org/mongo-driver/bson"
)

// Finder is the part of a collection the query builder needs.
type Finder interface {
	Find(ctx context.Context, filter bson.M, opts store.FindOptions) ([]bson.M, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
}

// PageRef points at a neighbouring page.
type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination carries the next/prev descriptors of a list response.
type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

// NewPagination reports a next page iff page*limit < total and a previous page iff page > 1.
func NewPagination(page, limit int, total int64) Pagination {
	var p Pagination
	if limit > 0 {
		pages := total / int64(limit)
		if total%int64(limit) != 0 {
			pages++
		}
		if int64(page) < pages {
			p.Next = &PageRef{Page: page + 1, Limit: limit}
		}
	}
	if page > 1 {
		p.Prev = &PageRef{Page: page - 1, Limit: limit}
	}
	return p
}

// Result is one page of records.
type Result struct {
	Data       []bson.M
	Total      int64
	Pagination Pagination
}

// Populate joins related records into each result under Path. It is a read-time
// query on From and never takes part in filtering.
type Populate struct {
	Path         string
	From         Finder
	LocalField   string
	ForeignField string
	Select       []string
	JustOne      bool
}

// Run counts the filtered set, fetches the requested page and applies each populate.
func Run(ctx context.Context, coll Finder, q Query, populate ...Populate) (*Result, error) {
	total, err := coll.Count(ctx, q.Filter)
	if err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}

	docs := []bson.M{}
	if skip := q.Skip(); skip < total {
		docs, err = coll.Find(ctx, q.Filter, store.FindOptions{
			Projection: q.Projection(),
			Sort:       q.Sort,
			Skip:       skip,
			Limit:      int64(q.Limit),
		})
		if err != nil {
			return nil, fmt.Errorf("find: %w", err)
		}
	}

	for _, p := range populate {
		if err := p.Apply(ctx, docs); err != nil {
			return nil, fmt.Errorf("populate %s: %w", p.Path, err)
		}
	}

	return &Result{
		Data:       docs,
		Total:      total,
		Pagination: NewPagination(q.Page, q.Limit, total),
	}, nil
}

// Apply attaches the matching foreign records to docs in place using a single $in query.
func (p Populate) Apply(ctx context.Context, docs []bson.M) error {
	local := p.LocalField
	if local == "" {
		local = "_id"
	}

	seen := map[string]bool{}
	values := bson.A{}
	for _, doc := range docs {
		v, ok := doc[local]
		if !ok || v == nil {
			continue
		}
		if k := keyOf(v); !seen[k] {
			seen[k] = true
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return nil
	}

	var proj bson.D
	if len(p.Select) > 0 {
		fields := append([]string{}, p.Select...)
		if !contains(fields, p.ForeignField) {
			fields = append(fields, p.ForeignField)
		}
		proj = projection(fields)
	}

	related, err := p.From.Find(ctx, bson.M{p.ForeignField: bson.M{"$in": values}}, store.FindOptions{Projection: proj})
	if err != nil {
		return err
	}

	grouped := map[string][]bson.M{}
	for _, r := range related {
		k := keyOf(r[p.ForeignField])
		grouped[k] = append(grouped[k], r)
	}

	for _, doc := range docs {
		v, ok := doc[local]
		if !ok || v == nil {
			continue
		}
		matches := grouped[keyOf(v)]
		if p.JustOne {
			if len(matches) > 0 {
				doc[p.Path] = matches[0]
			} else {
				doc[p.Path] = nil
			}
			continue
		}
		if matches == nil {
			matches = []bson.M{}
		}
		doc[p.Path] = matches
	}
	return nil
}

func keyOf(v interface{}) string {
	return fmt.Sprintf("%T:%v", v, v)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
