package models

import (
	"time"

	"bootcamp-api/query"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Course is a single training offering under a Bootcamp
type Course struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title                string             `bson:"title" json:"title" validate:"required"`
	Description          string             `bson:"description" json:"description" validate:"required"`
	Weeks                string             `bson:"weeks" json:"weeks" validate:"required,numeric"`
	Tuition              *float64           `bson:"tuition" json:"tuition" validate:"required,gte=0"`
	MinimumSkill         string             `bson:"minimumSkill" json:"minimumSkill" validate:"required,oneof=beginner intermediate advanced"`
	ScholarshipAvailable bool               `bson:"scholarshipAvailable" json:"scholarshipAvailable"`
	CreatedAt            time.Time          `bson:"createdAt" json:"createdAt"`
	Bootcamp             primitive.ObjectID `bson:"bootcamp" json:"bootcamp" validate:"required"`
}

func (Course) ValidationMessages() map[string]string {
	return map[string]string{
		"Title.required":        "Please add a title",
		"Description.required":  "Please add a description",
		"Weeks.required":        "Please add number of weeks",
		"Weeks.numeric":         "Weeks must be a number",
		"Tuition.required":      "Please add a tuition cost",
		"Tuition.gte":           "Tuition can not be negative",
		"MinimumSkill.required": "Please add a minimum skill",
		"MinimumSkill.oneof":    "Minimum skill must be beginner, intermediate or advanced",
		"Bootcamp.required":     "Course must belong to a bootcamp",
	}
}

// CourseSchema tells the query builder how to cast filter values.
var CourseSchema = query.Schema{
	"_id":                  query.ObjectID,
	"title":                query.String,
	"description":          query.String,
	"weeks":                query.String,
	"tuition":              query.Number,
	"minimumSkill":         query.String,
	"scholarshipAvailable": query.Bool,
	"createdAt":            query.Date,
	"bootcamp":             query.ObjectID,
}

// Float returns a pointer to f, handy for the optional numeric fields.
func Float(f float64) *float64 {
	return &f
}
