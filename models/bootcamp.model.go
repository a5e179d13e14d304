package models

import (
	"time"

	"bootcamp-api/query"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultPhoto is stored until a photo is uploaded.
const DefaultPhoto = "no-photo.jpg"

// Careers lists the accepted career-category tags.
var Careers = []string{
	"Web Development",
	"Mobile Development",
	"UI/UX",
	"Data Science",
	"Cyber Security",
	"Business",
	"Other",
}

// Location is a GeoJSON point plus the normalized address parts returned by the geocoder.
type Location struct {
	Type             string    `bson:"type" json:"type"`
	Coordinates      []float64 `bson:"coordinates" json:"coordinates"` // [lng, lat]
	FormattedAddress string    `bson:"formattedAddress" json:"formattedAddress"`
	Street           string    `bson:"street" json:"street"`
	City             string    `bson:"city" json:"city"`
	State            string    `bson:"state" json:"state"`
	Zipcode          string    `bson:"zipcode" json:"zipcode"`
	Country          string    `bson:"country" json:"country"`
}

// Bootcamp represents a program listing
type Bootcamp struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name          string             `bson:"name" json:"name" validate:"required,max=50"`
	Slug          string             `bson:"slug" json:"slug"`
	Description   string             `bson:"description" json:"description" validate:"required,max=500"`
	Website       string             `bson:"website,omitempty" json:"website,omitempty" validate:"omitempty,website"`
	Phone         string             `bson:"phone,omitempty" json:"phone,omitempty" validate:"omitempty,max=20"`
	Email         string             `bson:"email,omitempty" json:"email,omitempty" validate:"omitempty,mailbox"`
	Address       string             `bson:"address,omitempty" json:"address,omitempty"` // only present until geocoded
	Location      *Location          `bson:"location,omitempty" json:"location,omitempty"`
	Careers       []string           `bson:"careers" json:"careers" validate:"required,min=1,dive,career"`
	AverageRating *float64           `bson:"averageRating,omitempty" json:"averageRating,omitempty" validate:"omitempty,rating"`
	AverageCost   *float64           `bson:"averageCost,omitempty" json:"averageCost,omitempty"`
	Photo         string             `bson:"photo" json:"photo"`
	Housing       bool               `bson:"housing" json:"housing"`
	JobAssistance bool               `bson:"jobAssistance" json:"jobAssistance"`
	JobGuarantee  bool               `bson:"jobGuarantee" json:"jobGuarantee"`
	AcceptGi      bool               `bson:"acceptGi" json:"acceptGi"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

// ValidationMessages maps "Field.tag" to the message reported for that violation.
func (Bootcamp) ValidationMessages() map[string]string {
	return map[string]string{
		"Name.required":        "Please add a name",
		"Name.max":             "Name can not be more than 50 characters",
		"Description.required": "Please add a description",
		"Description.max":      "Description can not be more than 500 characters",
		"Website.website":      "Please use a valid URL with HTTP or HTTPS",
		"Phone.max":            "Phone number can not be more than 20 characters",
		"Email.mailbox":        "Please add a valid email",
		"Careers.required":     "Please add at least one career",
		"Careers.min":          "Please add at least one career",
		"Careers[].career":     "Career is not one of the accepted categories",
		"AverageRating.rating": "Rating is out of range",
	}
}

// BootcampSchema tells the query builder how to cast filter values.
var BootcampSchema = query.Schema{
	"_id":              query.ObjectID,
	"name":             query.String,
	"slug":             query.String,
	"description":      query.String,
	"website":          query.String,
	"phone":            query.String,
	"email":            query.String,
	"careers":          query.String,
	"location.state":   query.String,
	"location.city":    query.String,
	"location.zipcode": query.String,
	"location.country": query.String,
	"averageRating":    query.Number,
	"averageCost":      query.Number,
	"photo":            query.String,
	"housing":          query.Bool,
	"jobAssistance":    query.Bool,
	"jobGuarantee":     query.Bool,
	"acceptGi":         query.Bool,
	"createdAt":        query.Date,
}
