package utils

import (
	"testing"

	"bootcamp-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func validBootcamp() models.Bootcamp {
	return models.Bootcamp{
		Name:        "Devworks Bootcamp",
		Description: "Full stack web development",
		Website:     "https://devworks.com",
		Email:       "enroll@devworks.com",
		Careers:     []string{"Web Development", "UI/UX"},
	}
}

func TestValidatorAcceptsValidBootcamp(t *testing.T) {
	v := NewValidator(1, 10)
	b := validBootcamp()
	b.AverageRating = models.Float(8)

	assert.NoError(t, v.Struct(&b))
}

func TestValidatorAggregatesMessages(t *testing.T) {
	v := NewValidator(1, 10)
	b := models.Bootcamp{
		Website: "devworks",
		Email:   "nope",
		Careers: []string{"Basket Weaving", "Juggling"},
	}

	err := v.Struct(&b)
	require.Error(t, err)
	er := TranslateError(err)
	assert.Equal(t, KindValidation, er.Kind)
	assert.Equal(t, 400, er.StatusCode)
	assert.Contains(t, er.Message, "Please add a name")
	assert.Contains(t, er.Message, "Please add a description")
	assert.Contains(t, er.Message, "Please use a valid URL with HTTP or HTTPS")
	assert.Contains(t, er.Message, "Please add a valid email")
	// Both bad careers share a single message.
	assert.Equal(t, 1, countOf(er.Message, "Career is not one of the accepted categories"))
}

func TestValidatorRatingBoundsAreConfigurable(t *testing.T) {
	b := validBootcamp()
	b.AverageRating = models.Float(4)

	assert.NoError(t, NewValidator(1, 5).Struct(&b))

	err := NewValidator(1, 3).Struct(&b)
	require.Error(t, err)
	assert.Equal(t, "Rating must be between 1 and 3", TranslateError(err).Message)
}

func TestValidatorCourse(t *testing.T) {
	v := NewValidator(1, 10)
	c := models.Course{
		Title:        "Front End",
		Description:  "HTML, CSS",
		Weeks:        "eight",
		Tuition:      models.Float(8000),
		MinimumSkill: "expert",
		Bootcamp:     primitive.NewObjectID(),
	}

	err := v.Struct(&c)
	require.Error(t, err)
	msg := TranslateError(err).Message
	assert.Contains(t, msg, "Weeks must be a number")
	assert.Contains(t, msg, "Minimum skill must be beginner, intermediate or advanced")

	c.Weeks = "8"
	c.MinimumSkill = "beginner"
	assert.NoError(t, v.Struct(&c))

	c.Tuition = nil
	assert.Equal(t, "Please add a tuition cost", TranslateError(v.Struct(&c)).Message)
}

func TestValidatorUser(t *testing.T) {
	v := NewValidator(1, 10)
	u := models.User{Name: "Jo", Email: "jo@example.com", Role: "admin", Password: "123"}

	msg := TranslateError(v.Struct(&u)).Message
	assert.Contains(t, msg, "Role must be user or publisher")
	assert.Contains(t, msg, "Password must be at least 6 characters")
}

func countOf(s, sub string) int {
	n := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			n++
		}
	}
	return n
}
