package controllers

import (
	"net/http"
	"time"

	"bootcamp-api/models"
	"bootcamp-api/services"
	"bootcamp-api/utils"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
)

// CourseController handles course requests, top-level and nested under a bootcamp
type CourseController struct {
	Service *services.CourseService
	Timeout time.Duration
}

func NewCourseController(service *services.CourseService, timeout time.Duration) *CourseController {
	return &CourseController{Service: service, Timeout: timeout}
}

// GetCourses lists all courses, or those of {bootcampId} when nested
func (cc *CourseController) GetCourses(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r, cc.Timeout)
	defer cancel()

	res, err := cc.Service.List(ctx, mux.Vars(r)["bootcampId"], r.URL.Query())
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	respondPage(w, res)
}

// GetCourse retrieves a single course with its bootcamp
func (cc *CourseController) GetCourse(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r, cc.Timeout)
	defer cancel()

	course, err := cc.Service.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.Respond(w, http.StatusOK, course)
}

// AddCourse creates a course under {bootcampId}
func (cc *CourseController) AddCourse(w http.ResponseWriter, r *http.Request) {
	var input models.Course
	if err := decodeJSON(w, r, &input); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	ctx, cancel := requestContext(r, cc.Timeout)
	defer cancel()

	course, err := cc.Service.Create(ctx, mux.Vars(r)["bootcampId"], input)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.Respond(w, http.StatusCreated, course)
}

// UpdateCourse applies the supplied fields to a course
func (cc *CourseController) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	ctx, cancel := requestContext(r, cc.Timeout)
	defer cancel()

	course, err := cc.Service.Update(ctx, mux.Vars(r)["id"], body)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.Respond(w, http.StatusOK, course)
}

// DeleteCourse removes a course
func (cc *CourseController) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r, cc.Timeout)
	defer cancel()

	if err := cc.Service.Delete(ctx, mux.Vars(r)["id"]); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.Respond(w, http.StatusOK, bson.M{})
}
