package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"bootcamp-api/models"
	"bootcamp-api/services"
	"bootcamp-api/utils"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
)

// BootcampController handles bootcamp requests
type BootcampController struct {
	Service *services.BootcampService
	Timeout time.Duration
	// MaxUpload is the largest accepted photo in bytes.
	MaxUpload int64
}

func NewBootcampController(service *services.BootcampService, timeout time.Duration, maxUpload int64) *BootcampController {
	return &BootcampController{Service: service, Timeout: timeout, MaxUpload: maxUpload}
}

// GetBootcamps lists bootcamps through the query builder
func (bc *BootcampController) GetBootcamps(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r, bc.Timeout)
	defer cancel()

	res, err := bc.Service.List(ctx, r.URL.Query())
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	respondPage(w, res)
}

// GetBootcamp retrieves a single bootcamp by ID
func (bc *BootcampController) GetBootcamp(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r, bc.Timeout)
	defer cancel()

	bootcamp, err := bc.Service.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.Respond(w, http.StatusOK, bootcamp)
}

// CreateBootcamp validates, geocodes and stores a new bootcamp
func (bc *BootcampController) CreateBootcamp(w http.ResponseWriter, r *http.Request) {
	var input models.Bootcamp
	if err := decodeJSON(w, r, &input); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	ctx, cancel := requestContext(r, bc.Timeout)
	defer cancel()

	bootcamp, err := bc.Service.Create(ctx, input)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.Respond(w, http.StatusCreated, bootcamp)
}

// UpdateBootcamp applies the supplied fields to a bootcamp
func (bc *BootcampController) UpdateBootcamp(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	ctx, cancel := requestContext(r, bc.Timeout)
	defer cancel()

	bootcamp, err := bc.Service.Update(ctx, mux.Vars(r)["id"], body)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.Respond(w, http.StatusOK, bootcamp)
}

// DeleteBootcamp removes a bootcamp and its courses
func (bc *BootcampController) DeleteBootcamp(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r, bc.Timeout)
	defer cancel()

	if err := bc.Service.Delete(ctx, mux.Vars(r)["id"]); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.Respond(w, http.StatusOK, bson.M{})
}

// GetBootcampsInRadius finds bootcamps within a distance of a zipcode
func (bc *BootcampController) GetBootcampsInRadius(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	ctx, cancel := requestContext(r, bc.Timeout)
	defer cancel()

	docs, err := bc.Service.WithinRadius(ctx, params["zipcode"], params["distance"], r.URL.Query().Get("unit"))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if docs == nil {
		docs = []bson.M{}
	}
	utils.RespondList(w, docs, len(docs), nil)
}

// UploadBootcampPhoto stores the multipart "file" field as the bootcamp photo
func (bc *BootcampController) UploadBootcampPhoto(w http.ResponseWriter, r *http.Request) {
	// Leave room for the multipart framing around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, bc.MaxUpload+maxBodyBytes)
	if err := r.ParseMultipartForm(bc.MaxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.WriteError(w, r, utils.UploadFailed(fmt.Sprintf("Please upload an image less than %d", bc.MaxUpload), http.StatusBadRequest, err))
			return
		}
		utils.WriteError(w, r, utils.UploadFailed("Please upload a file", http.StatusBadRequest, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	var upload *services.Upload
	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		utils.WriteError(w, r, utils.UploadFailed("Problem with file upload", http.StatusInternalServerError, err))
		return
	default:
		defer file.Close()
		upload = &services.Upload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Body:        file,
		}
	}

	ctx, cancel := requestContext(r, bc.Timeout)
	defer cancel()

	name, err := bc.Service.UploadPhoto(ctx, mux.Vars(r)["id"], upload)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.Respond(w, http.StatusOK, name)
}
