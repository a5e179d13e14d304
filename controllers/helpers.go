package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"bootcamp-api/query"
	"bootcamp-api/utils"

	"go.mongodb.org/mongo-driver/bson"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

func requestContext(r *http.Request, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), timeout)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, utils.InvalidBody(err)
	}
	return body, nil
}

// decodeJSON decodes a bounded JSON body into out. Any failure, including a
// malformed ObjectID or timestamp inside the document, is a client error.
func decodeJSON(w http.ResponseWriter, r *http.Request, out interface{}) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(out); err != nil {
		return utils.InvalidBody(err)
	}
	return nil
}

func respondPage(w http.ResponseWriter, res *query.Result) {
	data := res.Data
	if data == nil {
		data = []bson.M{}
	}
	utils.RespondList(w, data, len(data), &res.Pagination)
}
