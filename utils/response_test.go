package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bootcamp-api/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondList(t *testing.T) {
	rec := httptest.NewRecorder()
	p := query.NewPagination(1, 25, 3)

	RespondList(rec, []string{"a", "b", "c"}, 3, &p)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, 3.0, body["count"])
	assert.Equal(t, map[string]interface{}{}, body["pagination"])
	assert.Len(t, body["data"], 3)
}

func TestWriteErrorHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bootcamps", nil)

	WriteError(rec, req, errors.New("dial tcp 10.0.0.1:27017: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Server Error"}`, rec.Body.String())
}
