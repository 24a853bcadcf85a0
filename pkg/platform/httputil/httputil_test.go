package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "flywheel/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		status      int
		code        string
		description bool
	}{
		{name: "uncoded error is internal", err: errors.New("db failed"), status: http.StatusInternalServerError, code: "internal_error"},
		{name: "internal error omits description", err: dErrors.New(dErrors.CodeInternal, "broken"), status: http.StatusInternalServerError, code: "internal_error"},
		{name: "no implementation", err: dErrors.NoImplementation("greet", "Hizuki"), status: http.StatusNotFound, code: "no_implementation", description: true},
		{name: "unknown layer", err: dErrors.New(dErrors.CodeNotFound, "layer missing"), status: http.StatusNotFound, code: "not_found", description: true},
		{name: "ambiguous", err: dErrors.Ambiguous("greet", []string{"a", "b"}), status: http.StatusConflict, code: "ambiguous", description: true},
		{name: "invalid input", err: dErrors.New(dErrors.CodeInvalidInput, "bad"), status: http.StatusBadRequest, code: "invalid_input", description: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, tt.code, body["error"])
			_, hasDescription := body["error_description"]
			assert.Equal(t, tt.description, hasDescription)
		})
	}
}
