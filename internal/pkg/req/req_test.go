package req

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salachat/internal/pkg/errs"
)

func TestBindJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest("POST", "/participants", strings.NewReader(`{"name":"ana"}`))
	r.Header.Set("Content-Type", "application/json")

	var p payload
	require.Nil(t, BindJSON(r, &p))
	assert.Equal(t, "ana", p.Name)
}

func TestBindJSONRejectsBadInput(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	var p payload

	r := httptest.NewRequest("POST", "/participants", strings.NewReader(`{"name":"ana"}`))
	r.Header.Set("Content-Type", "text/plain")
	cerr := BindJSON(r, &p)
	require.NotNil(t, cerr)
	assert.Equal(t, errs.ErrUnsupportedMediaType, cerr.Code)

	r = httptest.NewRequest("POST", "/participants", strings.NewReader(`{"name":`))
	r.Header.Set("Content-Type", "application/json")
	cerr = BindJSON(r, &p)
	require.NotNil(t, cerr)
	assert.Equal(t, errs.ErrInvalidJSONFormat, cerr.Code)

	r = httptest.NewRequest("POST", "/participants", strings.NewReader(`{"name":"ana"}{"x":1}`))
	r.Header.Set("Content-Type", "application/json")
	cerr = BindJSON(r, &p)
	require.NotNil(t, cerr)
	assert.Equal(t, errs.ErrExtraContentInBody, cerr.Code)
}

func TestViewerSanitizesHeader(t *testing.T) {
	r := httptest.NewRequest("GET", "/messages", nil)
	r.Header.Set("User", "  <b>ana</b> ")

	assert.Equal(t, "ana", Viewer(r))
}

func TestParseLimit(t *testing.T) {
	r := httptest.NewRequest("GET", "/messages", nil)
	limit, cerr := ParseLimit(r)
	require.Nil(t, cerr)
	assert.Equal(t, 0, limit)

	r = httptest.NewRequest("GET", "/messages?limit=3", nil)
	limit, cerr = ParseLimit(r)
	require.Nil(t, cerr)
	assert.Equal(t, 3, limit)

	for _, bad := range []string{"0", "-1", "abc", "2.5"} {
		r = httptest.NewRequest("GET", "/messages?limit="+bad, nil)
		_, cerr = ParseLimit(r)
		require.NotNil(t, cerr, "limit=%s", bad)
		assert.Equal(t, errs.ErrInvalidLimit, cerr.Code)
	}
}
