package httpc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"main","yaw":12.5}]`))
	}))
	defer srv.Close()

	var out []struct {
		ID  string  `json:"id"`
		Yaw float64 `json:"yaw"`
	}
	require.NoError(t, GetJSON(context.Background(), srv.URL, &out))
	require.Len(t, out, 1)
	assert.Equal(t, "main", out[0].ID)
	assert.Equal(t, 12.5, out[0].Yaw)
}

func TestPostJSON_SendsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var in map[string]float64
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		json.NewEncoder(w).Encode(map[string]float64{"x": in["x"] * 2})
	}))
	defer srv.Close()

	var out map[string]float64
	require.NoError(t, PostJSON(context.Background(), srv.URL, map[string]float64{"x": 0.5}, &out))
	assert.Equal(t, 1.0, out["x"])
}

func TestPostJSON_NilBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	assert.NoError(t, PostJSON(context.Background(), srv.URL, nil, nil))
}

func TestStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"nope: rig: unknown rig"}`))
	}))
	defer srv.Close()

	err := GetJSON(context.Background(), srv.URL, nil)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Equal(t, "http 404: nope: rig: unknown rig", err.Error())
}
