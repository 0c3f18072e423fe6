// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/pkg/constants"
)

func TestRequestIDMiddlewareGeneratesID(t *testing.T) {
	var seenID string
	handler := RequestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := r.Context().Value(constants.RequestIDContextID).(string)
		require.True(t, ok)
		seenID = id
		w.WriteHeader(http.StatusOK)
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/status", nil))

	assert.NotEmpty(t, seenID)
	assert.Equal(t, seenID, recorder.Header().Get(constants.RequestIDHeader))
}

func TestRequestIDMiddlewarePreservesInboundID(t *testing.T) {
	handler := RequestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := r.Context().Value(constants.RequestIDContextID).(string)
		assert.Equal(t, "inbound-id", id)
	}))

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set(constants.RequestIDHeader, "inbound-id")

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	assert.Equal(t, "inbound-id", recorder.Header().Get(constants.RequestIDHeader))
}
