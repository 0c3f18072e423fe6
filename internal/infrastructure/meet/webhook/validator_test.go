// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package webhook

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPushValidator_Validate(t *testing.T) {
	tests := []struct {
		name          string
		sharedToken   string
		authorization string
		queryToken    string
		wantErr       bool
	}{
		{
			name:          "valid bearer token",
			sharedToken:   "secret-token",
			authorization: "Bearer secret-token",
		},
		{
			name:        "valid query token",
			sharedToken: "secret-token",
			queryToken:  "secret-token",
		},
		{
			name:          "invalid bearer token falls through to query token",
			sharedToken:   "secret-token",
			authorization: "Bearer wrong",
			queryToken:    "secret-token",
		},
		{
			name:          "wrong bearer token",
			sharedToken:   "secret-token",
			authorization: "Bearer wrong",
			wantErr:       true,
		},
		{
			name:        "wrong query token",
			sharedToken: "secret-token",
			queryToken:  "wrong",
			wantErr:     true,
		},
		{
			name:        "missing credentials",
			sharedToken: "secret-token",
			wantErr:     true,
		},
		{
			name:          "unconfigured validator rejects everything",
			sharedToken:   "",
			authorization: "Bearer secret-token",
			wantErr:       true,
		},
		{
			name:          "non-bearer authorization is ignored",
			sharedToken:   "secret-token",
			authorization: "Basic secret-token",
			wantErr:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewPushValidator(tt.sharedToken)
			err := v.Validate(tt.authorization, tt.queryToken)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
