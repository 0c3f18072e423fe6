// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package webhook

import (
	"crypto/hmac"
	"fmt"
	"strings"
)

// PushValidator validates Pub/Sub push deliveries using a shared token. The
// push subscription either sends the token as a bearer Authorization header
// or as a "token" query parameter.
type PushValidator struct {
	SharedToken string
}

// NewPushValidator creates a new push delivery validator
func NewPushValidator(sharedToken string) *PushValidator {
	return &PushValidator{
		SharedToken: sharedToken,
	}
}

// Validate checks the shared token on a push delivery. Exactly one of the two
// carriers needs to match.
func (v *PushValidator) Validate(authorization, queryToken string) error {
	if v.SharedToken == "" {
		return fmt.Errorf("push shared token not configured")
	}

	if bearer, ok := strings.CutPrefix(authorization, "Bearer "); ok {
		if tokenEqual(bearer, v.SharedToken) {
			return nil
		}
	}

	if queryToken != "" && tokenEqual(queryToken, v.SharedToken) {
		return nil
	}

	return fmt.Errorf("push delivery token does not match expected token")
}

// tokenEqual compares tokens in constant time.
func tokenEqual(got, want string) bool {
	return hmac.Equal([]byte(got), []byte(want))
}
