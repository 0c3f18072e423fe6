// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-meet-artifact-service/internal/domain"
)

func TestResolver_ResolveEmail_PassThrough(t *testing.T) {
	r := NewResolver(Config{})

	email, err := r.ResolveEmail(context.Background(), "alice@example.org")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.org", email)
}

func TestResolver_ResolveEmail_EmptyRef(t *testing.T) {
	r := NewResolver(Config{})

	_, err := r.ResolveEmail(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
}

func TestResolver_ResolveEmail_Unconfigured(t *testing.T) {
	r := NewResolver(Config{})

	_, err := r.ResolveEmail(context.Background(), "users/1234567890")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeUnavailable, domain.GetErrorType(err))
}

func TestResolver_ResolveEmail_CacheHit(t *testing.T) {
	r := NewResolver(Config{})
	r.cache.SetDefault("1234567890", "bob@example.org")

	email, err := r.ResolveEmail(context.Background(), "users/1234567890")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.org", email)
}
