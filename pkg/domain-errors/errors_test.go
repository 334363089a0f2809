package domainerrors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "agorax/pkg/domain-errors"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := dErrors.Wrap(cause, dErrors.CodeInternal, "failed to load meeting")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to load meeting")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestHasCode(t *testing.T) {
	err := dErrors.New(dErrors.CodeQuorumNotMet, "quorum not met")

	assert.True(t, dErrors.HasCode(err, dErrors.CodeQuorumNotMet))
	assert.False(t, dErrors.HasCode(err, dErrors.CodeConflict))
	assert.False(t, dErrors.HasCode(errors.New("plain"), dErrors.CodeQuorumNotMet))
	assert.False(t, dErrors.HasCode(nil, dErrors.CodeQuorumNotMet))
}

func TestCodeOfDefaultsToInternal(t *testing.T) {
	assert.Equal(t, dErrors.CodeInternal, dErrors.CodeOf(errors.New("plain")))
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(dErrors.New(dErrors.CodeNotFound, "gone")))
}

func TestWithDetailsDoesNotMutateOriginal(t *testing.T) {
	base := dErrors.New(dErrors.CodeEligibilityRejected, "vote rejected")
	detailed := base.WithDetails(map[string]any{"reason": "owner_in_debt"})

	require.Nil(t, dErrors.DetailsOf(base))
	assert.Equal(t, "owner_in_debt", dErrors.DetailsOf(detailed)["reason"])
	assert.Equal(t, dErrors.CodeEligibilityRejected, dErrors.CodeOf(detailed))
}

func TestCodeSurvivesWrapping(t *testing.T) {
	inner := dErrors.New(dErrors.CodeInvalidState, "meeting is closed")
	outer := dErrors.Wrap(inner, dErrors.CodeInternal, "transition failed")

	// The outermost code wins; the inner error stays reachable for errors.As.
	assert.Equal(t, dErrors.CodeInternal, dErrors.CodeOf(outer))
	assert.ErrorIs(t, outer, inner)
}
