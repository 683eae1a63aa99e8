package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindPredicates(t *testing.T) {
	assert.True(t, IsValidation(Validation("bad input")))
	assert.True(t, IsNotFound(NotFound("missing %s", "thing")))
	assert.True(t, IsExpired(Expired("too late")))
	assert.True(t, IsConflict(Conflict("raced")))
	assert.True(t, IsUpstreamTimeout(UpstreamTimeout("took too long")))
	assert.True(t, IsUpstream(Upstream(errors.New("boom"), "db call")))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("outer context: %w", Conflict("inner"))
	assert.True(t, IsConflict(err))
}

func TestUpstreamUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := Upstream(cause, "gateway send")
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "gateway send")
}
