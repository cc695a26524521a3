package errdefs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("create task: %w", ErrValidationFailed), "VALIDATION_FAILED"},
		{fmt.Errorf("lookup: %w", ErrInvalidToken), "INVALID_TOKEN"},
		{fmt.Errorf("remark: %w", ErrSubmissionNotFound), "SUBMISSION_NOT_FOUND"},
		{ErrNotFound, "NOT_FOUND"},
		{ErrUnauthorized, "UNAUTHORIZED"},
		{ErrBadRequest, "BAD_REQUEST"},
		{fmt.Errorf("store artifact: %w", ErrUpstreamFailure), "UPSTREAM_FAILURE"},
		{errors.New("boom"), "INTERNAL"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Code(tt.err))
	}
}
