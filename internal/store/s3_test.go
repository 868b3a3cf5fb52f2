package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
)

type apiError struct{ code string }

func (e *apiError) Error() string     { return e.code }
func (e *apiError) ErrorCode() string { return e.code }

func TestClassifyS3Error(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"typed no such key", fmt.Errorf("get: %w", &types.NoSuchKey{}), ErrCodeNotFound},
		{"typed no such bucket", fmt.Errorf("head: %w", &types.NoSuchBucket{}), ErrCodeNotFound},
		{"api not found", &apiError{code: "NotFound"}, ErrCodeNotFound},
		{"api access denied", &apiError{code: "AccessDenied"}, ErrCodeAccessDenied},
		{"api server error", &apiError{code: "InternalError"}, ErrCodeServerError},
		{"unclassified", errors.New("connection reset"), ErrCodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyS3Error(tt.err))
		})
	}
}

func TestSentinelForWrapsAccessDenied(t *testing.T) {
	raw := &apiError{code: "AccessDenied"}
	code := classifyS3Error(raw)

	err := NewStoreError("s3", "fetch", "run1.json", code, "failed to fetch object", sentinelFor(code, raw))
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestSentinelForKeepsUnclassifiedError(t *testing.T) {
	raw := errors.New("connection reset")

	err := sentinelFor(classifyS3Error(raw), raw)
	assert.Same(t, raw, err)
}
