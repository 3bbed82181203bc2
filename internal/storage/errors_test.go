package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
)

func TestClassifyResponse(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		code      string
		transient bool
	}{
		{name: "bad credentials", status: http.StatusForbidden, code: "InvalidAccessKeyId", transient: false},
		{name: "signature mismatch", status: http.StatusForbidden, code: "SignatureDoesNotMatch", transient: false},
		{name: "missing bucket", status: http.StatusNotFound, code: "NoSuchBucket", transient: false},
		{name: "generic client error", status: http.StatusBadRequest, code: "InvalidArgument", transient: false},
		{name: "throttled", status: http.StatusServiceUnavailable, code: "SlowDown", transient: true},
		{name: "request timeout", status: http.StatusBadRequest, code: "RequestTimeout", transient: true},
		{name: "too many requests", status: http.StatusTooManyRequests, transient: true},
		{name: "server error", status: http.StatusInternalServerError, transient: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.transient, classifyResponse(tt.status, tt.code))
		})
	}
}

func TestIsTransient(t *testing.T) {
	transient := &Error{Op: "search", Transient: true, Err: context.DeadlineExceeded}
	permanent := &Error{Op: "search", Err: errors.New("denied")}

	assert.True(t, IsTransient(transient))
	assert.True(t, IsTransient(fmt.Errorf("wrapped: %w", transient)))
	assert.False(t, IsTransient(permanent))
	assert.False(t, IsTransient(context.DeadlineExceeded))
	assert.ErrorIs(t, transient, context.DeadlineExceeded)
	assert.Contains(t, transient.Error(), "storage search (transient)")
}

func TestMinioError(t *testing.T) {
	denied := minio.ErrorResponse{StatusCode: http.StatusForbidden, Code: "AccessDenied", Message: "Access Denied."}
	assert.False(t, IsTransient(minioError("search", denied)))

	busy := minio.ErrorResponse{StatusCode: http.StatusServiceUnavailable, Code: "SlowDown"}
	assert.True(t, IsTransient(minioError("search", busy)))

	assert.True(t, IsTransient(minioError("search", context.DeadlineExceeded)))
	assert.False(t, IsTransient(minioError("search", context.Canceled)))
}

func TestS3Error(t *testing.T) {
	apiErr := &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"}
	assert.False(t, IsTransient(s3Error("write", apiErr)))

	respErr := &awshttp.ResponseError{
		ResponseError: &smithyhttp.ResponseError{
			Response: &smithyhttp.Response{Response: &http.Response{StatusCode: http.StatusServiceUnavailable}},
			Err:      errors.New("unavailable"),
		},
	}
	assert.True(t, IsTransient(s3Error("write", respErr)))

	assert.True(t, IsTransient(s3Error("write", errors.New("dial tcp: connection refused"))))
}
