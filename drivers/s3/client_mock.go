package s3driver

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// mockS3Client simulates s3.Client's GetObject and PutObject with an in-memory bucket.
type mockS3Client struct {
	mu      sync.Mutex
	objects map[string]string
	err     error
	lastKey string
}

func (m *mockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastKey = *params.Key
	if m.err != nil {
		return nil, m.err
	}

	content, ok := m.objects[*params.Key]
	if !ok {
		return nil, &mockAPIError{code: "NoSuchKey"}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(content))}, nil
}

func (m *mockS3Client) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastKey = *in.Key
	if m.err != nil {
		return nil, m.err
	}

	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if m.objects == nil {
		m.objects = map[string]string{}
	}
	m.objects[*in.Key] = string(data)
	return &s3.PutObjectOutput{}, nil
}

// mockAPIError mimics smithy.APIError's ErrorCode method.
type mockAPIError struct {
	code string
}

func (e *mockAPIError) Error() string     { return "api error " + e.code }
func (e *mockAPIError) ErrorCode() string { return e.code }
