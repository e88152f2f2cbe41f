package gdrive

import (
	"context"
	"io"
	"regexp"
	"slices"
	"strings"
	"sync"

	"google.golang.org/api/drive/v3"
)

// mockFilesClient simulates the Drive files API with an in-memory list.
// Files are kept in creation order; List returns them in the order requested.
type mockFilesClient struct {
	mu sync.Mutex

	files    []*drive.File
	contents map[string]string

	createErr   error
	listErr     error
	downloadErr error

	lastQuery     string
	lastOrderBy   string
	lastChunkSize int
	listCalls     int
	maxRead       int
}

func newMockFilesClient() *mockFilesClient {
	return &mockFilesClient{contents: map[string]string{}}
}

func (m *mockFilesClient) Create(ctx context.Context, file *drive.File, media io.Reader, chunkSize int) (*drive.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastChunkSize = chunkSize
	if m.createErr != nil {
		return nil, m.createErr
	}

	data, err := io.ReadAll(media)
	if err != nil {
		return nil, err
	}

	created := &drive.File{
		Id:      "id-" + string(rune('a'+len(m.files))),
		Name:    file.Name,
		Parents: file.Parents,
	}
	m.files = append(m.files, created)
	m.contents[created.Id] = string(data)
	return created, nil
}

var parentClause = regexp.MustCompile(`'((?:[^'\\]|\\.)*)' in parents`)

// List matches on the name and the optional parent folder embedded in the
// query and honours "createdTime desc".
func (m *mockFilesClient) List(ctx context.Context, query string, orderBy string) ([]*drive.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.listCalls++
	m.lastQuery = query
	m.lastOrderBy = orderBy
	if m.listErr != nil {
		return nil, m.listErr
	}

	parent := ""
	if match := parentClause.FindStringSubmatch(query); match != nil {
		parent = match[1]
	}

	var out []*drive.File
	for _, f := range m.files {
		if !strings.Contains(query, "name = '"+escapeQuery(f.Name)+"'") {
			continue
		}
		if parent != "" && !slices.ContainsFunc(f.Parents, func(p string) bool { return escapeQuery(p) == parent }) {
			continue
		}
		out = append(out, f)
	}

	if orderBy == newestFirst {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

func (m *mockFilesClient) Download(ctx context.Context, fileID string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.downloadErr != nil {
		return nil, m.downloadErr
	}
	return io.NopCloser(&sizeRecorder{r: strings.NewReader(m.contents[fileID]), m: m}), nil
}

// sizeRecorder tracks the largest buffer a caller passed to Read.
type sizeRecorder struct {
	r io.Reader
	m *mockFilesClient
}

func (s *sizeRecorder) Read(p []byte) (int, error) {
	s.m.mu.Lock()
	s.m.maxRead = max(s.m.maxRead, len(p))
	s.m.mu.Unlock()
	return s.r.Read(p)
}
