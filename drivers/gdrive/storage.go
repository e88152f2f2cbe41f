package gdrive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	gocontent "github.com/shoraid/go-content"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	backendName = "gdrive"
	contentType = "text/plain; charset=utf-8"

	// DefaultChunkSize is the upload and download chunk size. Drive requires
	// upload chunks to be a multiple of 256 KiB.
	DefaultChunkSize = 8 * 1024 * 1024

	// newestFirst makes duplicate names resolve to the most recently created file.
	newestFirst = "createdTime desc"
)

// Config defines how to reach Google Drive.
type Config struct {
	Credential gocontent.Credential // gocontent.DriveSession or gocontent.ServiceAccountFile
	FolderID   string               // optional folder that scopes saves and lookups
	ChunkSize  int                  // bytes per upload/download chunk, DefaultChunkSize when 0
	Endpoint   string               // optional API endpoint override
}

// DriveStorage is the gocontent.Strategy for Google Drive.
// Names are not unique keys: every Save creates a new file.
type DriveStorage struct {
	files     filesClient
	folderID  string
	chunkSize int
}

// New authenticates against Drive with cfg.Credential and returns a DriveStorage.
// Returns gocontent.ErrConfig when the credential is missing or of the wrong kind.
func New(ctx context.Context, cfg Config) (*DriveStorage, error) {
	opts, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}

	service, err := drive.NewService(ctx, opts...)
	if err != nil {
		log.Error().Err(err).Msg("failed to create drive service")
		return nil, fmt.Errorf("%w: drive service: %v", gocontent.ErrAuth, err)
	}

	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	return &DriveStorage{
		files:     &apiFiles{service: service},
		folderID:  cfg.FolderID,
		chunkSize: chunkSize,
	}, nil
}

func clientOptions(cfg Config) ([]option.ClientOption, error) {
	if cfg.Credential == nil {
		return nil, fmt.Errorf("%w: drive requires a session or a service account file", gocontent.ErrConfig)
	}
	if err := cfg.Credential.Validate(); err != nil {
		return nil, err
	}

	var opts []option.ClientOption
	switch cred := cfg.Credential.(type) {
	case gocontent.DriveSession:
		opts = append(opts, option.WithHTTPClient(cred.Client))
	case gocontent.ServiceAccountFile:
		opts = append(opts,
			option.WithCredentialsFile(cred.Path),
			option.WithScopes(drive.DriveScope),
		)
	default:
		return nil, fmt.Errorf("%w: drive cannot use %T", gocontent.ErrConfig, cfg.Credential)
	}

	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	return opts, nil
}

// Capabilities reports full support with no history window.
func (s *DriveStorage) Capabilities() gocontent.Capabilities {
	return gocontent.Capabilities{
		Searchable: true,
		LoadByName: true,
		Download:   true,
	}
}

// Save uploads content as a new file, inside FolderID when configured.
// A dropped connection can leave a partially uploaded file behind.
func (s *DriveStorage) Save(ctx context.Context, content string, name string) error {
	if name == "" {
		return gocontent.ErrInvalidName
	}

	meta := &drive.File{Name: name}
	if s.folderID != "" {
		meta.Parents = []string{s.folderID}
	}

	created, err := s.files.Create(ctx, meta, strings.NewReader(content), s.chunkSize)
	if err != nil {
		log.Error().Err(err).Str("name", name).Msg("failed to upload file to drive")
		return translate(err)
	}

	log.Debug().Str("name", name).Str("id", created.Id).Msg("uploaded file to drive")
	return nil
}

// Load resolves name and returns the file content.
func (s *DriveStorage) Load(ctx context.Context, name string) (string, error) {
	record, err := s.resolve(ctx, name)
	if err != nil {
		return "", err
	}

	body, err := s.open(ctx, record)
	if err != nil {
		return "", err
	}
	defer body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, newChunkReader(body, s.chunkSize)); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// Download resolves name and streams the file into destination.
func (s *DriveStorage) Download(ctx context.Context, name string, destination string) error {
	record, err := s.resolve(ctx, name)
	if err != nil {
		return err
	}

	body, err := s.open(ctx, record)
	if err != nil {
		return err
	}
	defer body.Close()

	return gocontent.WriteDestination(destination, newChunkReader(body, s.chunkSize))
}

// resolve finds the newest non-trashed file called name inside the folder.
func (s *DriveStorage) resolve(ctx context.Context, name string) (gocontent.RemoteFileRecord, error) {
	if name == "" {
		return gocontent.RemoteFileRecord{}, gocontent.ErrInvalidName
	}

	files, err := s.files.List(ctx, s.query(name), newestFirst)
	if err != nil {
		log.Error().Err(err).Str("name", name).Msg("failed to query drive")
		return gocontent.RemoteFileRecord{}, translate(err)
	}

	if len(files) == 0 {
		return gocontent.RemoteFileRecord{}, fmt.Errorf("%w: %q in google drive", gocontent.ErrNotFound, name)
	}

	if len(files) > 1 {
		log.Debug().Str("name", name).Int("matches", len(files)).Str("id", files[0].Id).Msg("multiple drive files share a name, using newest")
	}

	return gocontent.RemoteFileRecord{
		ID:       files[0].Id,
		Name:     files[0].Name,
		Position: -1,
	}, nil
}

func (s *DriveStorage) open(ctx context.Context, record gocontent.RemoteFileRecord) (io.ReadCloser, error) {
	body, err := s.files.Download(ctx, record.ID)
	if err != nil {
		log.Error().Err(err).Str("name", record.Name).Str("id", record.ID).Msg("failed to download file from drive")
		return nil, translate(err)
	}
	return &transportReader{rc: body}, nil
}

func (s *DriveStorage) query(name string) string {
	q := fmt.Sprintf("name = '%s' and trashed = false", escapeQuery(name))
	if s.folderID != "" {
		q += fmt.Sprintf(" and '%s' in parents", escapeQuery(s.folderID))
	}
	return q
}

var queryEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func escapeQuery(v string) string {
	return queryEscaper.Replace(v)
}

// translate maps Drive API errors onto the gocontent taxonomy.
func translate(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusNotFound {
			return fmt.Errorf("%w: %s", gocontent.ErrNotFound, apiErr.Message)
		}
		return &gocontent.StatusError{Backend: backendName, StatusCode: apiErr.Code, Body: apiErr.Message}
	}
	return fmt.Errorf("%w: %v", gocontent.ErrTransport, err)
}

// transportReader reports body read failures as transport errors so that a
// broken stream is not mistaken for a destination write failure.
type transportReader struct {
	rc io.ReadCloser
}

func (r *transportReader) Read(p []byte) (int, error) {
	n, err := r.rc.Read(p)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("%w: read drive media: %v", gocontent.ErrTransport, err)
	}
	return n, err
}

func (r *transportReader) Close() error {
	return r.rc.Close()
}

// chunkReader caps every read at size bytes.
type chunkReader struct {
	r    io.Reader
	size int
}

func newChunkReader(r io.Reader, size int) io.Reader {
	return &chunkReader{r: r, size: size}
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(p) > c.size {
		p = p[:c.size]
	}
	return c.r.Read(p)
}
