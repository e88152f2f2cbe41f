package gdrive

import (
	"context"
	"io"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

// filesClient is the subset of the Drive files API the storage needs.
type filesClient interface {
	Create(ctx context.Context, file *drive.File, media io.Reader, chunkSize int) (*drive.File, error)
	List(ctx context.Context, query string, orderBy string) ([]*drive.File, error)
	Download(ctx context.Context, fileID string) (io.ReadCloser, error)
}

// apiFiles adapts *drive.Service to filesClient.
type apiFiles struct {
	service *drive.Service
}

// Create uploads media in chunks of chunkSize bytes. Content larger than one
// chunk goes through the resumable upload protocol, each chunk acknowledged
// before the next one is sent.
func (a *apiFiles) Create(ctx context.Context, file *drive.File, media io.Reader, chunkSize int) (*drive.File, error) {
	return a.service.Files.Create(file).
		Media(media, googleapi.ChunkSize(chunkSize), googleapi.ContentType(contentType)).
		Fields("id, name").
		Context(ctx).
		Do()
}

func (a *apiFiles) List(ctx context.Context, query string, orderBy string) ([]*drive.File, error) {
	res, err := a.service.Files.List().
		Q(query).
		OrderBy(orderBy).
		PageSize(10).
		Fields("files(id, name, createdTime)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return res.Files, nil
}

func (a *apiFiles) Download(ctx context.Context, fileID string) (io.ReadCloser, error) {
	resp, err := a.service.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
