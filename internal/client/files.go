package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/ptero/pkg/ptero"
	"github.com/spf13/afero"
)

// FilesClient implements ptero.FilesClient.
type FilesClient struct {
	transport  ptero.Transport
	downloader ptero.Downloader
}

// NewFilesClient creates a new files client. A nil downloader disables
// Download.
func NewFilesClient(transport ptero.Transport, downloader ptero.Downloader) *FilesClient {
	return &FilesClient{
		transport:  transport,
		downloader: downloader,
	}
}

// List implements ptero.FilesClient.List. An empty directory lists the server
// root.
func (c *FilesClient) List(ctx context.Context, identifier, directory string) ([]ptero.FileObject, error) {
	err := checkServer(identifier)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}

	if directory == "" {
		directory = "/"
	}

	builder := ptero.NewRequest(ptero.RouteListFiles, identifier).WithQueryParam("directory", directory)

	list, err := execute[ptero.List[ptero.FileObject]](ctx, c.transport, builder)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}

	return list.Values(), nil
}

// Contents implements ptero.FilesClient.Contents.
func (c *FilesClient) Contents(ctx context.Context, identifier, file string) ([]byte, error) {
	err := checkServer(identifier)
	if err == nil {
		err = checkNotEmpty("file", file)
	}

	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	builder := ptero.NewRequest(ptero.RouteGetFileContents, identifier).
		WithQueryParam("file", file).
		WithAccept(ptero.ContentTypeText)

	raw, err := execute[ptero.Raw](ctx, c.transport, builder)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	return raw, nil
}

// DownloadURL implements ptero.FilesClient.DownloadURL.
func (c *FilesClient) DownloadURL(ctx context.Context, identifier, file string) (string, error) {
	err := checkServer(identifier)
	if err == nil {
		err = checkNotEmpty("file", file)
	}

	if err != nil {
		return "", fmt.Errorf("getting file download URL: %w", err)
	}

	builder := ptero.NewRequest(ptero.RouteDownloadFile, identifier).WithQueryParam("file", file)

	item, err := execute[ptero.Item[ptero.SignedURL]](ctx, c.transport, builder)
	if err != nil {
		return "", fmt.Errorf("getting file download URL: %w", err)
	}

	return item.Attributes.URL, nil
}

// Download implements ptero.FilesClient.Download.
func (c *FilesClient) Download(ctx context.Context, identifier, file string, fs afero.Fs, destination string) (int64, error) {
	err := checkDestination(c.downloader, fs, destination)
	if err != nil {
		return 0, fmt.Errorf("downloading file: %w", err)
	}

	url, err := c.DownloadURL(ctx, identifier, file)
	if err != nil {
		return 0, fmt.Errorf("downloading file: %w", err)
	}

	written, err := downloadTo(ctx, c.downloader, url, fs, destination)
	if err != nil {
		return written, fmt.Errorf("downloading file: %w", err)
	}

	return written, nil
}
