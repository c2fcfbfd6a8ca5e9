package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/ptero/pkg/ptero"
	"github.com/spf13/afero"
)

// BackupsClient implements ptero.BackupsClient.
type BackupsClient struct {
	transport  ptero.Transport
	downloader ptero.Downloader
}

// NewBackupsClient creates a new backups client. A nil downloader disables
// Download.
func NewBackupsClient(transport ptero.Transport, downloader ptero.Downloader) *BackupsClient {
	return &BackupsClient{
		transport:  transport,
		downloader: downloader,
	}
}

// List implements ptero.BackupsClient.List.
func (c *BackupsClient) List(ctx context.Context, identifier string, opts *ptero.ListOptions) (*ptero.ListResponse[ptero.Backup], error) {
	err := checkServer(identifier)
	if err == nil {
		err = checkIncludes(nil, opts.Includes())
	}

	if err != nil {
		return nil, fmt.Errorf("listing backups: %w", err)
	}

	builder := opts.Apply(ptero.NewRequest(ptero.RouteListBackups, identifier))

	list, err := execute[ptero.List[ptero.Backup]](ctx, c.transport, builder)
	if err != nil {
		return nil, fmt.Errorf("listing backups: %w", err)
	}

	return ptero.NewListResponse(&list), nil
}

// Get implements ptero.BackupsClient.Get.
func (c *BackupsClient) Get(ctx context.Context, identifier, backup string) (*ptero.Backup, error) {
	err := checkBackup(identifier, backup)
	if err != nil {
		return nil, fmt.Errorf("getting backup: %w", err)
	}

	item, err := execute[ptero.Item[ptero.Backup]](ctx, c.transport, ptero.NewRequest(ptero.RouteGetBackup, identifier, backup))
	if err != nil {
		return nil, fmt.Errorf("getting backup: %w", err)
	}

	return &item.Attributes, nil
}

// Create implements ptero.BackupsClient.Create. The backup runs in the
// background; poll Get until CompletedAt is set.
func (c *BackupsClient) Create(ctx context.Context, identifier string, request *ptero.CreateBackupRequest) (*ptero.Backup, error) {
	if request == nil {
		request = &ptero.CreateBackupRequest{}
	}

	err := checkServer(identifier)
	if err == nil {
		err = validate(request)
	}

	if err != nil {
		return nil, fmt.Errorf("creating backup: %w", err)
	}

	builder := ptero.NewRequest(ptero.RouteCreateBackup, identifier).WithJSONBody(request)

	item, err := execute[ptero.Item[ptero.Backup]](ctx, c.transport, builder)
	if err != nil {
		return nil, fmt.Errorf("creating backup: %w", err)
	}

	return &item.Attributes, nil
}

// DownloadURL implements ptero.BackupsClient.DownloadURL.
func (c *BackupsClient) DownloadURL(ctx context.Context, identifier, backup string) (string, error) {
	err := checkBackup(identifier, backup)
	if err != nil {
		return "", fmt.Errorf("getting backup download URL: %w", err)
	}

	builder := ptero.NewRequest(ptero.RouteDownloadBackup, identifier, backup)

	item, err := execute[ptero.Item[ptero.SignedURL]](ctx, c.transport, builder)
	if err != nil {
		return "", fmt.Errorf("getting backup download URL: %w", err)
	}

	return item.Attributes.URL, nil
}

// Download implements ptero.BackupsClient.Download.
func (c *BackupsClient) Download(ctx context.Context, identifier, backup string, fs afero.Fs, destination string) (int64, error) {
	err := checkDestination(c.downloader, fs, destination)
	if err != nil {
		return 0, fmt.Errorf("downloading backup: %w", err)
	}

	url, err := c.DownloadURL(ctx, identifier, backup)
	if err != nil {
		return 0, fmt.Errorf("downloading backup: %w", err)
	}

	written, err := downloadTo(ctx, c.downloader, url, fs, destination)
	if err != nil {
		return written, fmt.Errorf("downloading backup: %w", err)
	}

	return written, nil
}

// Delete implements ptero.BackupsClient.Delete.
func (c *BackupsClient) Delete(ctx context.Context, identifier, backup string) error {
	err := checkBackup(identifier, backup)
	if err != nil {
		return fmt.Errorf("deleting backup: %w", err)
	}

	_, err = execute[ptero.NoContent](ctx, c.transport, ptero.NewRequest(ptero.RouteDeleteBackup, identifier, backup))
	if err != nil {
		return fmt.Errorf("deleting backup: %w", err)
	}

	return nil
}

func checkBackup(identifier, backup string) error {
	err := checkServer(identifier)
	if err != nil {
		return err
	}

	return checkNotEmpty("backup", backup)
}
