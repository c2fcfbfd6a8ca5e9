package client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fivetwenty-io/ptero/internal/constants"
	"github.com/fivetwenty-io/ptero/pkg/ptero"
	"github.com/spf13/afero"
)

// Static errors for err113 compliance.
var (
	ErrDestinationExists = errors.New("destination already exists")
	ErrNoDownloader      = errors.New("no downloader configured")
	ErrNoFilesystem      = errors.New("destination filesystem is required")
)

// checkDestination runs the local checks of a download before a signed URL is
// requested. An existing destination is never overwritten.
func checkDestination(downloader ptero.Downloader, fs afero.Fs, destination string) error {
	switch {
	case downloader == nil:
		return ptero.NewValidationError(ErrNoDownloader)
	case fs == nil:
		return ptero.NewValidationError(ErrNoFilesystem)
	case destination == "":
		return ptero.NewValidationError(fmt.Errorf("destination: %w", ErrEmptyArgument))
	}

	exists, err := afero.Exists(fs, destination)
	if err != nil {
		return ptero.NewValidationError(fmt.Errorf("checking %s: %w", destination, err))
	}

	if exists {
		return ptero.NewValidationError(fmt.Errorf("%w: %s", ErrDestinationExists, destination))
	}

	return nil
}

// downloadTo fetches url into destination on fs. A partial file is removed on
// failure.
func downloadTo(ctx context.Context, downloader ptero.Downloader, url string, fs afero.Fs, destination string) (int64, error) {
	dir := filepath.Dir(destination)
	if dir != "." {
		err := fs.MkdirAll(dir, constants.ConfigDirPerm)
		if err != nil {
			return 0, ptero.NewValidationError(fmt.Errorf("creating %s: %w", dir, err))
		}
	}

	file, err := fs.OpenFile(destination, os.O_WRONLY|os.O_CREATE|os.O_EXCL, constants.DownloadFilePerm)
	if err != nil {
		return 0, ptero.NewValidationError(fmt.Errorf("creating %s: %w", destination, err))
	}

	written, err := downloader.Download(ctx, url, file)

	closeErr := file.Close()
	if err == nil && closeErr != nil {
		err = ptero.NewTransportError(fmt.Errorf("closing %s: %w", destination, closeErr))
	}

	if err != nil {
		_ = fs.Remove(destination)

		return written, err
	}

	return written, nil
}
