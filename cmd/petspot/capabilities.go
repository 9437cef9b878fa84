package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
	"github.com/gabriel-vasile/mimetype"
	"github.com/petspot/petspot-backend/internal/reportflow"
)

// fileMetadata treats photo handles as local file paths
type fileMetadata struct{}

func (fileMetadata) ExtractMetadata(ctx context.Context, handle string) (reportflow.PhotoMetadata, error) {
	if err := ctx.Err(); err != nil {
		return reportflow.PhotoMetadata{}, err
	}

	info, err := os.Stat(handle)
	if err != nil {
		return reportflow.PhotoMetadata{}, err
	}
	if info.IsDir() {
		return reportflow.PhotoMetadata{}, fmt.Errorf("%s is a directory", handle)
	}

	mtype, err := mimetype.DetectFile(handle)
	if err != nil {
		return reportflow.PhotoMetadata{}, err
	}

	return reportflow.PhotoMetadata{
		Filename:  filepath.Base(handle),
		SizeBytes: info.Size(),
		MimeType:  mtype.String(),
	}, nil
}

// staticGeolocation reports a fixed position. A nil position behaves like a
// device with location services turned off.
type staticGeolocation struct {
	coords *reportflow.Coordinates
}

func (g staticGeolocation) CurrentPermissionState(context.Context) reportflow.PermissionState {
	if g.coords == nil {
		return reportflow.PermissionDenied
	}
	return reportflow.PermissionGranted
}

func (g staticGeolocation) RequestPermission(ctx context.Context) reportflow.PermissionState {
	return g.CurrentPermissionState(ctx)
}

func (g staticGeolocation) CurrentCoordinates(context.Context) (*reportflow.Coordinates, error) {
	if g.coords == nil {
		return nil, nil
	}
	c := *g.coords
	return &c, nil
}

// systemClipboard uses the OS clipboard
type systemClipboard struct{}

func (systemClipboard) CopyText(text string) error {
	if clipboard.Unsupported {
		return errClipboardUnavailable
	}
	return clipboard.WriteAll(text)
}

var errClipboardUnavailable = errors.New("clipboard not available on this system")
