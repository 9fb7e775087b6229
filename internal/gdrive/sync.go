package gdrive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const googleDocMIMEType = "application/vnd.google-apps.document"

type uploader interface {
	create(ctx context.Context, name, folderID string, r io.Reader) (string, error)
	update(ctx context.Context, fileID string, r io.Reader) error
}

// Syncer mirrors the commentary log file into a Google Doc. The first upload
// creates the doc; later uploads replace its contents.
type Syncer struct {
	up       uploader
	folderID string
	path     string
	name     string

	mu      sync.Mutex
	fileID  string
	modTime time.Time
	size    int64
}

func NewSyncer(ctx context.Context, credPath, folderID, logPath string) (*Syncer, error) {
	creds, err := os.ReadFile(credPath)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	config, err := google.CredentialsFromJSONWithTypeAndParams(ctx, creds, google.ServiceAccount, google.CredentialsParams{Scopes: []string{drive.DriveFileScope}})
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	svc, err := drive.NewService(ctx, option.WithCredentials(config))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	return newSyncer(&driveUploader{service: svc}, folderID, logPath), nil
}

func newSyncer(up uploader, folderID, logPath string) *Syncer {
	base := filepath.Base(logPath)
	return &Syncer{
		up:       up,
		folderID: folderID,
		path:     logPath,
		name:     strings.TrimSuffix(base, filepath.Ext(base)),
	}
}

// Sync uploads the log if it changed since the last successful upload.
// A log that does not exist yet is not an error.
func (s *Syncer) Sync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", s.path, err)
	}
	if s.fileID != "" && info.ModTime().Equal(s.modTime) && info.Size() == s.size {
		return nil
	}

	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}
	defer func() { _ = f.Close() }()

	if s.fileID != "" {
		if err := s.up.update(ctx, s.fileID, f); err != nil {
			return fmt.Errorf("drive update: %w", err)
		}
	} else {
		id, err := s.up.create(ctx, s.name, s.folderID, f)
		if err != nil {
			return fmt.Errorf("drive create: %w", err)
		}
		s.fileID = id
	}

	s.modTime = info.ModTime()
	s.size = info.Size()
	return nil
}

// Run syncs every interval until ctx is cancelled.
func (s *Syncer) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Sync(ctx); err != nil {
				slog.Warn("drive sync failed", "path", s.path, "error", err)
			}
		}
	}
}

type driveUploader struct {
	service *drive.Service
}

func (d *driveUploader) create(ctx context.Context, name, folderID string, r io.Reader) (string, error) {
	file := &drive.File{Name: name, MimeType: googleDocMIMEType}
	if folderID != "" {
		file.Parents = []string{folderID}
	}
	doc, err := d.service.Files.Create(file).Media(r).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return doc.Id, nil
}

func (d *driveUploader) update(ctx context.Context, fileID string, r io.Reader) error {
	_, err := d.service.Files.Update(fileID, &drive.File{}).Media(r).Context(ctx).Do()
	return err
}
