package whisper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/leonardotrapani/scribebot/internal/logging"
)

// ProgressFunc receives bytes downloaded so far and the expected total.
type ProgressFunc func(downloaded, total int64)

// Store is a directory of downloaded model files.
type Store struct {
	Dir     string
	BaseURL string
	Client  *http.Client
}

// DefaultDir is $XDG_DATA_HOME/scribebot/models/whisper, falling back to
// ~/.local/share.
func DefaultDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "scribebot", "models", "whisper"), nil
}

func NewStore(dir string) (*Store, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve models directory: %w", err)
		}
		dir = d
	}
	return &Store{Dir: dir, BaseURL: defaultBaseURL, Client: http.DefaultClient}, nil
}

// Path is where the model file lives once installed; empty for unknown IDs.
func (s *Store) Path(id string) string {
	info := GetModel(id)
	if info == nil {
		return ""
	}
	return filepath.Join(s.Dir, info.Filename)
}

func (s *Store) IsInstalled(id string) bool {
	path := s.Path(id)
	if path == "" {
		return false
	}
	fi, err := os.Stat(path)
	return err == nil && fi.Size() > 0
}

func (s *Store) Installed() []string {
	var ids []string
	for _, m := range catalog {
		if s.IsInstalled(m.ID) {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// InstalledPath returns the model path or an error telling how to install it.
func (s *Store) InstalledPath(id string) (string, error) {
	if GetModel(id) == nil {
		return "", fmt.Errorf("unknown model: %s", id)
	}
	if !s.IsInstalled(id) {
		return "", fmt.Errorf("model not installed: %s (run: scribebot model download %s)", id, id)
	}
	return s.Path(id), nil
}

// Download fetches a model into the store. The file is written under a
// temporary name and renamed once complete.
func (s *Store) Download(ctx context.Context, id string, onProgress ProgressFunc) error {
	info := GetModel(id)
	if info == nil {
		return fmt.Errorf("unknown model: %s", id)
	}
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create models directory: %w", err)
	}

	dest := filepath.Join(s.Dir, info.Filename)
	tmp := dest + ".downloading"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		out.Close()
		os.Remove(tmp)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/"+info.Filename, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	l := logging.WithComponent("models")
	l.Info().Str("model", id).Str("url", req.URL.String()).Msg("downloading model")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status: %s", resp.Status)
	}

	total := resp.ContentLength
	if total < 0 {
		total = info.SizeBytes
	}
	body := io.Reader(resp.Body)
	if onProgress != nil {
		body = &progressReader{r: resp.Body, total: total, fn: onProgress}
	}
	if _, err := io.Copy(out, body); err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return fmt.Errorf("failed to finalize download: %w", err)
	}

	l.Info().Str("model", id).Str("path", dest).Msg("model installed")
	return nil
}

func (s *Store) Remove(id string) error {
	if GetModel(id) == nil {
		return fmt.Errorf("unknown model: %s", id)
	}
	if !s.IsInstalled(id) {
		return fmt.Errorf("model not installed: %s", id)
	}
	if err := os.Remove(s.Path(id)); err != nil {
		return fmt.Errorf("failed to remove model: %w", err)
	}
	return nil
}

type progressReader struct {
	r     io.Reader
	read  int64
	total int64
	fn    ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		p.fn(p.read, p.total)
	}
	return n, err
}
