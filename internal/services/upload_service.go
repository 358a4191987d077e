package services

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

var uploadExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true}

// MaxUploadPixels bounds the decoded size of an upload (about 40 MP).
const MaxUploadPixels = 40_000_000

// UploadService stores admin images on local disk and hands back the public
// URL. Images wider than MaxWidth are scaled down.
type UploadService struct {
	Dir       string
	URLPrefix string
	MaxWidth  int
}

func NewUploadService(dir, urlPrefix string, maxWidth int) *UploadService {
	return &UploadService{Dir: dir, URLPrefix: strings.TrimRight(urlPrefix, "/"), MaxWidth: maxWidth}
}

// Save decodes r as an image and writes it under a fresh name. On any
// failure no URL is returned.
func (s *UploadService) Save(filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !uploadExts[ext] {
		return "", invalid("unsupported image type")
	}
	// the header is read first so a tiny file cannot declare a huge canvas
	var head bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &head))
	if err != nil {
		return "", invalid("file is not a readable image")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxUploadPixels {
		return "", invalid("image dimensions too large")
	}
	img, err := imaging.Decode(io.MultiReader(&head, r), imaging.AutoOrientation(true))
	if err != nil {
		return "", invalid("file is not a readable image")
	}
	if s.MaxWidth > 0 && img.Bounds().Dx() > s.MaxWidth {
		img = imaging.Resize(img, s.MaxWidth, 0, imaging.Lanczos)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("upload dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.NewString(), ext)
	if err := imaging.Save(img, filepath.Join(s.Dir, name), imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	return path.Join(s.URLPrefix, name), nil
}
