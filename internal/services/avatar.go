package services

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

// thumbnailSize is the bounding box profile pictures are scaled into.
const thumbnailSize = 125

// AvatarService stores uploaded profile pictures as fixed-size
// thumbnails under the static directory, each under a random filename.
type AvatarService struct {
	dir string
}

// NewAvatarService creates the service rooted at staticDir; pictures
// land in staticDir/profile_pics.
func NewAvatarService(staticDir string) *AvatarService {
	return &AvatarService{dir: filepath.Join(staticDir, "profile_pics")}
}

// Save decodes the upload, scales it down to fit 125x125 and writes it
// under a random name. The returned filename is what the user record
// persists. Only jpg and png are accepted.
func (s *AvatarService) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	if ext != ".jpg" && ext != ".png" {
		return "", fmt.Errorf("unsupported image type %q", ext)
	}

	src, _, err := image.Decode(file)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	thumb := scaleToFit(src, thumbnailSize)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}

	filename := uuid.New().String() + ext
	out, err := os.Create(filepath.Join(s.dir, filename))
	if err != nil {
		return "", err
	}
	defer out.Close()

	switch ext {
	case ".png":
		err = png.Encode(out, thumb)
	default:
		err = jpeg.Encode(out, thumb, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		return "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return filename, nil
}

// scaleToFit shrinks img so both sides fit within max, keeping the
// aspect ratio. Images already small enough pass through untouched.
func scaleToFit(img image.Image, max int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= max && h <= max {
		return img
	}

	if w > h {
		h = h * max / w
		w = max
	} else {
		w = w * max / h
		h = max
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
