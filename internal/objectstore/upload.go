package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"
	"unicode"

	// Decoders for the accepted upload formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

var (
	ErrInvalidImage  = errors.New("invalid image type")
	ErrImageTooLarge = errors.New("image too large")
)

// ImageError is a rejected upload. Its message is meant for the client.
type ImageError struct {
	Reason  error
	Message string
}

func (e *ImageError) Error() string { return e.Message }

func (e *ImageError) Unwrap() error { return e.Reason }

func invalidImage() error {
	return &ImageError{Reason: ErrInvalidImage, Message: "Invalid file type. Only image files are allowed."}
}

// Folder is a storage location together with the upload size limit that
// applies to it.
type Folder struct {
	Name     string
	MaxBytes int64
}

var (
	HeroImages = Folder{Name: "images", MaxBytes: 5 << 20}
	TeamPhotos = Folder{Name: "images/team", MaxBytes: 2 << 20}
)

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Uploader stores validated images and removes them again. Save returns the
// public URL of the stored file; Delete accepts such a URL.
type Uploader interface {
	Save(ctx context.Context, folder Folder, fh *multipart.FileHeader) (string, error)
	Delete(ctx context.Context, url string) error
}

// validatedImage is an upload that passed the size and type checks.
type validatedImage struct {
	data        []byte
	contentType string
	name        string
}

// validate reads the upload and checks it against the folder limit and the
// accepted image formats. The content must decode, not just carry a
// matching extension.
func validate(folder Folder, fh *multipart.FileHeader, now time.Time) (*validatedImage, error) {
	if fh.Size > folder.MaxBytes {
		return nil, tooLarge(folder)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, folder.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > folder.MaxBytes {
		return nil, tooLarge(folder)
	}

	contentType := http.DetectContentType(data)
	if !allowedContentTypes[contentType] {
		return nil, invalidImage()
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, invalidImage()
	}

	return &validatedImage{
		data:        data,
		contentType: contentType,
		name:        FileName(fh.Filename, now),
	}, nil
}

func tooLarge(folder Folder) error {
	return &ImageError{
		Reason:  ErrImageTooLarge,
		Message: fmt.Sprintf("File size exceeds %dMB limit.", folder.MaxBytes>>20),
	}
}

// FileName builds the stored name "<unix-millis>-<original>", with whitespace
// runs turned into dashes and path or control characters dropped.
func FileName(original string, now time.Time) string {
	base := path.Base(strings.ReplaceAll(original, "\\", "/"))
	if base == "." || base == "/" {
		base = ""
	}
	var b strings.Builder
	lastDash := false
	for _, r := range base {
		switch {
		case unicode.IsSpace(r):
			if !lastDash {
				b.WriteByte('-')
			}
			lastDash = true
			continue
		case r == '/' || r == '\\' || unicode.IsControl(r):
			continue
		case r == '.' && b.Len() == 0:
			// no hidden files
			continue
		}
		b.WriteRune(r)
		lastDash = false
	}
	name := b.String()
	if name == "" {
		name = "upload"
	}
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + name
}

// urlPath is the relative URL a stored file is served under.
func urlPath(folder Folder, name string) string {
	return "/" + folder.Name + "/" + name
}
