package catalog

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxImageBytes caps a single uploaded image before encoding.
const MaxImageBytes = 5 << 20

var (
	ErrNoImage        = errors.New("no image attached")
	ErrImageTooLarge  = fmt.Errorf("image exceeds %d bytes", MaxImageBytes)
	ErrNotAnImage     = errors.New("file is not an image")
	ErrBadImageSource = errors.New("image must be a data URL or an http(s) URL")
)

// EncodeImage sniffs data and returns an embeddable data URL.
func EncodeImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrNoImage
	}
	if len(data) > MaxImageBytes {
		return "", ErrImageTooLarge
	}
	mtype := mimetype.Detect(data)
	if !isImage(mtype) {
		return "", fmt.Errorf("%w: detected %s", ErrNotAnImage, mtype.String())
	}
	return "data:" + baseMIME(mtype) + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// ValidateImageRef accepts base64 image data URLs whose payload sniffs as an
// image, and absolute http(s) URLs.
func ValidateImageRef(ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ErrNoImage
	}
	if strings.HasPrefix(ref, "data:") {
		return validateDataURL(ref)
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrBadImageSource
	}
	return nil
}

// ValidateImages requires at least one image and checks each reference.
func ValidateImages(refs []string) error {
	if len(refs) == 0 {
		return ErrNoImage
	}
	for i, ref := range refs {
		if err := ValidateImageRef(ref); err != nil {
			return fmt.Errorf("image %d: %w", i+1, err)
		}
	}
	return nil
}

func validateDataURL(ref string) error {
	header, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return ErrBadImageSource
	}
	declared := strings.TrimSuffix(header, ";base64")
	if !strings.HasPrefix(declared, "image/") {
		return fmt.Errorf("%w: declared %s", ErrNotAnImage, declared)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return ErrBadImageSource
	}
	if len(data) > MaxImageBytes {
		return ErrImageTooLarge
	}
	if mtype := mimetype.Detect(data); !isImage(mtype) {
		return fmt.Errorf("%w: detected %s", ErrNotAnImage, mtype.String())
	}
	return nil
}

func isImage(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") {
			return true
		}
	}
	return false
}

func baseMIME(mtype *mimetype.MIME) string {
	value, _, _ := strings.Cut(mtype.String(), ";")
	return value
}
