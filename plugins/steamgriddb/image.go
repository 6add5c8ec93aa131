package steamgriddb

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrNotAnImage is returned when downloaded bytes are not a decodable image
var ErrNotAnImage = errors.New("not an image")

// ValidateImage checks that data holds an image in a supported format and
// returns the format name and dimensions. HTML error pages served in place
// of an image are reported with their title.
func ValidateImage(data []byte) (string, image.Config, error) {
	if len(data) == 0 {
		return "", image.Config{}, fmt.Errorf("%w: empty body", ErrNotAnImage)
	}

	if strings.HasPrefix(http.DetectContentType(data), "text/html") {
		if title := htmlTitle(data); title != "" {
			return "", image.Config{}, fmt.Errorf("%w: received HTML page %q", ErrNotAnImage, title)
		}
		return "", image.Config{}, fmt.Errorf("%w: received HTML page", ErrNotAnImage)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", image.Config{}, fmt.Errorf("%w: %w", ErrNotAnImage, err)
	}
	return format, cfg, nil
}

func htmlTitle(data []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(doc.Find("title").First().Text()), " ")
}
