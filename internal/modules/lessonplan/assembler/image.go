package assembler

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/dlp-generator/internal/modules/lessonplan/docx"
	"github.com/yungbote/dlp-generator/internal/modules/lessonplan/imaging"
)

var (
	ErrImageUnavailable = errors.New("image unavailable")
	ErrImageInsertion   = errors.New("image insertion failed")
)

const (
	PlaceholderNoImage    = "[No Image Available]"
	PlaceholderImageError = "[Image Error]"

	ImageSourceProvided = "provided"
	ImageSourceFetched  = "fetched"
)

// PictureWidth is the display width of the lesson purpose picture.
var PictureWidth = docx.Inches(3.5)

// ImageSource fetches a picture for a short keyword phrase.
type ImageSource interface {
	FetchImage(ctx context.Context, keywords string) ([]byte, error)
}

// EmbedOutcome reports what the image step did. Err is nil when the picture
// was embedded and otherwise wraps ErrImageUnavailable or ErrImageInsertion.
type EmbedOutcome struct {
	Source string
	Err    error
}

func (o EmbedOutcome) Embedded() bool { return o.Err == nil }

func (o EmbedOutcome) Label() string {
	switch {
	case o.Err == nil:
		return "embedded"
	case errors.Is(o.Err, ErrImageInsertion):
		return "insertion_failed"
	default:
		return "unavailable"
	}
}

// embedImage places a picture, or a placeholder paragraph, into cell. It never
// fails the surrounding assembly.
func (a *Assembler) embedImage(ctx context.Context, doc *docx.Document, cell *docx.Cell, provided []byte, keywords string) EmbedOutcome {
	out := EmbedOutcome{Source: ImageSourceProvided}
	data := provided
	if len(data) == 0 {
		out.Source = ImageSourceFetched
		var err error
		data, err = a.fetch(ctx, keywords)
		if err != nil {
			out.Err = fmt.Errorf("%w: %w", ErrImageUnavailable, err)
			cell.AddParagraph(PlaceholderNoImage)
			return out
		}
	}

	img, err := imaging.Normalize(data, a.maxImageWidth)
	if err == nil {
		var pic *docx.Picture
		if pic, err = doc.AddImage(img, PictureWidth); err == nil {
			p := cell.AddParagraph("")
			p.Align = docx.AlignCenter
			p.AddPicture(pic)
			return out
		}
	}
	out.Err = fmt.Errorf("%w: %w", ErrImageInsertion, err)
	cell.AddParagraph(PlaceholderImageError)
	return out
}

func (a *Assembler) fetch(ctx context.Context, keywords string) ([]byte, error) {
	if a.images == nil {
		return nil, errors.New("no image source configured")
	}
	data, err := a.images.FetchImage(ctx, keywords)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("image source returned no data")
	}
	return data, nil
}
