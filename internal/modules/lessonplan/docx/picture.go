package docx

import "fmt"

// Image is encoded raster data ready to be stored as a media part.
type Image struct {
	Data     []byte
	Format   string // file extension, e.g. "png"
	WidthPx  int
	HeightPx int
}

type Picture struct {
	Width  Length
	Height Length

	id     int
	relID  string
	target string
	image  Image
}

func (p *Picture) Name() string { return fmt.Sprintf("Picture %d", p.id) }

// AddImage registers img as a media part and returns a picture displayed at
// width, with the height following the pixel aspect ratio.
func (d *Document) AddImage(img Image, width Length) (*Picture, error) {
	if len(img.Data) == 0 {
		return nil, fmt.Errorf("image data is empty")
	}
	if img.WidthPx <= 0 || img.HeightPx <= 0 {
		return nil, fmt.Errorf("invalid image dimensions %dx%d", img.WidthPx, img.HeightPx)
	}
	if _, ok := imageContentTypes[img.Format]; !ok {
		return nil, fmt.Errorf("unsupported image format %q", img.Format)
	}
	if width <= 0 {
		return nil, fmt.Errorf("picture width must be positive")
	}

	n := len(d.media) + 1
	pic := &Picture{
		Width:  width,
		Height: Length(int64(width) * int64(img.HeightPx) / int64(img.WidthPx)),
		id:     n,
		relID:  fmt.Sprintf("rIdImage%d", n),
		target: fmt.Sprintf("media/image%d.%s", n, img.Format),
		image:  img,
	}
	d.media = append(d.media, pic)
	return pic, nil
}

var imageContentTypes = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
}
