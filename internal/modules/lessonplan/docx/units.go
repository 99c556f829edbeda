package docx

import "math"

// Length is a distance in English Metric Units, the native unit of DrawingML.
type Length int64

const (
	emuPerInch  = 914400
	emuPerMM    = 36000
	emuPerPoint = 12700
	emuPerTwip  = 635
)

func Inches(v float64) Length { return Length(math.Round(v * emuPerInch)) }
func Mm(v float64) Length     { return Length(math.Round(v * emuPerMM)) }
func Pt(v float64) Length     { return Length(math.Round(v * emuPerPoint)) }

func (l Length) Inches() float64 { return float64(l) / emuPerInch }

// Twips is the unit WordprocessingML uses for page and table geometry.
func (l Length) Twips() int64 { return int64(math.Round(float64(l) / emuPerTwip)) }

// HalfPoints is the unit of w:sz.
func (l Length) HalfPoints() int64 { return int64(math.Round(float64(l) / (emuPerPoint / 2))) }

type Margins struct {
	Top    Length
	Right  Length
	Bottom Length
	Left   Length
}

// Uniform returns margins with the same value on every side.
func Uniform(v Length) Margins {
	return Margins{Top: v, Right: v, Bottom: v, Left: v}
}

type PageSetup struct {
	Width   Length
	Height  Length
	Margins Margins
}

// A4 is 210 × 297 mm portrait with one-inch margins; callers normally override Margins.
var A4 = PageSetup{
	Width:   Mm(210),
	Height:  Mm(297),
	Margins: Uniform(Inches(1)),
}

// ContentWidth is the usable width between the left and right margins.
func (p PageSetup) ContentWidth() Length {
	return p.Width - p.Margins.Left - p.Margins.Right
}
