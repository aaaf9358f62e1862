package vision

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	boxStroke = 3
	labelPadX = 4
	labelPadY = 2
)

var labelFace font.Face = basicfont.Face7x13

var palette = []color.RGBA{
	{255, 0, 0, 255},     // red
	{0, 128, 0, 255},     // green
	{0, 0, 255, 255},     // blue
	{255, 255, 0, 255},   // yellow
	{255, 165, 0, 255},   // orange
	{255, 192, 203, 255}, // pink
	{128, 0, 128, 255},   // purple
	{165, 42, 42, 255},   // brown
	{64, 224, 208, 255},  // turquoise
	{0, 255, 255, 255},   // cyan
	{255, 0, 255, 255},   // magenta
	{0, 255, 0, 255},     // lime
}

// normalizeBox 0-1000 归一化坐标转为像素坐标，x/y 颠倒时交换
func normalizeBox(b [4]float64, width, height int) image.Rectangle {
	x1 := int(b[0] / 1000 * float64(width))
	y1 := int(b[1] / 1000 * float64(height))
	x2 := int(b[2] / 1000 * float64(width))
	y2 := int(b[3] / 1000 * float64(height))
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return image.Rect(x1, y1, x2, y2)
}

// DrawDetections 在图片上画出所有检测框，返回 JPEG 的 base64
func DrawDetections(img []byte, detections []Detection) (string, error) {
	src, _, err := image.Decode(bytes.NewReader(img))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	canvas := image.NewRGBA(bounds)
	draw.Draw(canvas, bounds, src, bounds.Min, draw.Src)

	for i, d := range detections {
		box, ok := d.BBox()
		if !ok {
			continue
		}
		r := normalizeBox(box, bounds.Dx(), bounds.Dy()).Add(bounds.Min).Intersect(bounds)
		if r.Empty() {
			continue
		}
		c := palette[i%len(palette)]
		strokeRect(canvas, r, c)
		drawLabel(canvas, r, LabelText(d, i), c)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: 90}); err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// strokeRect 画矩形边框（向内 boxStroke 像素）
func strokeRect(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	u := image.NewUniform(c)
	w := boxStroke
	if r.Dx() < 2*w || r.Dy() < 2*w {
		draw.Draw(dst, r, u, image.Point{}, draw.Src)
		return
	}
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+w), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Max.Y-w, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+w, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Max.X-w, r.Min.Y, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
}

// LabelText 标签文本：label/type/color 依次拼接，都没有时为 obj_<序号>
func LabelText(d Detection, index int) string {
	var parts []string
	for _, key := range []string{"label", "type", "color"} {
		if v, ok := d[key].(string); ok && v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("obj_%d", index+1)
	}
	return strings.Join(parts, " ")
}

// labelBounds 标签背景区域：优先放在框上方，超出图片时放到框内顶部
func labelBounds(box, bounds image.Rectangle, text string) image.Rectangle {
	w := font.MeasureString(labelFace, text).Ceil() + 2*labelPadX
	h := labelFace.Metrics().Height.Ceil() + 2*labelPadY

	r := image.Rect(box.Min.X, box.Min.Y-h, box.Min.X+w, box.Min.Y)
	if r.Min.Y < bounds.Min.Y {
		r = r.Add(image.Pt(0, h))
	}
	return r.Intersect(bounds)
}

// drawLabel 在框的颜色背景上用黑色写标签
func drawLabel(dst *image.RGBA, box image.Rectangle, text string, c color.RGBA) {
	bg := labelBounds(box, dst.Bounds(), text)
	if bg.Empty() {
		return
	}
	draw.Draw(dst, bg, image.NewUniform(c), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.Black,
		Face: labelFace,
		Dot: fixed.Point26_6{
			X: fixed.I(bg.Min.X + labelPadX),
			Y: fixed.I(bg.Min.Y+labelPadY) + labelFace.Metrics().Ascent,
		},
	}
	d.DrawString(text)
}
