package vision

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func whitePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeAnnotated(t *testing.T, b64 string) image.Image {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(b64)
	require.NoError(t, err)
	img, _, err := image.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func rgb(c color.Color) (int, int, int) {
	r, g, b, _ := c.RGBA()
	return int(r >> 8), int(g >> 8), int(b >> 8)
}

func TestLabelText(t *testing.T) {
	tests := []struct {
		name string
		d    Detection
		want string
	}{
		{"label type color", Detection{"label": "car", "type": "sedan", "color": "red"}, "car sedan red"},
		{"label only", Detection{"label": "person"}, "person"},
		{"fallback index", Detection{"bbox_2d": []any{1.0, 2.0, 3.0, 4.0}}, "obj_3"},
		{"non string ignored", Detection{"label": 7}, "obj_3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LabelText(tt.d, 2))
		})
	}
}

func TestLabelBounds(t *testing.T) {
	bounds := image.Rect(0, 0, 200, 200)

	above := labelBounds(image.Rect(50, 50, 150, 150), bounds, "car")
	assert.Equal(t, 50, above.Max.Y, "label sits on top of the box")
	assert.Equal(t, 50, above.Min.X)
	assert.Greater(t, above.Dx(), 2*labelPadX)

	// 框贴着图片上沿时标签放进框内
	inside := labelBounds(image.Rect(10, 0, 150, 150), bounds, "car")
	assert.Equal(t, 0, inside.Min.Y)
	assert.Equal(t, above.Dy(), inside.Dy())
}

func TestDrawDetections_BoxAndLabel(t *testing.T) {
	src := whitePNG(t, 200, 200)
	dets := []Detection{{"bbox_2d": []any{250.0, 250.0, 750.0, 750.0}, "label": "car"}}

	out, err := DrawDetections(src, dets)
	require.NoError(t, err)
	img := decodeAnnotated(t, out)

	// 边框为第一个调色板颜色（红），JPEG 有损，按范围判断
	r, g, b := rgb(img.At(51, 100))
	assert.Greater(t, r, 180)
	assert.Less(t, g, 110)
	assert.Less(t, b, 110)

	// 框内部保持白色
	r, g, b = rgb(img.At(100, 100))
	assert.Greater(t, r+g+b, 700)

	// 标签区域整体不再是白色
	bg := labelBounds(image.Rect(50, 50, 150, 150), img.Bounds(), "car")
	for _, p := range []image.Point{image.Pt(bg.Min.X+1, bg.Min.Y+1), image.Pt(bg.Max.X-2, bg.Max.Y-2)} {
		r, g, b = rgb(img.At(p.X, p.Y))
		assert.Less(t, r+g+b, 600, "pixel %v", p)
	}

	// 标签右侧、框上方的像素不变
	r, g, b = rgb(img.At(bg.Max.X+20, bg.Min.Y+2))
	assert.Greater(t, r+g+b, 700)
}

func TestDrawLabel_Pixels(t *testing.T) {
	canvas := image.NewRGBA(image.Rect(0, 0, 200, 200))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	box := image.Rect(50, 50, 150, 150)
	red := palette[0]

	drawLabel(canvas, box, "car", red)

	bg := labelBounds(box, canvas.Bounds(), "car")
	var redPixels, blackPixels int
	for y := bg.Min.Y; y < bg.Max.Y; y++ {
		for x := bg.Min.X; x < bg.Max.X; x++ {
			switch canvas.RGBAAt(x, y) {
			case red:
				redPixels++
			case color.RGBA{0, 0, 0, 255}:
				blackPixels++
			}
		}
	}
	assert.Greater(t, redPixels, 0)
	assert.Greater(t, blackPixels, 0, "text glyphs are drawn")
	assert.Equal(t, bg.Dx()*bg.Dy(), redPixels+blackPixels)
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, canvas.RGBAAt(bg.Max.X+5, bg.Min.Y))
}

func TestDrawDetections_SkipsInvalidBox(t *testing.T) {
	src := whitePNG(t, 50, 50)
	out, err := DrawDetections(src, []Detection{{"label": "no box"}})
	require.NoError(t, err)

	img := decodeAnnotated(t, out)
	r, g, b := rgb(img.At(5, 5))
	assert.Greater(t, r+g+b, 700)
}
