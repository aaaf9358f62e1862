package vision

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/azhengyongqin/vision-taskhub/internal/task"
)

// Detection 模型输出的一条检测结果，字段原样保留（bbox_2d/label/time/type/color...）
type Detection map[string]any

var fencedBlock = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*\\n?(.*?)```")

// ParseDetections 从模型文本中解析检测结果：
// 1. 优先取 markdown 代码块内容
// 2. 以 ```json 开头但被截断时，截到最后一个 } 并补 ]
// 3. 直接按 JSON 解析，失败再按截断修复
func ParseDetections(text string) ([]Detection, error) {
	text = strings.TrimSpace(text)

	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		if out, err := decodeDetections(m[1]); err == nil {
			return out, nil
		}
	}

	if strings.HasPrefix(text, "```json") {
		body := strings.TrimPrefix(text, "```json")
		body = strings.TrimSuffix(strings.TrimSpace(body), "```")
		if out, err := repairTruncated(body); err == nil {
			return out, nil
		}
	}

	if out, err := decodeDetections(text); err == nil {
		return out, nil
	}
	if out, err := repairTruncated(text); err == nil {
		return out, nil
	}

	return nil, fmt.Errorf("%w: cannot parse detections from model output: %s", task.ErrInferenceFailure, preview(text))
}

// decodeDetections 接受数组或单个对象
func decodeDetections(s string) ([]Detection, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{") {
		var one Detection
		if err := json.Unmarshal([]byte(s), &one); err != nil {
			return nil, err
		}
		return []Detection{one}, nil
	}

	var out []Detection
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Detection{}
	}
	return out, nil
}

func repairTruncated(s string) ([]Detection, error) {
	s = strings.TrimSpace(s)
	last := strings.LastIndex(s, "}")
	if last < 0 || !strings.HasPrefix(s, "[") {
		return nil, fmt.Errorf("not a truncated array")
	}
	return decodeDetections(s[:last+1] + "]")
}

func preview(s string) string {
	const limit = 200
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

// BBox 取出 bbox_2d，不是 4 个数字时返回 false
func (d Detection) BBox() ([4]float64, bool) {
	var out [4]float64
	raw, ok := d["bbox_2d"].([]any)
	if !ok || len(raw) != 4 {
		return out, false
	}
	for i, v := range raw {
		f, ok := v.(float64)
		if !ok {
			return out, false
		}
		out[i] = f
	}
	return out, true
}
