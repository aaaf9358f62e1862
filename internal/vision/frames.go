package vision

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/facette/natsort"

	"github.com/azhengyongqin/vision-taskhub/internal/task"
)

// listFrames 列出目录下的 .jpg 帧，按自然序排列（frame2 在 frame10 之前）
func listFrames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read frame dir: %v", task.ErrResourceFailure, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.ToLower(filepath.Ext(e.Name())) == ".jpg" {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no .jpg frames found in %s", task.ErrResourceFailure, dir)
	}
	natsort.Sort(names)
	return names, nil
}

// sampleIndices 在 available 帧中均匀取 wanted 帧（wanted 超出时截断为 available）
func sampleIndices(available, wanted int) []int {
	if available <= 0 || wanted <= 0 {
		return nil
	}
	if wanted > available {
		wanted = available
	}
	if wanted == 1 {
		return []int{0}
	}

	step := (available - 1) / (wanted - 1)
	out := make([]int, wanted)
	for i := range out {
		out[i] = min(i*step, available-1)
	}
	return out
}

// timestampLabel 帧序号换算成秒数标签
func timestampLabel(index int, fps float64) string {
	return fmt.Sprintf("<%.2f seconds>", float64(index)/fps)
}
