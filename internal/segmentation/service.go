package segmentation

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/azhengyongqin/vision-taskhub/internal/inference/sam2"
	"github.com/azhengyongqin/vision-taskhub/internal/logger"
	"github.com/azhengyongqin/vision-taskhub/internal/task"
)

// Service 基于 SAM2 的框提示分割
type Service struct {
	predictor sam2.Predictor
}

func NewService(predictor sam2.Predictor) *Service {
	return &Service{predictor: predictor}
}

// SegmentFrame 分割单帧，结果为 {frame_idx: overlay_b64}
func (s *Service) SegmentFrame(ctx context.Context, p task.SegmentFrame, progress task.ProgressFunc) (map[string]string, error) {
	overlay, err := s.segment(ctx, p.VideoPath, p.Filename, p.ObjIDs, p.BBoxes, p.ConfThreshold)
	if err != nil {
		return nil, err
	}
	key := strconv.Itoa(p.FrameIdx)
	if progress != nil {
		progress(key)
	}
	return map[string]string{key: overlay}, nil
}

// SegmentFrames 逐帧分割，任一帧失败则整个任务失败
func (s *Service) SegmentFrames(ctx context.Context, p task.SegmentFrames, progress task.ProgressFunc) (map[string]string, error) {
	out := make(map[string]string, len(p.FrameIndices))
	for i, idx := range p.FrameIndices {
		overlay, err := s.segment(ctx, p.VideoPath, p.FilenameAt(i), p.ObjIDsList[i], p.BBoxesList[i], p.ConfThreshold)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", idx, err)
		}
		key := strconv.Itoa(idx)
		out[key] = overlay
		if progress != nil {
			progress(key)
		}
		logger.L.Debug().Int("frame_idx", idx).Int("done", i+1).Int("total", len(p.FrameIndices)).Msg("帧分割完成")
	}
	return out, nil
}

func (s *Service) segment(ctx context.Context, dir, filename string, objIDs []int, bboxes [][]float64, threshold float64) (string, error) {
	img, err := readFrame(dir, filename)
	if err != nil {
		return "", err
	}

	ids, boxes := sortByObjID(objIDs, bboxes)
	resp, err := s.predictor.Predict(ctx, sam2.PredictRequest{
		Image:         img,
		Boxes:         boxes,
		ObjIDs:        ids,
		ConfThreshold: threshold,
	})
	if err != nil {
		return "", err
	}
	return resp.OverlayB64, nil
}

// readFrame 读取 dir 下的 jpg 帧，拒绝越出 dir 的文件名
func readFrame(dir, filename string) ([]byte, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".jpg" && ext != ".jpeg" {
		return nil, fmt.Errorf("%w: unsupported image format %q (want .jpg or .jpeg)", task.ErrResourceFailure, filename)
	}

	path := filepath.Join(dir, filename)
	rel, err := filepath.Rel(filepath.Clean(dir), path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("%w: filename %q escapes %s", task.ErrResourceFailure, filename, dir)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: file not found: %s", task.ErrResourceFailure, path)
		}
		return nil, fmt.Errorf("%w: read %s: %v", task.ErrResourceFailure, path, err)
	}
	return b, nil
}

// sortByObjID 按 obj_id 升序对齐 obj_ids 与 bboxes
func sortByObjID(objIDs []int, bboxes [][]float64) ([]int, [][]float64) {
	order := make([]int, len(objIDs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return objIDs[order[a]] < objIDs[order[b]] })

	ids := make([]int, len(order))
	boxes := make([][]float64, len(order))
	for i, j := range order {
		ids[i] = objIDs[j]
		boxes[i] = bboxes[j]
	}
	return ids, boxes
}
