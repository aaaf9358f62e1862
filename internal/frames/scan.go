package frames

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/azhengyongqin/vision-taskhub/internal/cache"
	"github.com/azhengyongqin/vision-taskhub/internal/logger"
)

var (
	ErrFolderNotFound    = errors.New("folder not found")
	ErrRelativePath      = errors.New("relative paths are not supported, use an absolute path")
	ErrFileNotFound      = errors.New("image file not found")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrOutsideFolder     = errors.New("filename escapes folder")
)

// Frame 目录扫描得到的一帧图像描述
type Frame struct {
	Index        int    `json:"index"`
	Filename     string `json:"filename"`
	FilePath     string `json:"file_path"`
	RelativePath string `json:"relative_path"`
}

// ScanFolder 递归查找 .jpg/.jpeg 文件，按文件名排序后重新编号
func ScanFolder(folder string) ([]Frame, error) {
	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrFolderNotFound, folder)
	}

	out := make([]Frame, 0)
	err = filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isScanExt(path) {
			return nil
		}
		rel, err := filepath.Rel(folder, path)
		if err != nil {
			return err
		}
		out = append(out, Frame{
			Filename:     d.Name(),
			FilePath:     path,
			RelativePath: rel,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", folder, err)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Filename < out[j].Filename })
	for i := range out {
		out[i].Index = i
	}
	return out, nil
}

func isScanExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return true
	}
	return false
}

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".bmp": true, ".tiff": true, ".tif": true,
}

// ResolveFrameImage 校验 folder/filename 并返回图像文件的绝对路径
// 校验顺序：绝对路径 -> 不越出目录 -> 文件存在 -> 扩展名
func ResolveFrameImage(folder, filename string) (string, error) {
	if !filepath.IsAbs(folder) {
		return "", ErrRelativePath
	}

	path := filepath.Join(folder, filename)
	rel, err := filepath.Rel(folder, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideFolder, filename)
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	if !imageExts[strings.ToLower(filepath.Ext(path))] {
		return "", ErrUnsupportedFormat
	}
	return path, nil
}

// Cache 扫描结果缓存
type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Scanner 带可选缓存的目录扫描
type Scanner struct {
	cache Cache
	ttl   time.Duration
}

// NewScanner cache 为 nil 或 ttl<=0 时不缓存
func NewScanner(c Cache, ttl time.Duration) *Scanner {
	return &Scanner{cache: c, ttl: ttl}
}

func (s *Scanner) Scan(ctx context.Context, folder string) ([]Frame, error) {
	if s.cache == nil || s.ttl <= 0 {
		return ScanFolder(folder)
	}

	key := cache.CacheKey("scan", folder)
	var cached []Frame
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		logger.L.Warn().Err(err).Str("folder", folder).Msg("读取扫描缓存失败")
	}

	frames, err := ScanFolder(folder)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, frames, s.ttl); err != nil {
		logger.L.Warn().Err(err).Str("folder", folder).Msg("写入扫描缓存失败")
	}
	return frames, nil
}
