package dto

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/azhengyongqin/vision-taskhub/internal/model"
)

var registerOnce sync.Once

// RegisterValidators 向 gin 的校验器注册自定义规则：
// abspath 要求绝对路径，taskkind 要求已声明的任务类型
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		if err = v.RegisterValidation("abspath", func(fl validator.FieldLevel) bool {
			return filepath.IsAbs(fl.Field().String())
		}); err != nil {
			return
		}
		err = v.RegisterValidation("taskkind", func(fl validator.FieldLevel) bool {
			return model.TaskKind(fl.Field().String()).Valid()
		})
	})
	return err
}
