package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"gopkg.in/yaml.v3"

	apperrors "github.com/paiban/nightshift/pkg/errors"
	"github.com/paiban/nightshift/pkg/model"
)

// rosterFile YAML 名单文件结构
type rosterFile struct {
	Span     spanDoc            `yaml:"span" validate:"required"`
	Holidays map[string]float64 `yaml:"holidays" validate:"dive,keys,datetime=2006-01-02,endkeys,gt=0"`
	Workers  []workerDoc        `yaml:"workers" validate:"required,min=1,dive"`
	Notes    []string           `yaml:"notes"`
}

type spanDoc struct {
	Start string `yaml:"start" validate:"required,datetime=2006-01-02"`
	End   string `yaml:"end" validate:"required,datetime=2006-01-02"`
}

type workerDoc struct {
	ID          string   `yaml:"id" validate:"required"`
	Name        string   `yaml:"name"`
	Employment  float64  `yaml:"employment" validate:"gt=0,lte=1"`
	MinInterval int      `yaml:"min_interval" validate:"gte=0"`
	Workday     string   `yaml:"workday" validate:"required,target"`
	Weekend     string   `yaml:"weekend" validate:"required,target"`
	Desired     []string `yaml:"desired" validate:"dive,datetime=2006-01-02"`
	Undesired   []string `yaml:"undesired" validate:"dive,datetime=2006-01-02"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
	translator   ut.Translator
	validateErr  error
)

// getValidator 初始化带中文翻译的校验器
func getValidator() (*validator.Validate, ut.Translator, error) {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		zhLocale := zh.New()
		uni := ut.New(zhLocale, zhLocale)
		trans, _ := uni.GetTranslator("zh")
		if err := zh_translations.RegisterDefaultTranslations(v, trans); err != nil {
			validateErr = err
			return
		}

		if err := v.RegisterValidation("target", func(fl validator.FieldLevel) bool {
			_, err := model.ParseTarget(fl.Field().String())
			return err == nil
		}); err != nil {
			validateErr = err
			return
		}
		validateErr = v.RegisterTranslation("target", trans,
			func(ut ut.Translator) error {
				return ut.Add("target", "{0}必须为非负整数或 X", true)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				t, _ := ut.T("target", fe.Field())
				return t
			},
		)

		validate, translator = v, trans
	})
	return validate, translator, validateErr
}

// LoadYAML 读取 YAML 名单文件
func LoadYAML(path string) (*Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, openError(err, path)
	}
	defer f.Close()

	in, err := ParseYAML(f)
	if err != nil {
		return nil, err
	}
	in.Source = path
	return in, nil
}

// ParseYAML 解析 YAML 名单
func ParseYAML(r io.Reader) (*Input, error) {
	var doc rosterFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperrors.InvalidInput("roster", "名单文件为空")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidInput, "名单文件格式错误")
	}

	if err := validateDoc(&doc); err != nil {
		return nil, err
	}
	return doc.toInput()
}

// validateDoc 结构校验，汇总全部字段错误
func validateDoc(doc *rosterFile) error {
	v, trans, err := getValidator()
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "初始化校验器失败")
	}

	err = v.Struct(doc)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.Wrap(err, apperrors.CodeValidationFail, "名单校验失败")
	}

	var ve apperrors.ValidationErrors
	for _, fe := range fieldErrs {
		ve.Add(strings.TrimPrefix(fe.Namespace(), "rosterFile."), fe.Translate(trans))
	}
	return ve.ToAppError()
}

// toInput 转换为领域模型
func (doc *rosterFile) toInput() (*Input, error) {
	span, err := parseSpan(doc.Span.Start, doc.Span.End)
	if err != nil {
		return nil, err
	}

	holidays := make(map[time.Time]model.DayWeight, len(doc.Holidays))
	for date, weight := range doc.Holidays {
		t, err := model.ParseDate(date)
		if err != nil {
			return nil, apperrors.InvalidInput("holidays", err.Error())
		}
		holidays[t] = model.DayWeight(weight)
	}

	var ve apperrors.ValidationErrors
	workers := make([]*model.Worker, 0, len(doc.Workers))
	for i, wd := range doc.Workers {
		field := fmt.Sprintf("workers[%d]", i)
		workday, err := model.ParseTarget(wd.Workday)
		if err != nil {
			ve.Add(field+".workday", err.Error())
		}
		weekend, err := model.ParseTarget(wd.Weekend)
		if err != nil {
			ve.Add(field+".weekend", err.Error())
		}
		workers = append(workers, &model.Worker{
			ID:          wd.ID,
			Name:        wd.Name,
			Employment:  wd.Employment,
			MinInterval: wd.MinInterval,
			Workday:     workday,
			Weekend:     weekend,
			Desired:     parseDates(field+".desired", wd.Desired, &ve),
			Undesired:   parseDates(field+".undesired", wd.Undesired, &ve),
		})
	}
	if ve.HasErrors() {
		return nil, ve.ToAppError()
	}

	roster, err := model.NewRoster(workers)
	if err != nil {
		return nil, err
	}
	return &Input{
		Roster:   roster,
		Span:     span,
		Holidays: holidays,
		Notes:    doc.Notes,
	}, nil
}

// openError 文件打开失败的错误转换
func openError(err error, path string) error {
	if errors.Is(err, os.ErrNotExist) {
		return apperrors.NotFound("文件", path).WithCause(err)
	}
	return apperrors.Wrap(err, apperrors.CodeInvalidInput, "读取文件失败").WithField("path", path)
}
