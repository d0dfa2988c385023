package masker

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/zap"
)

var ErrConfigNotPointer = errors.New("config must be a pointer to struct")

// LogConfigs логгирует структуры, в том числе вложенные.
// Если поле помечено тегом masked, то оно будет логгироваться замаскированным.
// Каждая структура логируется отдельной строкой. Вложенные поля не логгируются отдельно.
func LogConfigs(logger *zap.Logger, configs ...interface{}) error {
	for _, config := range configs {
		v := reflect.ValueOf(config)
		if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
			return ErrConfigNotPointer
		}
		v = v.Elem()

		logger.Info("Config", zap.Any(v.Type().Name(), maskStructFields(v, v.Type())))
	}
	return nil
}

// maskStructFields маскирует поля структуры, если они отмечены тегом masked
func maskStructFields(v reflect.Value, t reflect.Type) map[string]interface{} {
	result := make(map[string]interface{})
	for i := 0; i < v.NumField(); i++ {
		fieldType := t.Field(i)
		if !fieldType.IsExported() {
			continue
		}
		field := v.Field(i)
		masked := fieldType.Tag.Get("masked") == "true"

		switch {
		// Вложенная структура обрабатывается рекурсивно, если это не Stringer (например, time.Time)
		case field.Kind() == reflect.Struct && !isStringer(field):
			result[fieldType.Name] = maskStructFields(field, field.Type())

		case masked:
			result[fieldType.Name] = Mask(fmt.Sprint(field.Interface()))

		// Stringer (time.Duration и т.п.) логгируется в читаемом виде
		case isStringer(field):
			result[fieldType.Name] = field.Interface().(fmt.Stringer).String()

		default:
			result[fieldType.Name] = field.Interface()
		}
	}
	return result
}

func isStringer(v reflect.Value) bool {
	_, ok := v.Interface().(fmt.Stringer)
	return ok
}

// Mask маскирует строку, оставляя только первый и последний символы.
// Если строка короче 3 символов, то возвращается "****".
// Для email маскируется только локальная часть: j****o@example.com.
func Mask(data string) string {
	if at := strings.LastIndexByte(data, '@'); at > 0 {
		return Mask(data[:at]) + data[at:]
	}
	runes := []rune(data)
	if len(runes) <= 2 {
		return "****"
	}
	return string(runes[0]) + "****" + string(runes[len(runes)-1])
}
