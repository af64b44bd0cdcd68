package service

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"tdlma/backend/internal/model"
)

var timeOfDayPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

const settingStringMaxLen = 200

// normalizeSettingValue 按配置类型校验并规范化取值
// 数值统一为两位小数，保证金额按分精确存储
func normalizeSettingValue(def model.SettingDefinition, raw string) (string, error) {
	value := strings.TrimSpace(raw)
	switch def.Kind {
	case model.SettingKindNumeric:
		d, err := decimal.NewFromString(value)
		if err != nil {
			return "", ErrSettingValueNotNumeric
		}
		if d.IsNegative() {
			return "", ErrSettingValueNegative
		}
		if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
			return "", ErrSettingValuePrecision
		}
		return d.StringFixed(2), nil
	case model.SettingKindTime:
		if !timeOfDayPattern.MatchString(value) {
			return "", ErrSettingValueTime
		}
		return value, nil
	case model.SettingKindBoolean:
		switch strings.ToLower(value) {
		case "true":
			return "true", nil
		case "false":
			return "false", nil
		}
		return "", ErrSettingValueBoolean
	default:
		if value == "" || len([]rune(value)) > settingStringMaxLen {
			return "", ErrSettingValueString
		}
		return value, nil
	}
}
