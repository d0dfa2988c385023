// Package cnpj проверяет и нормализует CNPJ (регистрационный номер юрлица, 14 цифр).
package cnpj

import "strings"

// Длина CNPJ без форматирования.
const Length = 14

var (
	firstWeights  = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	secondWeights = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// Normalize удаляет из строки все символы, кроме цифр.
// "11.222.333/0001-81" -> "11222333000181"
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValid проверяет CNPJ по двум контрольным цифрам.
// Форматирование (точки, слэш, дефис) допускается и игнорируется.
func IsValid(raw string) bool {
	if raw == "" {
		return false
	}

	digits := Normalize(raw)
	if len(digits) != Length {
		return false
	}

	// Последовательности из одной цифры формально проходят контрольную сумму, но недействительны
	if strings.Count(digits, digits[:1]) == Length {
		return false
	}

	base := digits[:12]
	first := checkDigit(base, firstWeights)
	second := checkDigit(base+string(rune('0'+first)), secondWeights)

	return int(digits[12]-'0') == first && int(digits[13]-'0') == second
}

// Format возвращает CNPJ в виде 12.345.678/0001-90.
// Если на входе не 14 цифр, строка возвращается без изменений.
func Format(digits string) string {
	if len(digits) != Length || Normalize(digits) != digits {
		return digits
	}
	return digits[0:2] + "." + digits[2:5] + "." + digits[5:8] + "/" + digits[8:12] + "-" + digits[12:14]
}

func checkDigit(base string, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += int(base[i]-'0') * w
	}
	remainder := sum % 11
	if remainder < 2 {
		return 0
	}
	return 11 - remainder
}
