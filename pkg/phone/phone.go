// Package phone 统一土耳其手机号格式为 90 开头的纯数字
package phone

import "strings"

// Normalize 规则：
//   - 仅保留数字
//   - 10 位（5xx...）补 90
//   - 11 位且以 0 开头：去掉 0 再补 90
//   - 已以 90 开头：保持不变
//   - 其他未知格式：直接补 90
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case digits == "":
		return ""
	case len(digits) == 10:
		return "90" + digits
	case len(digits) == 11 && strings.HasPrefix(digits, "0"):
		return "90" + digits[1:]
	case strings.HasPrefix(digits, "90"):
		return digits
	default:
		return "90" + digits
	}
}
