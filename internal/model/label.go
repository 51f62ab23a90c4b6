package model

import "strings"

// LabelSeparator 分类标签中编码与名称的分隔符
const LabelSeparator = " - "

// SplitLabel 拆分 "<code> - <name>" 形式的分类标签
// 无分隔符时：全数字视为编码，否则视为名称
func SplitLabel(label string) (code, name string) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", ""
	}
	if idx := strings.Index(label, LabelSeparator); idx >= 0 {
		return strings.TrimSpace(label[:idx]), strings.TrimSpace(label[idx+len(LabelSeparator):])
	}
	if isDigits(label) {
		return label, ""
	}
	return "", label
}

// DisplayName 展示名（去掉编码）；无名称时返回原标签
func DisplayName(label string) string {
	_, name := SplitLabel(label)
	if name == "" {
		return strings.TrimSpace(label)
	}
	return name
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
