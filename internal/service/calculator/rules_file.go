package calculator

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RuleFile 规则表文件格式（YAML）
type RuleFile struct {
	Eligibility EligibilityFile `yaml:"eligibility" json:"eligibility"`
	Categories  []Category      `yaml:"categories" json:"categories"`
}

// EligibilityFile 白名单配置
type EligibilityFile struct {
	Mode  EligibilityMode `yaml:"mode" json:"mode"`
	Codes []string        `yaml:"codes" json:"codes"`
}

// File 导出为文件结构
func (rs *RuleSet) File() RuleFile {
	return RuleFile{
		Eligibility: EligibilityFile{Mode: rs.mode, Codes: rs.Whitelist()},
		Categories:  rs.Categories(),
	}
}

// ParseRuleSet 解析 YAML 规则表；缺省的部分使用内置值
func ParseRuleSet(data []byte) (*RuleSet, error) {
	var f RuleFile
	if len(bytes.TrimSpace(data)) == 0 {
		return NewRuleSet(DefaultCategories(), DefaultWhitelist(), EligibilityExact)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}

	categories := f.Categories
	if len(categories) == 0 {
		categories = DefaultCategories()
	}
	codes := f.Eligibility.Codes
	if len(codes) == 0 {
		codes = DefaultWhitelist()
	}
	return NewRuleSet(categories, codes, f.Eligibility.Mode)
}

// LoadRuleSet 从文件加载规则表；path 为空时返回内置规则表
func LoadRuleSet(path string) (*RuleSet, error) {
	if path == "" {
		return DefaultRuleSet(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	rs, err := ParseRuleSet(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// MarshalRuleSet 将规则表编码为 YAML
func MarshalRuleSet(rs *RuleSet) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(rs.File()); err != nil {
		return nil, fmt.Errorf("failed to encode rules: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode rules: %w", err)
	}
	return buf.Bytes(), nil
}
