package server

import (
	"fmt"

	"salespulse/internal/config"
	"salespulse/internal/parser"
	"salespulse/internal/service/calculator"
)

// Pipeline 按配置组装的规则表、会话与标准化器
type Pipeline struct {
	Rules      *calculator.RuleSet
	Session    *calculator.Session
	Normalizer *parser.Normalizer
}

// NewPipeline 根据配置创建计算管线；规则文件无效时返回错误
func NewPipeline(cfg *config.AppConfig) (*Pipeline, error) {
	rules, err := calculator.LoadRuleSet(cfg.Rules.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	session := calculator.NewSession(nil, rules, calculator.AggregateOptions{
		ExportedStatus: cfg.Business.ExportedStatus,
		TargetShare:    cfg.Business.TargetShare,
	})
	normalizer := parser.NewNormalizer(parser.NormalizeOptions{
		InstallmentMarker: cfg.Business.InstallmentMarker,
		Location:          cfg.Location(),
	})
	return &Pipeline{Rules: rules, Session: session, Normalizer: normalizer}, nil
}
