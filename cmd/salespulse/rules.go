package main

import (
	"os"

	"github.com/spf13/cobra"

	"salespulse/internal/service/calculator"
)

func rulesCmd(configPath *string) *cobra.Command {
	var builtin bool

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "In bảng hệ số đang dùng dưới dạng YAML",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			rules := calculator.DefaultRuleSet()
			if !builtin {
				cfg, _, err := loadConfig(*configPath)
				if err != nil {
					return err
				}
				if rules, err = calculator.LoadRuleSet(cfg.Rules.Path); err != nil {
					return err
				}
			}
			data, err := calculator.MarshalRuleSet(rules)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&builtin, "builtin", false, "in bảng hệ số mặc định, bỏ qua cấu hình")
	return cmd
}
