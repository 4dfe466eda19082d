package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"sable/internal/config"
	"sable/internal/plugin"
	"sable/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List lint rules and their resolved levels",
	RunE:  runRules,
}

func runRules(cmd *cobra.Command, _ []string) error {
	root, cfg, err := resolveProject(".")
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%-32s %-8s %-4s %s\n", "NAME", "LEVEL", "FIX", "DESCRIPTION")
	for _, rule := range rules.Default().Rules() {
		level := strings.ToLower(rule.Severity.String())
		if raw, ok := cfg.Lint.Rules[rule.Name]; ok {
			if parsed, valid := config.ParseLevel(raw); valid {
				if parsed.Off {
					level = "off"
				} else {
					level = strings.ToLower(parsed.Severity.String())
				}
			}
		}
		fix := ""
		if rule.Fixable {
			fix = "yes"
		}
		fmt.Fprintf(out, "%-32s %-8s %-4s %s\n", rule.Name, level, fix, rule.Doc)
	}

	set, err := plugin.Load(filepath.Join(root, plugin.Dir))
	if err != nil || set.Len() == 0 {
		return nil
	}
	fmt.Fprintf(out, "\n%-32s %-8s %-12s %s\n", "PLUGIN RULE", "LEVEL", "PACK", "MESSAGE")
	for _, rule := range set.Rules() {
		fmt.Fprintf(out, "%-32s %-8s %-12s %s\n",
			rule.Name, strings.ToLower(rule.Severity.String()), rule.Pack, rule.Message)
	}
	return nil
}
