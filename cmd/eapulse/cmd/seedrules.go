package cmd

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eapulse/eapulse/internal/config"
	"github.com/eapulse/eapulse/internal/store"
	"github.com/eapulse/eapulse/pkg/logger"
	domain "github.com/eapulse/eapulse/pkg/types"
)

//go:embed seed_rules.json
var seedRulesJSON []byte

var seedRulesCmd = &cobra.Command{
	Use:   "seed-rules",
	Short: "Insert the default alert rules",
	Long:  "Inserts the built-in alert rule set. Rules whose rule number already exists are skipped, so the command is safe to re-run.",
	RunE:  runSeedRules,
}

func init() {
	rootCmd.AddCommand(seedRulesCmd)
}

func runSeedRules(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	var rules []domain.Rule
	if err := json.Unmarshal(seedRulesJSON, &rules); err != nil {
		return fmt.Errorf("parsing embedded rules: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	st, err := store.NewPostgresStore(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer st.Close()

	created := 0
	for i := range rules {
		rule := rules[i]
		_, err := st.GetRuleByNumber(ctx, rule.RuleNumber)
		if err == nil {
			log.Info("rule exists, skipping", "rule_number", rule.RuleNumber, "name", rule.Name)
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("checking rule %d: %w", rule.RuleNumber, err)
		}

		if err := st.CreateRule(ctx, &rule); err != nil {
			return fmt.Errorf("creating rule %d: %w", rule.RuleNumber, err)
		}
		log.Info("rule created", "rule_number", rule.RuleNumber, "name", rule.Name)
		created++
	}

	log.Info("seeding complete", "created", created, "skipped", len(rules)-created)
	return nil
}
