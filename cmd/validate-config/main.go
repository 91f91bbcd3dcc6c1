// Command validate-config loads the configuration the server would use and
// prints it with secrets masked. It exits non-zero when loading fails.
package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dietledger/backend/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration invalid: %v\n", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, row := range summarize(cfg) {
		fmt.Fprintf(w, "%s\t%s\n", row[0], row[1])
	}
	w.Flush()
	fmt.Println("configuration OK")
}

func summarize(cfg *config.Config) [][2]string {
	rows := [][2]string{
		{"server.port", cfg.Server.Port},
		{"server.environment", cfg.Server.Environment},
		{"server.allowed_origins", fmt.Sprint(cfg.Server.AllowedOrigins)},
		{"storage.type", cfg.Storage.Type},
	}
	if cfg.Storage.Type == "postgres" {
		rows = append(rows,
			[2]string{"database.host", cfg.Database.Host},
			[2]string{"database.port", cfg.Database.Port},
			[2]string{"database.user", cfg.Database.User},
			[2]string{"database.password", mask(cfg.Database.Password)},
			[2]string{"database.name", cfg.Database.Name},
			[2]string{"database.sslmode", cfg.Database.SSLMode},
		)
	}
	return append(rows,
		[2]string{"usda.api_key", mask(cfg.USDA.APIKey)},
		[2]string{"usda.base_url", cfg.USDA.BaseURL},
		[2]string{"cache.ttl", cfg.Cache.TTL.String()},
		[2]string{"ratelimit.per_ip", fmt.Sprintf("%d/min", cfg.RateLimit.PerIP)},
		[2]string{"ratelimit.usda", fmt.Sprintf("%d/hour", cfg.RateLimit.USDA)},
		[2]string{"intake.calorie_deficit", fmt.Sprint(cfg.Intake.CalorieDeficit)},
		[2]string{"intake.calorie_surplus", fmt.Sprint(cfg.Intake.CalorieSurplus)},
		[2]string{"intake.fat_energy_ratio", fmt.Sprint(cfg.Intake.FatEnergyRatio)},
		[2]string{"log.level", cfg.Log.Level},
		[2]string{"log.format", cfg.Log.Format},
	)
}

// mask keeps the first four characters of a secret.
func mask(secret string) string {
	switch {
	case secret == "":
		return "(not set)"
	case len(secret) <= 4:
		return "****"
	default:
		return secret[:4] + "****"
	}
}
