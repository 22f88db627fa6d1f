package config

// ReportsConfig controls the dashboard report endpoints. Cost Explorer and
// the resource listing APIs need extra IAM permissions, so reporting can be
// switched off without touching the rest of the deployment.
type ReportsConfig struct {
	Enabled bool `env:"ENABLED" envDefault:"true"`
}
