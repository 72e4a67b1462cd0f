package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	DatabaseURL string `env:"DATABASE_URL" envDefault:"file:pharmacy.db?_busy_timeout=5000"`
	SeedOnBoot  bool   `env:"SEED_ON_BOOT" envDefault:"true"`

	Shipping Shipping `envPrefix:"SHIPPING_"`
	Payment  Payment  `envPrefix:"PAYMENT_"`
}

// Shipping holds the delivery-fee business parameters: the first
// IncludedUnits items cost BaseFeeCents flat, each unit above that adds
// PerUnitCents.
type Shipping struct {
	BaseFeeCents  int64  `env:"BASE_FEE_CENTS" envDefault:"1000"`
	IncludedUnits int64  `env:"INCLUDED_UNITS" envDefault:"10"`
	PerUnitCents  int64  `env:"PER_UNIT_CENTS" envDefault:"100"`
	Provider      string `env:"PROVIDER" envDefault:"SIMULATED"`
}

type Payment struct {
	DefaultProvider string `env:"DEFAULT_PROVIDER" envDefault:"SIMULATED"`
	Currency        string `env:"CURRENCY" envDefault:"USD"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
