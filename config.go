package redispoll

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// LoadConfig builds a Config from the environment, with an optional
// .env.local file providing local overrides. Only the tagged scalar fields
// are populated; hooks like Codec, Dialer or Logger stay at their zero
// values for the caller to fill in.
func LoadConfig(ctx context.Context) (*Config, error) {
	config := Config{}

	if err := godotenv.Load(".env.local"); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
