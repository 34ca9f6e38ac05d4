package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/bacheca/internal/flagx"
	"github.com/dmitrijs2005/bacheca/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Absent keys leave the
// corresponding Config field untouched.
type JsonConfig struct {
	HTTPAddr         string          `json:"http_addr"`
	EndpointAddrGRPC *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN      string          `json:"database_dsn"`
	Storage          string          `json:"storage"`
	RedisAddr        string          `json:"redis_addr"`
	SweepInterval    *timex.Duration `json:"sweep_interval"`
	BcryptCost       int             `json:"bcrypt_cost"`
}

// parseJson loads the file named by -c/-config into config. Without the
// flag nothing happens. Unreadable or malformed files panic: the process
// must not start with a half-applied configuration.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.HTTPAddr != "" {
		config.HTTPAddr = c.HTTPAddr
	}
	if c.EndpointAddrGRPC != nil {
		config.EndpointAddrGRPC = *c.EndpointAddrGRPC
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.Storage != "" {
		config.Storage = c.Storage
	}
	if c.RedisAddr != "" {
		config.RedisAddr = c.RedisAddr
	}
	if c.SweepInterval != nil {
		config.SweepInterval = c.SweepInterval.Duration
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
}
