package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/bacheca/internal/flagx"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// lookupEnv is a test seam for os.LookupEnv.
var lookupEnv = os.LookupEnv

// parseEnv loads a dotenv file (the one named by -env, or ./.env when it
// exists) into the process environment without overriding variables that
// are already set, and then copies recognised variables into config.
//
// Recognised variables: HTTP_ADDR, GRPC_ADDR, DATABASE_DSN, STORAGE,
// REDIS_ADDR, SWEEP_INTERVAL (Go duration), BCRYPT_COST.
func parseEnv(config *Config) {
	loadEnvFile(flagx.EnvFileFlag())

	if v, ok := lookupEnv("HTTP_ADDR"); ok {
		config.HTTPAddr = v
	}
	if v, ok := lookupEnv("GRPC_ADDR"); ok {
		config.EndpointAddrGRPC = v
	}
	if v, ok := lookupEnv("DATABASE_DSN"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := lookupEnv("STORAGE"); ok {
		config.Storage = v
	}
	if v, ok := lookupEnv("REDIS_ADDR"); ok {
		config.RedisAddr = v
	}
	if v, ok := lookupEnv("SWEEP_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		config.SweepInterval = d
	}
	if v, ok := lookupEnv("BCRYPT_COST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		config.BcryptCost = n
	}
}

func loadEnvFile(path string) {
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		// a missing default .env is normal; a missing explicit one is not
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return
		}
		panic(err)
	}
}
