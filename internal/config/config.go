package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Address string `yaml:"address"`
	} `yaml:"server"`
	GooglePlay struct {
		PackageName        string `yaml:"package_name"`
		ServiceAccountFile string `yaml:"service_account_file"`
		ServiceAccountJSON string `yaml:"-"`
	} `yaml:"google_play"`
	AppStore struct {
		SharedSecret  string `yaml:"shared_secret"`
		ProductionURL string `yaml:"production_url"`
		SandboxURL    string `yaml:"sandbox_url"`
	} `yaml:"app_store"`
	Firebase struct {
		CredentialsFile string `yaml:"credentials_file"`
	} `yaml:"firebase"`
	Auth struct {
		SigningKey string `yaml:"signing_key"`
	} `yaml:"auth"`
}

// LoadConfig reads the YAML config and applies environment overrides for the
// secrets, which never live in the config file in production.
func LoadConfig() Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}

	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		log.Fatalf("Failed to unmarshal config data: %v", err)
	}

	if v := os.Getenv("GOOGLE_PLAY_PACKAGE_NAME"); v != "" {
		cfg.GooglePlay.PackageName = v
	}
	if v := os.Getenv("APP_STORE_SHARED_SECRET"); v != "" {
		cfg.AppStore.SharedSecret = v
	}
	if v := os.Getenv("JWT_SIGNING_KEY"); v != "" {
		cfg.Auth.SigningKey = v
	}
	if v := os.Getenv("FIREBASE_CREDENTIALS_FILE"); v != "" {
		cfg.Firebase.CredentialsFile = v
	}

	// The Play credential is either inlined in the env or read from a file.
	if v := os.Getenv("GOOGLE_PLAY_SERVICE_ACCOUNT_JSON"); v != "" {
		cfg.GooglePlay.ServiceAccountJSON = v
	} else if cfg.GooglePlay.ServiceAccountFile != "" {
		raw, err := os.ReadFile(cfg.GooglePlay.ServiceAccountFile)
		if err != nil {
			log.Fatalf("Failed to read service account file: %v", err)
		}
		cfg.GooglePlay.ServiceAccountJSON = string(raw)
	}

	return cfg
}
