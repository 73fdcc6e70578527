package objstore

import "errors"

// Config defines the object storage configuration
type Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
}

// Validate validates the object storage configuration
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("objstore endpoint is required")
	}
	if c.AccessKey == "" || c.SecretKey == "" {
		return errors.New("objstore credentials are required")
	}
	if c.Bucket == "" {
		return errors.New("objstore bucket is required")
	}
	return nil
}
