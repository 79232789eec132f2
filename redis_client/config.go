package redis_client

import (
	"net"
	"time"
)

type Config struct {
	Host     string `mapstructure:"host" json:"host" yaml:"host"`
	Port     string `mapstructure:"port" json:"port" yaml:"port" default:"6379"`
	Password string `mapstructure:"password" json:"-" yaml:"password"`
	DB       int    `mapstructure:"db" json:"db" yaml:"db" validate:"min=0"`
	// DialTimeout also bounds the initial ping.
	DialTimeout time.Duration `mapstructure:"dial-timeout" json:"dialTimeout" yaml:"dial-timeout" default:"5s"`
}

// Addr joins host and port; IPv6 hosts are bracketed.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}
