package main

import (
	"log"
	"os"

	"github.com/go-yaml/yaml"

	"github.com/inkwell-social/inkwell/core"
)

type Config struct {
	Server  Server       `yaml:"server"`
	Inkwell core.Config  `yaml:"inkwell"`
	Profile core.Profile `yaml:"profile"`
}

type Server struct {
	Dsn           string `yaml:"dsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

// Load loads config from given path
func (c *Config) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		log.Fatal("failed to open configuration file:", err)
		return err
	}
	defer f.Close()

	err = yaml.NewDecoder(f).Decode(&c)
	if err != nil {
		log.Fatal("failed to load configuration file:", err)
		return err
	}

	c.Inkwell.Normalize()

	return nil
}
