package sqlite

import (
	"strings"
)

type Config struct {
	file  string
	conns int
}

type ConfigFunc = func(c *Config)

// File sets the database file. ":memory:" keeps batches in a private in-memory database.
func (c *Config) File(file string) {
	file = strings.TrimSpace(file)
	if file == "" {
		panic("file can't be blank")
	}
	if strings.Contains(file, "?") {
		panic("file can't contain ?")
	}
	c.file = file
}

// Conns sets the maximum number of open connections for file databases.
func (c *Config) Conns(conns int) {
	if conns < 1 {
		panic("conns can't be < 1")
	}
	c.conns = conns
}

func WithFile(file string) ConfigFunc {
	return func(c *Config) { c.File(file) }
}

func WithConns(conns int) ConfigFunc {
	return func(c *Config) { c.Conns(conns) }
}
