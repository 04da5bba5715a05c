// Package config loads, validates and saves the sextant.json project
// configuration: host address, route source, journal, metrics and logging.
package config
