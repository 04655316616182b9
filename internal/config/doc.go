// Package config provides configuration structures and utilities for forskolor.
// It defines the directory endpoint, the crawl bounds, transport settings and
// report preferences shared by every component of a harvest run.
package config
