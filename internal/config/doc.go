// Package config holds runtime configuration for sospy.
//
// Configuration comes from three layers, later layers winning:
// built-in defaults, an optional YAML file (.sospy in the current or home
// directory), and CLI flags. The resulting Config struct is passed through
// the application by dependency injection rather than global state.
package config
