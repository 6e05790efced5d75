// Package config loads settings for the openhrv command.
//
// Settings come from YAML files, OPENHRV_ environment variables and CLI flags
// and are validated with go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s), merged left-to-right
//  3. Environment variables (OPENHRV_ prefix)
//  4. CLI flags that were explicitly set
//
// # Usage
//
//	cfg, err := config.Load([]string{"openhrv.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx = config.WithContext(ctx, cfg)
//
// # Environment Variables
//
// Keys map to environment variables with the OPENHRV_ prefix:
//   - endpoint.url → OPENHRV_ENDPOINT_URL
//   - endpoint.timeout → OPENHRV_ENDPOINT_TIMEOUT
//   - log.level → OPENHRV_LOG_LEVEL
//   - profile → OPENHRV_PROFILE
//
// # Validation
//
//   - endpoint.url must be a URL
//   - endpoint paths must start with /
//   - endpoint.timeout must not be negative (0 disables it)
//   - log.level must be debug, info, warn, or error
package config
