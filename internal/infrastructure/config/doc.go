// Package config handles loading and validating tellhub configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables (TELLHUB_*)
//   - Validation of required fields
//   - Default value handling
//
// Sensitive values (MQTT password, InfluxDB token) should be set via
// environment variables or a .env file rather than committed YAML.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Telldus.TDTool)
package config
