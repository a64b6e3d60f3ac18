// Package config loads the site configuration.
//
// Settings are layered: built-in defaults, then site.json (optional), then
// SAFETRADE_* environment variables, then command-line flags applied by the
// caller.
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "host": "0.0.0.0",
//	    "port": 8080,
//	    "readTimeout": "10s",
//	    "shutdownTimeout": "15s"
//	  },
//	  "site": { "defaultLocale": "en-US" },
//	  "contact": {
//	    "backend": "s3",
//	    "submitDelay": "1500ms",
//	    "successDisplay": "5s",
//	    "s3": { "bucket": "safetrade-inbox", "prefix": "contact/", "region": "eu-central-1" }
//	  },
//	  "rateLimit": { "rps": 0.1, "burst": 5 },
//	  "log": { "level": "info", "format": "json" }
//	}
//
// Every field has an environment variable formed from SAFETRADE_ and the
// upper-cased path, e.g. SAFETRADE_SERVER_PORT or SAFETRADE_CONTACT_S3_BUCKET.
//
// # Usage
//
//	cfg, err := config.Load("site.json")
//	if err != nil {
//	    return err
//	}
//	if err := cfg.ApplyEnv(nil); err != nil {
//	    return err
//	}
package config
