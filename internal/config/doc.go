// Package config provides configuration loading for agreed projects.
//
// The configuration is stored in agreed.json (or agreed.yaml, agreed.yml,
// agreed.toml) at the project root and read with viper. Every key can be
// overridden from the environment with the AGREED_ prefix, nested keys
// joined by an underscore (AGREED_VIEWSPATH, AGREED_DEV_DEBOUNCE).
//
// # Configuration File Structure
//
//	{
//	  "base": "",
//	  "filePath": "src/config.tsx",
//	  "viewsPath": "src/pages",
//	  "modelsPath": "src/models",
//	  "enable": true,
//	  "ignore": ["*.stories.*"],
//	  "dev": {
//	    "addr": "localhost:3100",
//	    "debounce": "200ms"
//	  },
//	  "publish": {
//	    "bucket": "my-routes",
//	    "prefix": "site/"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.LoadFromWorkingDir()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Views:", cfg.ViewsDir())
package config
