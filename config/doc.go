// Package config loads the service configuration.
//
// A configuration is built in layers: Defaults, then a YAML file in which
// ${VAR} references are expanded, then secretref values for the JWT
// secret and API keys, then STARWARS_* environment overrides. The result
// is validated with struct tags and a few cross-section rules.
//
//	service:
//	  environment: production
//	upstream:
//	  base_url: https://swapi.dev/api
//	  timeout: 10s
//	auth:
//	  enabled: true
//	  jwt:
//	    secret: secretref:env:JWT_SECRET
//	  api_keys:
//	    secretref:file:admin.key: ops
//	  admin_principals: [ops]
package config
