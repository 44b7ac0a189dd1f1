// Package secret resolves secrets referenced from configuration.
//
// Values may embed ${VAR} environment variables (see ExpandEnvStrict) or
// be a whole reference of the form secretref:<provider>:<ref>:
//
//	jwt:
//	  secret: secretref:env:STARWARS_JWT_SECRET
//	api_keys:
//	  secretref:file:/run/secrets/ops_key: ops
//
// The env and file providers are built in.
package secret
