package config

// EnvPrefix is the envconfig prefix shared by every binary.
const EnvPrefix = "ateliera"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "ATELIERA_DB_DSN"
	EnvDBHost = "ATELIERA_DB_HOST"
	EnvDBUser = "ATELIERA_DB_USER"
	EnvDBName = "ATELIERA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
