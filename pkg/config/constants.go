package config

// EnvPrefix is the envconfig prefix; individual fields carry explicit names.
const EnvPrefix = "CAMPUSBITE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "CAMPUSBITE_DB_DSN"
	EnvDBHost = "CAMPUSBITE_DB_HOST"
	EnvDBUser = "CAMPUSBITE_DB_USER"
	EnvDBName = "CAMPUSBITE_DB_NAME"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
