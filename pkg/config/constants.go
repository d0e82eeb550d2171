package config

const EnvPrefix = "SHOPKART"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv                 = "SHOPKART_APP_ENV"
	EnvPort                   = "SHOPKART_APP_PORT"
	EnvDBDSN                  = "SHOPKART_DB_DSN"
	EnvDBHost                 = "SHOPKART_DB_HOST"
	EnvDBUser                 = "SHOPKART_DB_USER"
	EnvDBName                 = "SHOPKART_DB_NAME"
	EnvRedisURL               = "SHOPKART_REDIS_URL"
	EnvJWTSecret              = "SHOPKART_JWT_SECRET"
	EnvJWTIssuer              = "SHOPKART_JWT_ISSUER"
	EnvJWTExpMins             = "SHOPKART_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "SHOPKART_REFRESH_TOKEN_TTL_MINUTES"
	EnvRazorpayKeyID          = "SHOPKART_RAZORPAY_KEY_ID"
	EnvRazorpayKeySecret      = "SHOPKART_RAZORPAY_KEY_SECRET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
