package testing

// Logger levels used by tests
const (
	TestLoggerLevelDebug    = "debug"
	TestLoggerLevelDisabled = "disabled"
)

// Credential material used across session tests
const (
	TestEmail      = "listener@example.com"
	TestPassword   = "hunter2"
	TestOAuthToken = "oauth-access-token"
	TestSSOToken   = "sso-client-login-token"
	TestXTToken    = "xt-anti-forgery-token"
)

// Device identifiers
const (
	TestDeviceID           = "11:22:33:44:55:66"
	TestDeviceIDLowercase  = "11:22:33:44:55:ab"
	TestDeviceIDNormalized = "11:22:33:44:55:AB"
)

// Request targets
const (
	TestURL        = "https://music.example.com/loadtracks"
	TestMethodPost = "POST"
)
